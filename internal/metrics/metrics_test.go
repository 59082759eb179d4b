package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilArenaIsNoop(t *testing.T) {
	var m *Arena
	m.ObserveResolution("bot")
	m.ObserveBattleCreated()
	m.ObserveOutcome("win")
	m.ObserveSimulation(time.Millisecond, true)
	m.ObserveValidationFailure("over_budget")
	m.SetStalePending(3)
}

func TestArenaCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResolution("snapshot")
	m.ObserveResolution("snapshot")
	m.ObserveResolution("bot")
	m.ObserveBattleCreated()
	m.ObserveOutcome("loss")
	m.ObserveSimulation(2*time.Millisecond, true)
	m.ObserveValidationFailure("empty_team")
	m.SetStalePending(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OpponentResolutions.WithLabelValues("snapshot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpponentResolutions.WithLabelValues("bot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BattlesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BattleOutcomes.WithLabelValues("loss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SimulatorFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("empty_team")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.StalePending))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/ping", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "arena_http_requests_total"))
}
