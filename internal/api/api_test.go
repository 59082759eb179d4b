package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/metrics"
	"github.com/ericogr/chimera-arena/internal/service"
	"github.com/ericogr/chimera-arena/internal/storage"
	"github.com/ericogr/chimera-arena/internal/units"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeSimulator struct {
	fail bool
}

func (f *fakeSimulator) Simulate(ctx context.Context, player, enemy game.TeamSnapshot, seed int64) (game.SimulationResult, error) {
	if f.fail {
		return game.SimulationResult{}, errors.New("simulator offline")
	}
	return game.SimulationResult{Events: []game.BattleEvent{{Tick: 1, Kind: "defeat", Side: "enemy"}}, Verdict: game.ResultLoss}, nil
}

type testServer struct {
	router *gin.Engine
	sim    *fakeSimulator
	repo   storage.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.OpenDB(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := storage.NewSQLiteRepository(db)
	catalog := units.DefaultCatalog()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sim := &fakeSimulator{}

	h := NewHandler(
		service.NewRunService(repo, catalog, m),
		service.NewBattleService(repo, sim, service.WithBattleMetrics(m)),
		service.NewBotService(repo, catalog),
	)
	return &testServer{router: NewRouter(h, m, reg), sim: sim, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// teamBody costs 3*5 + 3*4 = 27.
func teamBody() game.TeamSetup {
	ids := []string{"knight", "knight", "knight", "archer", "archer", "archer"}
	s := game.TeamSetup{}
	for i, id := range ids {
		s.Units = append(s.Units, game.TeamSetupUnit{UnitID: id, Tier: 1})
		s.Positions = append(s.Positions, game.Position{X: i, Y: 9})
	}
	return s
}

func seedBot(t *testing.T, repo storage.Repository, stage, difficulty int) {
	t.Helper()
	err := repo.CreateBotTeams(context.Background(), []game.BotTeam{{
		Name:       "bot",
		Stage:      stage,
		Difficulty: difficulty,
		Team:       datatypes.NewJSONType(teamBody().Snapshot()),
	}})
	require.NoError(t, err)
}

func TestValidateTeam(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/teams/validate", teamBody())
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Valid     bool `json:"valid"`
		TotalCost int  `json:"total_cost"`
	}
	decode(t, w, &ok)
	assert.True(t, ok.Valid)
	assert.Equal(t, 27, ok.TotalCost)

	bad := teamBody()
	bad.Units = append(bad.Units, game.TeamSetupUnit{UnitID: "knight", Tier: 1})
	bad.Positions = append(bad.Positions, game.Position{X: 8, Y: 9})
	w = s.do(t, http.MethodPost, "/api/teams/validate", bad)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Valid   bool `json:"valid"`
		Details []struct {
			Rule  string `json:"rule"`
			Index int    `json:"index"`
		} `json:"details"`
	}
	decode(t, w, &res)
	assert.False(t, res.Valid)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "over_budget", res.Details[0].Rule)
	assert.Equal(t, "position_out_of_bounds", res.Details[1].Rule)
	assert.Equal(t, 6, res.Details[1].Index)
}

func TestCreateRun_RejectsInvalidTeam(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "bob", "team": game.TeamSetup{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, constants.ErrInvalidTeam, body[constants.JSONKeyError])
	assert.NotEmpty(t, body[constants.JSONKeyDetails])

	w = s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "", "team": teamBody()})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunRoutes_RejectTierBelowOne(t *testing.T) {
	s := newTestServer(t)

	zero := teamBody()
	zero.Units[1].Tier = 0
	w := s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "bob", "team": zero})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var res struct {
		Error   string `json:"error"`
		Details []struct {
			Rule  string `json:"rule"`
			Index int    `json:"index"`
		} `json:"details"`
	}
	decode(t, w, &res)
	assert.Equal(t, constants.ErrInvalidTeam, res.Error)
	require.Len(t, res.Details, 1)
	assert.Equal(t, "tier_below_minimum", res.Details[0].Rule)
	assert.Equal(t, 1, res.Details[0].Index)

	w = s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "bob", "team": teamBody()})
	require.Equal(t, http.StatusCreated, w.Code)
	var run game.Run
	decode(t, w, &run)

	negative := teamBody()
	negative.Units[0].Tier = -2
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/runs/%d/team", run.ID), negative)
	require.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := s.repo.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	for _, u := range stored.Team.Data().Units {
		assert.GreaterOrEqual(t, u.Tier, 1)
	}
}

func TestBattleFlow(t *testing.T) {
	s := newTestServer(t)
	seedBot(t, s.repo, 2, 5)

	w := s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "bob", "team": teamBody()})
	require.Equal(t, http.StatusCreated, w.Code)
	var run game.Run
	decode(t, w, &run)
	runPath := fmt.Sprintf("/api/runs/%d", run.ID)

	// Stage 1 has no bot coverage.
	w = s.do(t, http.MethodPost, runPath+"/battles", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPut, runPath+"/progress", map[string]int{"stage": 2, "wins": 4})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, runPath+"/opponent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var opp map[string]interface{}
	decode(t, w, &opp)
	assert.Equal(t, "bot", opp["kind"])

	w = s.do(t, http.MethodPost, runPath+"/battles", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var battle game.Battle
	decode(t, w, &battle)
	assert.Equal(t, game.ResultPending, battle.Result)
	assert.False(t, battle.HasEvents())

	w = s.do(t, http.MethodPost, runPath+"/battles", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	battlePath := fmt.Sprintf("/api/battles/%d", battle.ID)
	s.sim.fail = true
	w = s.do(t, http.MethodPost, battlePath+"/resolve", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	s.sim.fail = false
	w = s.do(t, http.MethodPost, battlePath+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &battle)
	assert.Equal(t, game.ResultLoss, battle.Result)

	w = s.do(t, http.MethodPost, battlePath+"/resolve", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, runPath+"/battles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []game.Battle
	decode(t, w, &history)
	require.Len(t, history, 1)
	events, err := history[0].DecodeEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)

	w = s.do(t, http.MethodDelete, runPath, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, battlePath, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSnapshotRoutes(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/runs", map[string]interface{}{"player_id": "alice", "team": teamBody()})
	require.Equal(t, http.StatusCreated, w.Code)
	var run game.Run
	decode(t, w, &run)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/runs/%d/snapshots", run.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var snap game.Snapshot
	decode(t, w, &snap)
	assert.Equal(t, "alice", snap.PlayerID)

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/snapshots/%d", snap.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, fmt.Sprintf("/api/snapshots/%d", snap.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadIDsAndUnknownRuns(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/runs/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/battles/0", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/runs/42", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/runs/42/battles", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/battles/42/resolve", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/runs/42/progress", map[string]int{"stage": 2}).Code)
}

func TestListBots(t *testing.T) {
	s := newTestServer(t)
	seedBot(t, s.repo, 3, 9)

	w := s.do(t, http.MethodGet, "/api/bots?stage=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bots []map[string]interface{}
	decode(t, w, &bots)
	require.Len(t, bots, 1)
	assert.Equal(t, "Nightmare", bots[0]["label"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/bots?stage=x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/bots?stage=10", nil).Code)
}

func TestServiceRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"version"`)

	w = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arena_http_requests_total")
}
