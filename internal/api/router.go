package api

import (
	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter wires every route. m may be nil; gatherer is served on
// /metrics when non-nil.
func NewRouter(h *Handler, m *metrics.Arena, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), m.Middleware())

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.POST(constants.RouteTeamsValidate, h.ValidateTeam)

		apiRoutes.POST(constants.RouteRuns, h.CreateRun)
		apiRoutes.GET(constants.RouteRunByID, h.GetRun)
		apiRoutes.DELETE(constants.RouteRunByID, h.DeleteRun)
		apiRoutes.PUT(constants.RouteRunTeam, h.UpdateTeam)
		apiRoutes.PUT(constants.RouteRunProgress, h.RecordProgress)
		apiRoutes.POST(constants.RouteRunSnapshots, h.RecordSnapshot)
		apiRoutes.DELETE(constants.RouteSnapshotByID, h.DeleteSnapshot)

		apiRoutes.POST(constants.RouteRunBattles, h.StartBattle)
		apiRoutes.GET(constants.RouteRunBattles, h.ListRunBattles)
		apiRoutes.GET(constants.RouteRunOpponent, h.PreviewOpponent)
		apiRoutes.GET(constants.RouteBattleByID, h.GetBattle)
		apiRoutes.POST(constants.RouteBattleResolve, h.ResolveBattle)

		apiRoutes.GET(constants.RouteBots, h.ListBots)
	}

	router.GET(constants.RouteVersion, Version)
	router.GET(constants.RouteHealth, Health)
	if gatherer != nil {
		router.GET(constants.RouteMetrics, gin.WrapH(metrics.Handler(gatherer)))
	}
	return router
}
