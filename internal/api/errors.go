package api

import (
	"errors"
	"net/http"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/logging"
	"github.com/ericogr/chimera-arena/internal/matchmaking"
	"github.com/ericogr/chimera-arena/internal/service"
	"github.com/ericogr/chimera-arena/internal/team"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP responses. Anything it does not
// recognize is logged and answered with 500 and fallback.
func writeError(c *gin.Context, err error, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	body := gin.H{}

	switch {
	case errors.Is(err, team.ErrInvalidTeamComposition):
		status, msg = http.StatusBadRequest, constants.ErrInvalidTeam
		body[constants.JSONKeyDetails] = team.Violations(err)
	case errors.Is(err, service.ErrInvalidProgress):
		status, msg = http.StatusBadRequest, constants.ErrInvalidProgress
		body[constants.JSONKeyMessage] = err.Error()
	case errors.Is(err, service.ErrInvalidPlayer):
		status, msg = http.StatusBadRequest, constants.ErrPlayerIDRequired
	case errors.Is(err, service.ErrInvalidStage):
		status, msg = http.StatusBadRequest, constants.ErrInvalidStage
	case errors.Is(err, service.ErrUnknownRun):
		status, msg = http.StatusNotFound, constants.ErrRunNotFound
	case errors.Is(err, service.ErrUnknownSnapshot):
		status, msg = http.StatusNotFound, constants.ErrSnapshotNotFound
	case errors.Is(err, service.ErrUnknownBattle):
		status, msg = http.StatusNotFound, constants.ErrBattleNotFound
	case errors.Is(err, service.ErrBattleInFlight):
		status, msg = http.StatusConflict, constants.ErrBattleInFlight
	case errors.Is(err, service.ErrBattleAlreadyResolved):
		status, msg = http.StatusConflict, constants.ErrBattleAlreadyResolved
	case errors.Is(err, matchmaking.ErrNoEligibleOpponent):
		status, msg = http.StatusUnprocessableEntity, constants.ErrNoEligibleOpponent
	case errors.Is(err, service.ErrSimulatorFailure):
		status, msg = http.StatusBadGateway, constants.ErrSimulatorFailure
	default:
		logging.Error(fallback, err, logging.Fields{
			constants.LogFieldRequestID: c.GetString(constants.ContextKeyRequestID),
			constants.LogFieldPath:      c.FullPath(),
		})
	}

	body[constants.JSONKeyError] = msg
	c.JSON(status, body)
}
