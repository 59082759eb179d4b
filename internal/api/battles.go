package api

import (
	"net/http"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"

	"github.com/gin-gonic/gin"
)

type opponentResponse struct {
	Kind       game.OpponentKind `json:"kind"`
	SnapshotID uint              `json:"snapshot_id,omitempty"`
	BotTeamID  uint              `json:"bot_team_id,omitempty"`
	Team       game.TeamSnapshot `json:"team"`
}

// StartBattle creates a pending battle for the run against a resolved
// opponent.
func (h *Handler) StartBattle(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	b, err := h.battles.StartBattle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedCreateBattle)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListRunBattles returns the run's battle history, most recent first.
func (h *Handler) ListRunBattles(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	battles, err := h.battles.ListRunBattles(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchBattle)
		return
	}
	c.JSON(http.StatusOK, battles)
}

// PreviewOpponent shows who the run would fight next without creating a
// battle.
func (h *Handler) PreviewOpponent(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	ref, err := h.battles.PreviewOpponent(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedPreviewOpponent)
		return
	}
	c.JSON(http.StatusOK, opponentResponse{Kind: ref.Kind, SnapshotID: ref.SnapshotID, BotTeamID: ref.BotTeamID, Team: ref.Team})
}

func (h *Handler) GetBattle(c *gin.Context) {
	id, ok := pathID(c, "battleID", constants.ErrInvalidBattleID)
	if !ok {
		return
	}
	b, err := h.battles.GetBattle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchBattle)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ResolveBattle runs the simulator for a pending battle and records the
// verdict. A 502 leaves the battle pending and may be retried.
func (h *Handler) ResolveBattle(c *gin.Context) {
	id, ok := pathID(c, "battleID", constants.ErrInvalidBattleID)
	if !ok {
		return
	}
	b, err := h.battles.ResolveOutcome(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedResolveBattle)
		return
	}
	c.JSON(http.StatusOK, b)
}
