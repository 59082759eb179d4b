package api

import (
	"net/http"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/team"

	"github.com/gin-gonic/gin"
)

type createRunRequest struct {
	PlayerID string         `json:"player_id"`
	Team     game.TeamSetup `json:"team"`
}

type progressRequest struct {
	Stage *int `json:"stage"`
	Wins  *int `json:"wins"`
}

// CreateRun starts a new run for a player with a validated team.
func (h *Handler) CreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := team.CheckTiers(req.Team); err != nil {
		writeError(c, err, constants.ErrFailedCreateRun)
		return
	}
	run, err := h.runs.CreateRun(c.Request.Context(), req.PlayerID, req.Team)
	if err != nil {
		writeError(c, err, constants.ErrFailedCreateRun)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (h *Handler) GetRun(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchRun)
		return
	}
	c.JSON(http.StatusOK, run)
}

// DeleteRun removes a run together with its battles and snapshots.
func (h *Handler) DeleteRun(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	if err := h.runs.DeleteRun(c.Request.Context(), id); err != nil {
		writeError(c, err, constants.ErrFailedDeleteRun)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateTeam replaces the run's roster.
func (h *Handler) UpdateTeam(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	var setup game.TeamSetup
	if err := c.ShouldBindJSON(&setup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := team.CheckTiers(setup); err != nil {
		writeError(c, err, constants.ErrFailedUpdateRun)
		return
	}
	run, err := h.runs.UpdateTeam(c.Request.Context(), id, setup)
	if err != nil {
		writeError(c, err, constants.ErrFailedUpdateRun)
		return
	}
	c.JSON(http.StatusOK, run)
}

// RecordProgress stores the stage and wins reported by progression logic.
func (h *Handler) RecordProgress(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Stage == nil || req.Wins == nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	run, err := h.runs.RecordProgress(c.Request.Context(), id, *req.Stage, *req.Wins)
	if err != nil {
		writeError(c, err, constants.ErrFailedUpdateRun)
		return
	}
	c.JSON(http.StatusOK, run)
}

// RecordSnapshot freezes the run's current team as a matchable snapshot.
func (h *Handler) RecordSnapshot(c *gin.Context) {
	id, ok := pathID(c, "runID", constants.ErrInvalidRunID)
	if !ok {
		return
	}
	snap, err := h.runs.RecordSnapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedCreateSnapshot)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) DeleteSnapshot(c *gin.Context) {
	id, ok := pathID(c, "snapshotID", constants.ErrInvalidSnapshotID)
	if !ok {
		return
	}
	if err := h.runs.DeleteSnapshot(c.Request.Context(), id); err != nil {
		writeError(c, err, constants.ErrFailedDeleteSnapshot)
		return
	}
	c.Status(http.StatusNoContent)
}
