package api

import (
	"net/http"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/game"
	"github.com/ericogr/chimera-arena/internal/team"

	"github.com/gin-gonic/gin"
)

// ValidateTeam reports whether a team setup is legal without storing it.
func (h *Handler) ValidateTeam(c *gin.Context) {
	var setup game.TeamSetup
	if err := c.ShouldBindJSON(&setup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	violations := h.runs.ValidateTeam(setup)
	if violations == nil {
		violations = []team.Violation{}
	}
	c.JSON(http.StatusOK, gin.H{
		constants.JSONKeyValid:     len(violations) == 0,
		constants.JSONKeyTotalCost: h.runs.TeamCost(setup),
		constants.JSONKeyDetails:   violations,
	})
}
