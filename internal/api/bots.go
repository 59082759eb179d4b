package api

import (
	"net/http"
	"strconv"

	"github.com/ericogr/chimera-arena/internal/constants"

	"github.com/gin-gonic/gin"
)

// ListBots returns bot teams with their difficulty labels. ?stage=N limits
// the list to one stage.
func (h *Handler) ListBots(c *gin.Context) {
	stage := 0
	if s := c.Query("stage"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidStage})
			return
		}
		stage = n
	}
	out, err := h.bots.ListBots(c.Request.Context(), stage)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchBots)
		return
	}
	c.JSON(http.StatusOK, out)
}
