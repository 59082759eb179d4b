// Package api exposes the arena services over HTTP with gin.
package api

import (
	"net/http"
	"strconv"

	"github.com/ericogr/chimera-arena/internal/constants"
	"github.com/ericogr/chimera-arena/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler groups the arena HTTP handlers.
type Handler struct {
	runs    *service.RunService
	battles *service.BattleService
	bots    *service.BotService
}

func NewHandler(runs *service.RunService, battles *service.BattleService, bots *service.BotService) *Handler {
	return &Handler{runs: runs, battles: battles, bots: bots}
}

// pathID parses a positive numeric route parameter. On failure it writes a
// 400 with msg and returns false.
func pathID(c *gin.Context, param, msg string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || n == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: msg})
		return 0, false
	}
	return uint(n), true
}
