package controller

import (
	"formations_backend/internal/service"
	"formations_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary Classement
// @Description Classement par XP: toutes périodes, 30 jours ou 7 jours
// @Tags leaderboard
// @Produce json
// @Param timeframe query string false "all, 30 ou 7" default(all)
// @Param limit query int false "nombre d'entrées" default(20)
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	timeframe := ctx.DefaultQuery("timeframe", service.TimeframeAll)

	limit := 20
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	rows, err := c.LeaderboardService.GetLeaderboard(ctx.Request.Context(), timeframe, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, rows)
}
