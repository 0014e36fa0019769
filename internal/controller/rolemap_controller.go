package controller

import (
	"formations_backend/internal/rolemap"
	"formations_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RolemapController expose les tables partagées avec le front. Le front
// embarque sa propre copie; en cas de divergence, ces valeurs font foi.
type RolemapController struct{}

func NewRolemapController() *RolemapController {
	return &RolemapController{}
}

// GetRolemap godoc
// @Summary Tables de progression
// @Description Seuils de niveaux, multiplicateurs de difficulté, constantes XP et paliers
// @Tags rolemap
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/rolemap [get]
func (c *RolemapController) GetRolemap(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"xp": gin.H{
			"basePerCorrect": rolemap.BaseXPPerCorrect,
			"streakBonus":    rolemap.StreakBonus,
			"wrongPenalty":   rolemap.WrongPenalty,
			"maxXpPerRun":    rolemap.MaxXPPerRun,
			"levels":         rolemap.Levels,
		},
		"difficulty": rolemap.DifficultyMultipliers,
		"roles": gin.H{
			"tiers": rolemap.Tiers,
		},
	})
}
