package controller

import (
	"formations_backend/internal/service"
	"formations_backend/internal/util"
	"formations_backend/pkg/logger"
	"formations_backend/pkg/monitoring"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunController sert /api/commit_run avec le contrat JSON plat hérité de
// l'edge function (success/credited/xp_awarded), pas l'enveloppe util.
type RunController struct {
	RunService *service.RunService
}

func NewRunController(runService *service.RunService) *RunController {
	return &RunController{RunService: runService}
}

// CommitRun godoc
// @Summary Commit d'une partie
// @Description Classifie l'événement, calcule l'XP côté serveur et crédite la progression
// @Tags runs
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CommitRunRequest true "résultat de la partie rapporté par le client"
// @Success 200 {object} service.CommitResult
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/commit_run [post]
func (c *RunController) CommitRun(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	var req service.CommitRunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, skip, err := c.RunService.CommitRun(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		logger.Log.Error("commit run failed",
			zap.Uint("userId", claims.UserID),
			zap.String("pack", req.PackID),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = service.DefaultDifficulty
	}
	if result.Credited {
		monitoring.RunsCredited.WithLabelValues(difficulty).Inc()
	} else {
		monitoring.RunsSkipped.WithLabelValues(string(skip)).Inc()
	}

	ctx.JSON(http.StatusOK, result)
}
