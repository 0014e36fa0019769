package app

import (
	"formations_backend/internal/config"
	"formations_backend/internal/middleware"
	"formations_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. routes publiques
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/rolemap", c.rolemap.GetRolemap)
		public.GET("/leaderboard", c.leaderboard.GetLeaderboard)
	}

	// 2. commit d'une partie: contrat plat hérité, middleware dédié
	router.POST("/api/commit_run",
		middleware.LegacyAuthMiddleware(cfg),
		middleware.ActivityMiddleware(repos.user),
		c.run.CommitRun)

	// 3. routes authentifiées
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.GET("/progression", c.user.GetProgression)
	}
}
