package app

import (
	"context"
	"formations_backend/internal/config"
	"formations_backend/internal/controller"
	"formations_backend/internal/repository"
	"formations_backend/internal/service"
	"formations_backend/pkg/database"
	"formations_backend/pkg/logger"
	"formations_backend/pkg/monitoring"
	"formations_backend/pkg/security"
	"formations_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Rétention des traces par question avant purge.
const runEventRetention = 30 * 24 * time.Hour

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	cfgMu sync.RWMutex
}

type repositories struct {
	user     *repository.UserRepository
	progress *repository.ProgressRepository
	run      *repository.RunRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	run         *service.RunService
	leaderboard *service.LeaderboardService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	run         *controller.RunController
	leaderboard *controller.LeaderboardController
	rolemap     *controller.RolemapController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		progress: repository.NewProgressRepository(db),
		run:      repository.NewRunRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.progress)
	s.run = service.NewRunService(repos.run, repository.NewRedisRunLock(rdb))
	s.leaderboard = service.NewLeaderboardService(repos.progress, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		run:         controller.NewRunController(s.run),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		rolemap:     controller.NewRolemapController(),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// CORS et rate limit lisent la config courante à chaque requête pour
	// que ReloadConfig prenne effet sans redémarrage
	router.Use(security.CORS(a.allowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.rateLimitSettings))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) currentConfig() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.Config
}

func (a *App) allowedOrigins() []string {
	return a.currentConfig().CORS.AllowedOrigins
}

func (a *App) rateLimitSettings() (int, time.Duration) {
	cfg := a.currentConfig()
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	return maxRequests, time.Duration(windowMinutes) * time.Minute
}

// ReloadConfig remplace la config courante. CORS et rate limit sont relus
// à chaque requête et suivent donc le nouveau fichier; les réglages de
// démarrage (port, base, secret JWT) exigent un redémarrage.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	cfg.ForceMigrate = a.Config.ForceMigrate
	cfg.MigrateOnly = a.Config.MigrateOnly
	a.Config = cfg
	logger.Log.Info("configuration reloaded")
}

func (a *App) startBackgroundTasks(repos *repositories) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			pruned, err := repos.run.PruneEventsBefore(time.Now().Add(-runEventRetention))
			if err != nil {
				logger.Log.Error("run event prune failed", zap.Error(err))
				continue
			}
			if pruned > 0 {
				logger.Log.Info("pruned per-question traces", zap.Int64("count", pruned))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("formations-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(repos)

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// attendre le signal d'arrêt puis fermer proprement sous 5 secondes
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
