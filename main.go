// @title Formations API
// @version 1.0
// @description Backend de progression pour les formations gamifiées Äerdschëff.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"formations_backend/internal/app"
	"formations_backend/internal/config"
	"formations_backend/pkg/configwatcher"
	"formations_backend/pkg/logger"
	"log"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "exécute la migration de la base puis quitte")
	migrate := flag.Bool("migrate", false, "force la migration au démarrage (même en mode release)")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Migration terminée, arrêt du programme")
		return
	}

	go configwatcher.WatchConfig("configs/config.yaml", application.ReloadConfig)

	application.Run()
}
