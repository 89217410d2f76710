package main

import (
	"context"
	"log"
	"time"

	"storefront/cmd"
	"storefront/internal/data/repository"
	"storefront/internal/maintenance"
	"storefront/internal/wire"
	"storefront/pkg/database"
	"storefront/pkg/mailer"
	"storefront/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		cancel()
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if config.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			cancel()
			logger.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}
	cancel()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	// Background purge of stale reset codes and sessions
	if config.Cleanup.Enabled {
		cleaner := maintenance.NewCleaner(repos.ResetCode, repos.Session, logger,
			maintenance.WithSchedule(config.Cleanup.Schedule),
			maintenance.WithRetention(time.Duration(config.Cleanup.RetentionHours)*time.Hour),
		)
		if err := cleaner.Start(); err != nil {
			logger.Fatal("Failed to schedule cleanup", zap.Error(err))
		}
		defer func() { <-cleaner.Stop().Done() }()
	}

	// Mail channel
	mail, err := mailer.New(config.Email)
	if err != nil {
		logger.Fatal("Failed to configure mailer", zap.Error(err))
	}
	if _, ok := mail.(mailer.NotConfigured); ok {
		logger.Warn("Mail delivery not configured",
			zap.String("driver", config.Email.Driver),
			zap.Bool("dev_code_fallback", !config.App.IsProduction()),
		)
	}

	app := wire.Wiring(repos, mail, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
