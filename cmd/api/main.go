package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/reward-redemption-system/internal/config"
	"github.com/fairyhunter13/reward-redemption-system/internal/handler"
	"github.com/fairyhunter13/reward-redemption-system/internal/metrics"
	"github.com/fairyhunter13/reward-redemption-system/internal/repository"
	"github.com/fairyhunter13/reward-redemption-system/internal/service"
	"github.com/fairyhunter13/reward-redemption-system/internal/validator"
	"github.com/fairyhunter13/reward-redemption-system/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	loc, err := cfg.Redeem.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redemption timezone")
	}

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}
		log.Info().Msg("database schema applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := fiber.New(fiber.Config{
		AppName:      "Reward Redemption System",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	validate := validator.New()

	// Repositories and services
	playerRepo := repository.NewPlayerRepository(pool)
	rewardRepo := repository.NewRewardRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)

	playerService := service.NewPlayerService(playerRepo, ledgerRepo)
	rewardService := service.NewRewardService(rewardRepo)
	redemptionService := service.NewRedemptionService(pool, playerRepo, rewardRepo, ledgerRepo,
		service.WithLocation(loc),
		service.WithOnePerPlayer(cfg.Redeem.OnePerPlayer),
		service.WithMetrics(metrics.NewRedemption(reg)),
	)

	healthHandler := handler.NewHealthHandler(pool)
	playerHandler := handler.NewPlayerHandler(playerService, validate)
	rewardHandler := handler.NewRewardHandler(rewardService, validate)
	redeemHandler := handler.NewRedeemHandler(redemptionService, validate)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	app.Post("/player", playerHandler.CreatePlayer)
	app.Get("/player", playerHandler.ListPlayers)
	app.Get("/player/:id", playerHandler.GetPlayer)
	app.Get("/player/:id/coupons", playerHandler.ListRedemptions)

	app.Post("/reward", rewardHandler.CreateReward)
	app.Get("/reward", rewardHandler.ListRewards)
	app.Get("/reward/:id", rewardHandler.GetReward)

	app.Post("/coupon-redeem", redeemHandler.Redeem)

	// Start server with graceful shutdown
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("timezone", loc.String()).
			Bool("one_per_player", cfg.Redeem.OnePerPlayer).
			Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
