package main

import (
	"context"
	"errors"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/promo-coupon-service/internal/config"
	"github.com/fairyhunter13/promo-coupon-service/internal/handler"
	"github.com/fairyhunter13/promo-coupon-service/internal/metrics"
	"github.com/fairyhunter13/promo-coupon-service/internal/notify"
	"github.com/fairyhunter13/promo-coupon-service/internal/repository"
	"github.com/fairyhunter13/promo-coupon-service/internal/service"
	"github.com/fairyhunter13/promo-coupon-service/internal/validator"
	"github.com/fairyhunter13/promo-coupon-service/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	app := fiber.New(fiber.Config{
		AppName:      "Promo Coupon Service",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    64 * 1024, // two short fields; anything bigger is not a coupon request
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	couponRepo := repository.NewCouponRepository(pool)
	couponService := service.NewCouponService(pool, couponRepo, newNotifier(ctx, cfg), service.Config{
		ExpiryWindow:      cfg.Coupon.ExpiryWindow(),
		CodeAttempts:      cfg.Coupon.CodeAttempts,
		SerializeIssuance: cfg.Coupon.SerializeIssuance,
	})
	couponHandler := handler.NewCouponHandler(couponService, validator.New())
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Coupon routes
	api := app.Group("/api")
	api.Post("/coupons", couponHandler.IssueCoupon)
	api.Get("/coupons", couponHandler.ListCoupons)
	api.Get("/coupons/:code", couponHandler.GetCoupon)

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Int("expiry_days", cfg.Coupon.ExpiryDays).
			Bool("serialize_issuance", cfg.Coupon.SerializeIssuance).
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

	// waits for in-flight requests, including their notification sends
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// newNotifier wires the SES sender when email credentials are configured.
// Without them issuance still works and every notification is logged as not sent.
func newNotifier(ctx context.Context, cfg *config.Config) *notify.Notifier {
	notifyCfg := notify.Config{
		Sender:             cfg.Email.From,
		DiscountPercentage: cfg.Coupon.DiscountPercentage,
	}

	sender, err := notify.NewSESSender(ctx, cfg.Email)
	if err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			log.Warn().Msg("email credentials not set, coupon notifications disabled")
		} else {
			log.Error().Err(err).Msg("failed to initialize email sender, coupon notifications disabled")
		}
		return notify.NewNotifier(notifyCfg, nil)
	}

	log.Info().
		Str("from", cfg.Email.From).
		Str("region", cfg.Email.Region).
		Msg("email notifications enabled")
	return notify.NewNotifier(notifyCfg, sender)
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
