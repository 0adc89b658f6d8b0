// Command fruitbid-server starts the FruitBid HTTP API server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fruitbid/server/internal/cache"
	"github.com/fruitbid/server/internal/limiter"
	"github.com/fruitbid/server/internal/migrate"
	"github.com/fruitbid/server/internal/otp"
	"github.com/fruitbid/server/internal/pricing"
	"github.com/fruitbid/server/internal/repository/postgres"
	httpserver "github.com/fruitbid/server/internal/server/http"
	"github.com/fruitbid/server/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// main parses configuration, runs migrations, seeds defaults, and starts
// the HTTP server.
func main() {
	_ = godotenv.Load()

	// Flags with env fallbacks
	addr := flag.String("addr", ":"+envOr("PORT", "8080"), "listen address")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN")
	jwtKey := flag.String("jwt-key", os.Getenv("JWT_KEY"), "HS256 signing key (required)")
	accessTTL := flag.Duration("access-ttl", 12*time.Hour, "access token TTL")
	otpWindow := flag.Duration("otp-window", 15*time.Minute, "OTP request window per identifier")
	otpMax := flag.Int("otp-max", 5, "max OTP requests per window")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
	)

	if *dsn == "" {
		logger.Fatal("missing database DSN (--dsn or DATABASE_URL)")
	}
	if *jwtKey == "" {
		logger.Fatal("missing jwt signing key (--jwt-key or JWT_KEY)")
	}
	adminPassword := envOr("ADMIN_PASSWORD", "admin123")

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, *dsn); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, *dsn)
	if err != nil {
		logger.Fatal("postgres.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	catalogRepo := postgres.NewCatalogRepo(db)
	bidRepo := postgres.NewBidRepo(db)
	otpRepo := postgres.NewOTPRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	luckyRepo := postgres.NewLuckyDipRepo(db)
	nutritionRepo := postgres.NewNutritionRepo(db)

	lim := limiter.NewPGWithQuerier(db.Pool, *otpWindow, *otpMax)

	// Caches and external collaborators
	catalogCache, err := cache.New(16, 5*time.Minute)
	if err != nil {
		logger.Fatal("cache.New", zap.Error(err))
	}
	priceCache, err := cache.New(128, time.Minute)
	if err != nil {
		logger.Fatal("cache.New", zap.Error(err))
	}
	priceSvc := pricing.NewService(
		pricing.NewHTTPSource(nil, os.Getenv("PRICE_API_URL"), os.Getenv("PRICE_API_KEY")),
		priceCache,
		logger,
	)
	sender := otp.NewSMSSender(
		nil,
		os.Getenv("SMS_API_URL"),
		os.Getenv("SMS_ACCOUNT_SID"),
		os.Getenv("SMS_AUTH_TOKEN"),
		os.Getenv("SMS_FROM"),
		logger,
	)

	// Services
	authSvc, err := service.NewAuthService(userRepo, otpRepo, lim, sender, []byte(*jwtKey), *accessTTL, adminPassword, logger)
	if err != nil {
		logger.Fatal("NewAuthService", zap.Error(err))
	}
	catalogSvc := service.NewCatalogService(catalogRepo, nutritionRepo, settingsRepo, catalogCache, priceSvc.Invalidate)
	bidSvc := service.NewBidService(bidRepo, settingsRepo)
	billingSvc := service.NewBillingService(
		settingsRepo, catalogRepo, bidRepo, luckyRepo, priceSvc, logger,
		priceSvc.Invalidate, catalogCache.Purge,
	)
	reportSvc := service.NewReportService(catalogRepo, bidRepo, luckyRepo, userRepo, nutritionRepo, settingsRepo, billingSvc, logger)

	if err := catalogSvc.EnsureDefaults(ctx, time.Now()); err != nil {
		logger.Fatal("seed defaults", zap.Error(err))
	}

	app := httpserver.New(authSvc, catalogSvc, bidSvc, billingSvc, reportSvc, []byte(*jwtKey), logger)

	var origins []string
	for _, o := range strings.Split(envOr("CORS_ORIGIN", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           app.Router(origins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
