// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candle-shop/controllers"
	"candle-shop/metrics"
	"candle-shop/middleware"
	"candle-shop/models"
	"candle-shop/routes"
	"candle-shop/store"
	"candle-shop/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, loaded, err := utils.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if !loaded {
		log.Info("No .env file found. Proceeding with environment variables.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := utils.ConnectDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := store.Migrate(db.DB); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
		log.Info("migrations applied")
	}

	hasher := utils.NewPasswordHasher(0)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	emailService := utils.NewEmailService(cfg, log)

	accounts := store.NewAccounts(db)
	catalog := store.NewCatalog(db)
	orders := store.NewOrders(db, catalog)
	feedback := store.NewFeedback(db)
	reviews := store.NewReviews(db)
	messages := store.NewMessages(db)

	if cfg.AdminEmail != "" {
		if err := seedAdmin(ctx, accounts, hasher, cfg); err != nil {
			log.WithError(err).Fatal("failed to seed admin account")
		}
		log.WithField("email", cfg.AdminEmail).Info("admin account ready")
	}

	controllers.RequestTimeout = cfg.RequestTimeout

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware)
	routes.RegisterRoutes(router, routes.Controllers{
		User:     controllers.NewUserController(accounts, hasher, tokens),
		Address:  controllers.NewAddressController(accounts),
		Product:  controllers.NewProductController(catalog),
		Review:   controllers.NewReviewController(reviews),
		Cart:     controllers.NewCartController(catalog),
		Order:    controllers.NewOrderController(orders, accounts, emailService),
		Feedback: controllers.NewFeedbackController(feedback),
		Admin:    controllers.NewAdminController(orders, emailService),
		Message:  controllers.NewMessageController(messages, emailService),
		Health:   controllers.NewHealthController(db),
	}, tokens, limiter, metrics.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

type adminSeeder interface {
	EnsureAdmin(ctx context.Context, name, email, passwordHash string) (models.User, error)
}

// seedAdmin creates or refreshes the configured admin account
func seedAdmin(ctx context.Context, accounts adminSeeder, hasher *utils.PasswordHasher, cfg *utils.Config) error {
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = accounts.EnsureAdmin(ctx, "Administrator", cfg.AdminEmail, hash)
	return err
}
