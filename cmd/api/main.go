package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Lamdon-co/Backend/internal/config"
	"github.com/Lamdon-co/Backend/internal/crypto"
	"github.com/Lamdon-co/Backend/internal/database"
	"github.com/Lamdon-co/Backend/internal/email"
	"github.com/Lamdon-co/Backend/internal/handlers"
	"github.com/Lamdon-co/Backend/internal/middleware"
	"github.com/Lamdon-co/Backend/internal/oauth"
	"github.com/Lamdon-co/Backend/internal/repository"
	"github.com/Lamdon-co/Backend/internal/routes"
	"github.com/Lamdon-co/Backend/internal/server"
	"github.com/Lamdon-co/Backend/internal/services"
	"github.com/Lamdon-co/Backend/internal/token"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	mongoClient, db, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = rdb.Close() }()

	repo := repository.NewMongoUserRepo(db, cfg.Mongo.Collection)
	issuer := token.NewIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	mailer := email.NewClient(cfg.Email.BrevoAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	if !mailer.IsConfigured() {
		logger.Warn("brevo not configured, verification emails will be logged only")
	}

	svc := services.NewAuthService(repo, issuer, rdb, mailer,
		cfg.Security.BcryptCost, cfg.Security.VerifySendPerHour, logger)

	var providers []*oauth.Provider
	if cfg.OAuth.Google.ClientID != "" {
		providers = append(providers, oauth.NewGoogle(oauth.Credentials{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
		}, rdb))
	}
	if cfg.OAuth.Facebook.ClientID != "" {
		providers = append(providers, oauth.NewFacebook(oauth.Credentials{
			ClientID:     cfg.OAuth.Facebook.ClientID,
			ClientSecret: cfg.OAuth.Facebook.ClientSecret,
			RedirectURL:  cfg.OAuth.Facebook.RedirectURL,
		}, rdb))
	}

	aead, err := crypto.NewGCM(crypto.KeyFromSecret(cfg.Security.APIKeySecret))
	if err != nil {
		return fmt.Errorf("api key cipher: %w", err)
	}

	h := handlers.NewHandler(svc, providers, cfg.App.Env == "production", logger)

	app := server.New(cfg, h, routes.Deps{
		Issuer:       issuer,
		Repo:         repo,
		APIKeyCipher: aead,
		APIKeyRef:    cfg.Security.APIKeyReference,
		SignInLimit:  middleware.NewRateLimiter(rdb, "signin", cfg.Security.SignInLimitPerMinute, time.Minute),
		Logger:       logger,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.App.Env))
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
