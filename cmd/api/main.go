package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eduventure/auth-service/internal/api"
	"github.com/eduventure/auth-service/internal/api/handler"
	"github.com/eduventure/auth-service/internal/core/ports"
	"github.com/eduventure/auth-service/internal/core/service"
	"github.com/eduventure/auth-service/internal/core/token"
	mongodb "github.com/eduventure/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/eduventure/auth-service/internal/infrastructure/db/redis"
	"github.com/eduventure/auth-service/internal/infrastructure/mail"
	"github.com/eduventure/auth-service/internal/pkg/config"
	"github.com/eduventure/auth-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "auth-service: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnect(log, "mongodb", func(ctx context.Context) error { return mongoClient.Disconnect(ctx) })

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer disconnect(log, "redis", func(context.Context) error { return rdb.Close() })

	var otpRepo ports.OTPRepository = mongodb.NewOTPRepository(db)
	if cfg.OTPStore == config.OTPStoreRedis {
		otpRepo = redisdb.NewOTPStore(rdb)
	}

	mailer, err := mail.NewMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Brand:    cfg.SMTP.Brand,
		ValidFor: service.OTPTTL,
	}, log)
	if err != nil {
		return err
	}

	tokens := token.NewIssuer(cfg.JWTSecret)
	authService := service.NewAuthService(
		service.NewCredentialStore(mongodb.NewUserRepository(db)),
		service.NewSessionStore(mongodb.NewSessionRepository(db)),
		service.NewOTPManager(otpRepo, time.Now),
		tokens,
		mailer,
		log,
	)

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		Tokens:      tokens,
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingerFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("otp_store", cfg.OTPStore).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}

func disconnect(log zerolog.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("dependency", name).Msg("disconnect failed")
	}
}
