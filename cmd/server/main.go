package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"skillsocket/internal/chat"
	"skillsocket/internal/config"
	"skillsocket/internal/domain"
	"skillsocket/internal/httpserver"
	"skillsocket/internal/notify"
	"skillsocket/internal/security"
	"skillsocket/internal/service"
	"skillsocket/internal/store/postgres"
	"skillsocket/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Fatal().Err(err).Msg("failed to load config")
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	// Message store
	var (
		db       *sql.DB
		msgRepo  domain.MessageRepository
		userRepo domain.UserRepository
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open postgres")
		}
		if err := postgres.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		msgRepo = postgres.NewMessageRepo(db)
		userRepo = postgres.NewUserRepo(db)
	default:
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open sqlite")
		}
		if err := sqlite.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		msgRepo = sqlite.NewMessageRepo(db)
		userRepo = sqlite.NewUserRepo(db)
	}
	defer db.Close()
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("message store ready")

	// Notification dispatcher: NATS when configured, log-only otherwise
	var dispatcher notify.Dispatcher
	if cfg.NATSURL != "" {
		natsDispatcher, err := notify.NewNATSDispatcher(cfg.NATSURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsDispatcher.Close()
		dispatcher = natsDispatcher
		logger.Info().Str("url", cfg.NATSURL).Msg("connected to NATS")
	} else {
		dispatcher = notify.NewLogDispatcher(logger)
	}

	// Redis (optional, rate limiting)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Realtime core
	presence := chat.NewPresence()
	delivery := chat.NewDeliveryTracker(presence, cfg.AssumeReadAfter, logger)

	// Services
	tokenSvc := security.NewTokenService(cfg.JWTSecret, 24*time.Hour)
	msgSvc := service.NewMessageService(msgRepo, userRepo, presence, delivery, dispatcher, logger)
	convSvc := service.NewConversationService(msgRepo, userRepo)
	userSvc := service.NewUserService(userRepo)

	router := httpserver.NewRouter(httpserver.Deps{
		Config:   cfg,
		DB:       db,
		Users:    userRepo,
		Presence: presence,
		MsgSvc:   msgSvc,
		ConvSvc:  convSvc,
		UserSvc:  userSvc,
		Tokens:   tokenSvc,
		Redis:    redisClient,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddr()).
			Str("env", cfg.Env).
			Msg("starting SkillSocket messaging server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
