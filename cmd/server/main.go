package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/petcare/rfid-gateway/internal/broker"
	"github.com/petcare/rfid-gateway/internal/command"
	"github.com/petcare/rfid-gateway/internal/config"
	"github.com/petcare/rfid-gateway/internal/database"
	"github.com/petcare/rfid-gateway/internal/handler"
	"github.com/petcare/rfid-gateway/internal/jobs"
	"github.com/petcare/rfid-gateway/internal/metrics"
	"github.com/petcare/rfid-gateway/internal/middleware"
	"github.com/petcare/rfid-gateway/internal/pairing"
	"github.com/petcare/rfid-gateway/internal/redis"
	"github.com/petcare/rfid-gateway/internal/repository"
	"github.com/petcare/rfid-gateway/internal/router"
	"github.com/petcare/rfid-gateway/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().Msg("schema applied")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(context.Background(), cfg.RedisURL, config.RedisPingTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	tagRepo := repository.NewTagRepository(db.DB)
	petRepo := repository.NewPetRepository(db.DB)
	ownerRepo := repository.NewOwnerRepository(db.DB)

	var sessions pairing.Store
	switch cfg.PairingStore {
	case config.PairingStoreRedis:
		sessions = pairing.NewRedisStore(redisClient.Client, cfg.PairingTimeout())
	default:
		sessions = pairing.NewMemoryStore(cfg.PairingTimeout())
	}
	log.Info().
		Str("store", cfg.PairingStore).
		Dur("timeout", sessions.Timeout()).
		Msg("pairing store ready")

	gateway := service.NewGatewayService(
		tagRepo, petRepo, ownerRepo, sessions, service.NewLastReadCache(), cfg.LookupTimeout(),
	)
	rateLimiter := service.NewRateLimiter(redisClient.Client)
	readLimiter := service.NewReaderLimiter(rateLimiter, cfg.ReadRateLimitPerMin, config.ReadRateLimitWindow)

	appMetrics := metrics.New()

	bus := broker.NewRedisBus(redisClient.Client)
	topics := broker.NewTopics(cfg.TopicPrefix)
	dispatcher := command.NewDispatcher(bus, topics, sessions.Timeout()).WithMetrics(appMetrics)

	msgRouter := router.New(gateway, bus, topics, dispatcher).
		WithLimiter(readLimiter).
		WithMetrics(appMetrics)
	if err := msgRouter.Run(context.Background(), bus); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to reader topics")
	}
	log.Info().Str("prefix", topics.Prefix()).Msg("message router running")

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)
	apiRateLimitMiddleware := middleware.NewIPRateLimitMiddleware(
		rateLimiter, cfg.APIRateLimitPerMin, config.APIRateLimitWindow, "rest",
	)

	rfidHandler := handler.NewRFIDHandler(gateway, dispatcher)
	healthHandler := handler.NewHealthHandler(map[string]handler.Check{
		"database": db.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Check(ctx, 0)
		},
	}, config.DBPingTimeout)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", appMetrics.Handler())

	r.Route("/api/rfid", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(apiRateLimitMiddleware.Handler)
		r.Mount("/", rfidHandler.Routes())
	})

	reaper := jobs.NewReaperJob(map[string]jobs.Sweeper{
		"pairing sessions": sessions,
	}, config.PairingReapInterval)
	reaper.Start()
	defer reaper.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := bus.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close message bus")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
