package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/adapters/event"
	httpAdapter "github.com/khoahotran/codejourney/adapters/http"
	"github.com/khoahotran/codejourney/adapters/persistence"
	"github.com/khoahotran/codejourney/adapters/statsapi"
	"github.com/khoahotran/codejourney/internal/application/service"
	lookupUC "github.com/khoahotran/codejourney/internal/application/usecase/lookup"
	profileUC "github.com/khoahotran/codejourney/internal/application/usecase/profile"
	"github.com/khoahotran/codejourney/internal/config"
	"github.com/khoahotran/codejourney/internal/domain/platform"
	"github.com/khoahotran/codejourney/internal/domain/session"
	"github.com/khoahotran/codejourney/pkg/auth"
	"github.com/khoahotran/codejourney/pkg/logger"
	"github.com/khoahotran/codejourney/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start CodeJourney API Server...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "codejourney-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	if cfg.Auth.JWTSecret == "" {
		appLogger.Fatal("cannot start server", errors.New("JWT_SECRET is required"))
	}

	catalog, err := platform.NewCatalog(cfg.Stats.Endpoints)
	if err != nil {
		appLogger.Fatal("invalid stats endpoints", err)
	}

	// Stats APIs
	var fetcher service.StatsFetcher = statsapi.NewClient(&http.Client{}, cfg.Stats.RequestTimeout, appLogger)

	// Session store and stats cache
	var sessionRepo session.Repository
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()

		sessionRepo = persistence.NewRedisSessionRepo(redisClient, cfg.Profile.SessionTTL)
		if cfg.Stats.CacheTTL > 0 {
			fetcher = persistence.NewCachingStatsFetcher(fetcher, redisClient, cfg.Stats.CacheTTL, appLogger)
		}
	} else {
		appLogger.Warn("REDIS_ADDR not set, sessions are kept in memory")
		sessionRepo = persistence.NewMemorySessionRepo()
	}

	// Lookup events
	var publisher service.LookupPublisher = service.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("KAFKA_BROKERS not set, lookup events are not published")
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	hub := httpAdapter.NewSessionHub(appLogger)
	defer hub.Close()

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(
		sessionRepo,
		catalog,
		fetcher,
		publisher,
		hub,
		service.RealScheduler{},
		appLogger,
		profileUC.Options{
			ErrorDisplay: cfg.Profile.ErrorDisplay,
			LoadingDelay: cfg.Profile.LoadingDelay,
		},
	)
	defer profileUseCase.Close()

	handlers := httpAdapter.Handlers{
		Profile: httpAdapter.NewProfileHandler(profileUseCase, jwtSvc, appLogger),
		Hub:     hub,
	}

	// Lookup history
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Postgres", err)
		}
		defer dbPool.Close()

		lookupRepo := persistence.NewPostgresLookupRepo(dbPool, appLogger)
		handlers.History = httpAdapter.NewHistoryHandler(
			lookupUC.NewListLookupsUseCase(lookupRepo, catalog, appLogger),
			lookupUC.NewRSSUseCase(lookupRepo, catalog, cfg.App.PublicURL, appLogger),
			catalog,
			appLogger,
		)
	} else {
		appLogger.Warn("DB_DSN not set, history routes are disabled")
	}

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	httpAdapter.RegisterRoutes(router, handlers, profileUseCase, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
