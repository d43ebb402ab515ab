package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Team-WishU/wishu-backend/internal/auth"
	"github.com/Team-WishU/wishu-backend/internal/config"
	"github.com/Team-WishU/wishu-backend/internal/event"
	handler "github.com/Team-WishU/wishu-backend/internal/handler/http"
	maillog "github.com/Team-WishU/wishu-backend/internal/mailer/log"
	"github.com/Team-WishU/wishu-backend/internal/repository/postgres"
	redisrepo "github.com/Team-WishU/wishu-backend/internal/repository/redis"
	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/internal/ws"
	"github.com/Team-WishU/wishu-backend/migrations"
	"github.com/Team-WishU/wishu-backend/pkg/database"
	"github.com/Team-WishU/wishu-backend/pkg/health"
	pkgkafka "github.com/Team-WishU/wishu-backend/pkg/kafka"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
)

// App wires together all dependencies and runs the backend.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *goredis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis.
	redisCfg := database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	redisClient, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)

	userRepo := postgres.NewUserRepository(pool)
	bucketRepo := postgres.NewBucketRepository(pool)
	friendRepo := postgres.NewFriendshipRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	sessionStore := redisrepo.NewSessionStore(redisClient, cfg.SessionTTL)
	verificationStore := redisrepo.NewVerificationStore(redisClient, cfg.VerificationTTL)

	eventProducer := event.NewProducer(producer, logger)
	mailer := maillog.NewMailer(logger)

	userService := service.NewUserService(userRepo, bucketRepo, friendRepo, jwtManager, eventProducer, logger)
	bucketService := service.NewBucketService(bucketRepo, productRepo, userRepo, friendRepo, eventProducer, logger)
	friendService := service.NewFriendService(friendRepo, bucketRepo, userRepo, eventProducer, logger)
	productService := service.NewProductService(productRepo, userRepo, logger)
	chatbotService := service.NewChatbotService(productRepo, sessionStore, logger)
	verificationService := service.NewVerificationService(verificationStore, mailer, logger)

	// Realtime layer.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := userService.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Nickname: claims.Nickname,
		}, nil
	}
	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub, bucketService, tokenValidator, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(
		handler.Services{
			User:         userService,
			Bucket:       bucketService,
			Friend:       friendService,
			Product:      productService,
			Chatbot:      chatbotService,
			Verification: verificationService,
		},
		wsHandler,
		healthHandler,
		logger,
		middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: drain HTTP (which tears
// down websocket clients with it), then the Kafka producer, Redis, and the
// PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application stopped")
	return errors.Join(errs...)
}
