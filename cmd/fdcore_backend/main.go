package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/fdlabs/fd_deposit_core/internal/adapters/catalog"
	"github.com/fdlabs/fd_deposit_core/internal/adapters/database/pgsql"
	"github.com/fdlabs/fd_deposit_core/internal/adapters/events"
	"github.com/fdlabs/fd_deposit_core/internal/adapters/locking"
	"github.com/fdlabs/fd_deposit_core/internal/adapters/notification"
	"github.com/fdlabs/fd_deposit_core/internal/core/services"
	"github.com/fdlabs/fd_deposit_core/internal/handlers"
	"github.com/fdlabs/fd_deposit_core/internal/middleware"
	"github.com/fdlabs/fd_deposit_core/internal/platform/config"
	"github.com/fdlabs/fd_deposit_core/pkg/database"

	portsrepo "github.com/fdlabs/fd_deposit_core/internal/core/ports/repositories"
	portssvc "github.com/fdlabs/fd_deposit_core/internal/core/ports/services"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	// Infrastructure adapters behind the service ports.
	repos := pgsql.NewRepositoryProvider(dbPool)
	uow := pgsql.NewUnitOfWork(dbPool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
	}

	var locker portsrepo.AccountLocker
	if redisClient != nil {
		locker = locking.NewRedisLocker(redisClient)
		logger.Info("Using Redis account locks", slog.String("addr", cfg.RedisAddr))
	} else {
		locker = locking.NewMemoryLocker()
	}

	var eventSink portssvc.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		eventSink, err = events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Error("Failed to connect Kafka producer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Publishing domain events to Kafka", slog.String("topic", cfg.KafkaTopic))
	} else {
		eventSink = events.NewLogSink(logger)
	}
	defer eventSink.Close()

	var products portssvc.ProductSvcFacade
	if cfg.ProductServiceURL != "" {
		products = catalog.NewHTTPCatalog(cfg.ProductServiceURL)
	} else {
		products = catalog.NewStaticCatalog()
	}

	serviceContainer := services.NewServiceContainer(cfg, services.Dependencies{
		Repos:    repos,
		UoW:      uow,
		Locker:   locker,
		Products: products,
		Events:   eventSink,
		Notifier: notification.NewSlogSink(logger),
	})

	limiterInstance, err := buildRateLimiter(cfg)
	if err != nil {
		logger.Error("Failed to build rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.Default(),
		middleware.RateLimit(limiterInstance),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending schema migrations before the server
// starts taking traffic.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// A separate database/sql connection, via the pgx stdlib driver, keeps
	// migrate decoupled from the application pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// buildRateLimiter constructs the request limiter on an in-process store.
// The limit is per instance; Redis stays dedicated to account locking.
func buildRateLimiter(cfg *config.Config) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	return limiter.New(memorystore.NewStore(), rate), nil
}
