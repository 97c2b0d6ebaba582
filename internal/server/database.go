package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	badgerrepo "github.com/philly/imageblog/internal/adapters/badger"
	mongorepo "github.com/philly/imageblog/internal/adapters/mongo"
	"github.com/philly/imageblog/internal/adapters/postgres"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/posts/ports"
)

// ProvidePostRepository opens the store selected by STORAGE_DRIVER and
// returns its repository with a cleanup function
func ProvidePostRepository(ctx context.Context, config Config, log logger.Logger) (ports.PostRepository, func(), error) {
	switch config.StorageDriver {
	case StorageDriverMongo:
		log.Info(ctx, "connecting to mongodb", "database", config.MongoDatabase)
		db, cleanup, err := mongorepo.Connect(ctx, config.MongoURI, config.MongoDatabase)
		if err != nil {
			log.Error(ctx, "failed to connect to mongodb", "error", err)
			return nil, nil, err
		}
		repo := mongorepo.NewPostRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info(ctx, "mongodb connection established successfully")
		return repo, cleanup, nil

	case StorageDriverBadger:
		log.Info(ctx, "opening badger store", "path", config.BadgerPath, "in_memory", config.BadgerPath == "")
		db, err := badgerrepo.Open(config.BadgerPath)
		if err != nil {
			log.Error(ctx, "failed to open badger store", "error", err)
			return nil, nil, err
		}
		cleanup := func() {
			log.Info(context.Background(), "closing badger store")
			_ = db.Close()
		}
		return badgerrepo.NewPostRepository(db), cleanup, nil

	default:
		pool, cleanup, err := ConnectDatabase(ctx, config, log)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			cleanup()
			log.Error(ctx, "failed to run migrations", "error", err)
			return nil, nil, err
		}
		log.Info(ctx, "database migrations applied")
		return postgres.NewPostRepository(pool), cleanup, nil
	}
}

// ConnectDatabase creates a new database connection pool and returns it with a cleanup function
func ConnectDatabase(ctx context.Context, config Config, log logger.Logger) (*pgxpool.Pool, func(), error) {
	log.Info(ctx, "connecting to database")

	// Parse config from URL and set pool defaults
	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		log.Error(ctx, "failed to parse database URL", "error", err)
		return nil, nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Configure connection pool settings
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	log.Debug(ctx, "database pool configuration",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
		"max_conn_lifetime", poolConfig.MaxConnLifetime,
		"max_conn_idle_time", poolConfig.MaxConnIdleTime,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error(ctx, "failed to create connection pool", "error", err)
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error(ctx, "failed to ping database", "error", err)
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info(ctx, "database connection established successfully")

	cleanup := func() {
		log.Info(context.Background(), "closing database connection pool")
		pool.Close()
	}

	return pool, cleanup, nil
}
