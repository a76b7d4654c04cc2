package server

import (
	"context"
	"fmt"

	"storeapi/internal/config"
	"storeapi/internal/database"
	"storeapi/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store bundles the repositories of the configured backend together with its
// health check and shutdown hook.
type Store struct {
	Driver   string
	Users    repositories.UserRepository
	Products repositories.ProductRepository
	Ping     func(ctx context.Context) error
	Close    func(ctx context.Context) error
}

// OpenStore connects to the backend selected by cfg.StoreDriver and prepares
// its schema (indexes for mongo, migrations for SQL).
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		users := repositories.NewMongoUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return &Store{
			Driver:   cfg.StoreDriver,
			Users:    users,
			Products: repositories.NewMongoProductRepository(db),
			Ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close:    client.Disconnect,
		}, nil

	case config.DriverPostgres, config.DriverSQLite:
		return openSQLStore(cfg, log, database.MigrateGORM)

	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		return &Store{
			Driver:   cfg.StoreDriver,
			Users:    repositories.NewMemoryUserRepository(),
			Products: repositories.NewMemoryProductRepository(),
			Ping:     func(context.Context) error { return nil },
			Close:    func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
}

// openSQLStore opens the GORM backend and runs migrate on it. The connection
// is closed again when any step after opening fails.
func openSQLStore(cfg *config.Config, log *zap.Logger, migrate func(*gorm.DB) error) (*Store, error) {
	db, err := database.OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: underlying connection: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("connected to SQL store", zap.String("driver", cfg.StoreDriver))
	return &Store{
		Driver:   cfg.StoreDriver,
		Users:    repositories.NewGORMUserRepository(db),
		Products: repositories.NewGORMProductRepository(db),
		Ping:     sqlDB.PingContext,
		Close:    func(context.Context) error { return sqlDB.Close() },
	}, nil
}
