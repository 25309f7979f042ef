package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"review-sentiment/internal/config"
	"review-sentiment/internal/database"
)

// Open builds the repository selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) (ReviewRepo, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Info("Using in-memory review store; reviews are lost on restart")
		return NewMemoryReviewRepo(clock), nil

	case config.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		repo, err := NewSQLiteReviewRepo(ctx, db, clock, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI)
		if err != nil {
			return nil, err
		}
		repo, err := NewMongoReviewRepo(ctx, client, cfg.MongoDB.Database, clock, logger)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repo, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
