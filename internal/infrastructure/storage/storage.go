package storage

import (
	"context"
	"fmt"

	"github.com/shoplist/core/internal/adapters/repository"
	"github.com/shoplist/core/internal/infrastructure/config"
	"github.com/shoplist/core/internal/infrastructure/database"
	"github.com/shoplist/core/internal/infrastructure/logger"
	"github.com/shoplist/core/internal/ports"
)

// Storage is the item backend selected by configuration
type Storage struct {
	Items     ports.ItemRepository
	Documents *repository.JSONDocumentStore
	db        *database.DB
}

// Open prepares the configured backend: the JSON document is created when
// absent and SQL schemas are migrated before the repository is returned.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	log = log.WithComponent("storage").WithFields("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.StorageJSON:
		docs := repository.NewJSONDocumentStore(cfg.Storage.Path)
		if err := docs.EnsureInitialized(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize document: %w", err)
		}
		log.Infow("Using JSON document", "path", docs.Path())
		return &Storage{
			Items:     repository.NewJSONItemRepository(docs),
			Documents: docs,
		}, nil

	case config.StorageMemory:
		log.Warnw("Using in-memory storage; items are lost on exit")
		return &Storage{Items: repository.NewMemoryItemRepository()}, nil

	case config.StoragePostgres, config.StorageSQLite:
		if _, err := Migrate(cfg, "up"); err != nil {
			return nil, err
		}

		db, err := OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("Using SQL database", "stats", db.GetConnectionInfo())
		return &Storage{
			Items: repository.NewSQLItemRepository(db),
			db:    db,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// OpenDatabase connects to the configured SQL backend
func OpenDatabase(cfg *config.Config) (*database.DB, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		return database.NewPostgres(cfg.Database)
	case config.StorageSQLite:
		return database.NewSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("storage driver %q has no database", cfg.Storage.Driver)
	}
}

// Migrate runs the schema migrations on a dedicated connection.
// direction is "up" or "down"; it reports whether anything changed.
func Migrate(cfg *config.Config, direction string) (bool, error) {
	m, err := openMigrator(cfg)
	if err != nil {
		return false, err
	}
	defer m.Close()

	switch direction {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	default:
		return false, fmt.Errorf("unknown migration direction %q", direction)
	}
}

// MigrationVersion returns the current schema version
func MigrationVersion(cfg *config.Config) (uint, bool, error) {
	m, err := openMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	return m.Version()
}

func openMigrator(cfg *config.Config) (*database.Migrator, error) {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// Close releases the database connection, if any
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
