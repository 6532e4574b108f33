package storage

import (
	"fmt"

	"github.com/elmatools/acrossrec/internal/config"
	"github.com/elmatools/acrossrec/internal/logging"
	gormstorage "github.com/elmatools/acrossrec/internal/storage/gorm"
	"github.com/elmatools/acrossrec/internal/storage/memory"
	"github.com/elmatools/acrossrec/internal/storage/postgres"
	sqlitestorage "github.com/elmatools/acrossrec/internal/storage/sqlite"
	"github.com/elmatools/acrossrec/internal/storage/websocket"
	"github.com/rs/zerolog"
)

// Dependencies are shared by every backend the factory builds.
type Dependencies struct {
	LogManager *logging.SlogManager
	DBLogger   zerolog.Logger
}

// NewBackend creates a storage backend based on configuration. The backend
// is not initialized.
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	gormDeps := gormstorage.Dependencies{
		LogManager: deps.LogManager,
		DBLogger:   deps.DBLogger,
	}

	switch cfg.Type {
	case "postgres":
		return postgres.New(gormDeps), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, gormDeps), nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:    cfg.API.ServerURL,
			APIKey: cfg.API.APIKey,
		}, deps.LogManager.Logger()), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
