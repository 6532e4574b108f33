// Package postgres implements the storage.Backend interface on a Postgres
// catalogue configured through the db.* keys.
package postgres

import (
	"fmt"

	"github.com/elmatools/acrossrec/internal/database"
	gormstorage "github.com/elmatools/acrossrec/internal/storage/gorm"
)

// Backend wraps the GORM backend for Postgres.
type Backend struct {
	*gormstorage.Backend
	deps gormstorage.Dependencies
}

// New creates a new Postgres storage backend. If deps.DB is nil, Init
// connects using the db.* config keys.
func New(deps gormstorage.Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init connects if needed and migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.OpenPostgres(b.deps.DBLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.deps.DB = db
	}
	b.Backend = gormstorage.New(b.deps)
	return b.Backend.Init()
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
