// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the only SQLite-specific concerns are creating
// the in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/elmatools/acrossrec/internal/config"
	"github.com/elmatools/acrossrec/internal/database"
	gormstorage "github.com/elmatools/acrossrec/internal/storage/gorm"
	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	deps     gormstorage.Dependencies
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// New creates a new SQLite storage backend. The database is opened by Init.
func New(cfg config.SQLiteConfig, deps gormstorage.Dependencies) *Backend {
	return &Backend{
		cfg:      cfg,
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// Init opens the in-memory DB, migrates it and starts the dump goroutine.
func (b *Backend) Init() error {
	db, err := database.OpenSqliteMemory(database.DefaultMemoryName, b.deps.DBLogger)
	if err != nil {
		return fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	b.db = db

	deps := b.deps
	deps.DB = db
	b.Backend = gormstorage.New(deps)
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path != "" {
		interval := b.cfg.DumpInterval
		if interval <= 0 {
			interval = time.Hour
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			database.DumpLoop(db, b.cfg.Path, interval, b.stopChan, b.deps.DBLogger)
		}()
	}
	return nil
}

// Close performs a final dump and closes the database.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.stopChan)
		b.wg.Wait()
		if b.db == nil {
			return
		}
		sqlDB, dbErr := b.db.DB()
		if dbErr != nil {
			err = dbErr
			return
		}
		err = sqlDB.Close()
	})
	return err
}

// DumpPath is where the catalogue lands on disk.
func (b *Backend) DumpPath() string {
	return b.cfg.Path
}
