// Package gormstorage implements storage.Backend on any GORM dialect. The
// sqlite and postgres backends wrap it and only differ in how the DB is opened.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/elmatools/acrossrec/internal/database"
	"github.com/elmatools/acrossrec/internal/logging"
	"github.com/elmatools/acrossrec/internal/model"
	"github.com/elmatools/acrossrec/internal/model/convert"
	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned by Init when no DB was injected.
var ErrNoDatabase = errors.New("gorm backend has no database")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
	DBLogger   zerolog.Logger
}

// Backend writes scan results synchronously, one transaction per file.
type Backend struct {
	deps Dependencies

	mu    sync.Mutex
	runID string
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDatabase
	}
	if err := database.Migrate(b.deps.DB, b.deps.DBLogger); err != nil {
		b.deps.LogManager.WriteLog("gorm:Init", fmt.Sprintf("Failed to migrate: %v", err), "ERROR")
		return err
	}
	return nil
}

// Close is a no-op; wrappers own the connection.
func (b *Backend) Close() error {
	return nil
}

// StartScan inserts the run row.
func (b *Backend) StartScan(run *core.ScanRun) error {
	row := convert.CoreToScanRun(*run)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert scan run: %w", err)
	}

	b.mu.Lock()
	b.runID = run.ID
	b.mu.Unlock()
	return nil
}

// EndScan stores the totals on the run row.
func (b *Backend) EndScan(totals *core.ScanTotals) error {
	b.mu.Lock()
	runID := b.runID
	b.runID = ""
	b.mu.Unlock()

	if runID == "" {
		return fmt.Errorf("no scan in progress")
	}

	err := b.deps.DB.Model(&model.ScanRun{ID: runID}).Updates(map[string]any{
		"ended_at": totals.EndedAt,
		"files":    totals.Files,
		"ok":       totals.OK,
		"failed":   totals.Failed,
		"skipped":  totals.Skipped,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update scan run %s: %w", runID, err)
	}
	return nil
}

// RecordReplay inserts the recording and its events in one transaction.
func (b *Backend) RecordReplay(r *core.Recording) error {
	row := convert.CoreToRecording(*r)
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert recording %s: %w", r.File.Path, err)
	}
	return nil
}

// RecordFailure inserts a failure row.
func (b *Backend) RecordFailure(f *core.Failure) error {
	row := convert.CoreToFailure(*f)
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert failure %s: %w", f.File.Path, err)
	}
	return nil
}

// Recordings loads the recordings of a run ordered by path.
func (b *Backend) Recordings(runID string) ([]core.Recording, error) {
	var rows []model.Recording
	if err := b.deps.DB.Where("run_id = ?", runID).Order("path").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.Recording, len(rows))
	for i, row := range rows {
		out[i] = convert.RecordingToCore(row)
	}
	return out, nil
}

// Failures loads the failures of a run ordered by path.
func (b *Backend) Failures(runID string) ([]core.Failure, error) {
	var rows []model.ScanFailure
	if err := b.deps.DB.Where("run_id = ?", runID).Order("path").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.Failure, len(rows))
	for i, row := range rows {
		out[i] = convert.FailureToCore(row)
	}
	return out, nil
}
