// internal/storage/memory/memory.go
package memory

import (
	"sort"
	"sync"

	"github.com/elmatools/acrossrec/internal/config"
	"github.com/elmatools/acrossrec/pkg/core"
)

// Backend keeps scan results in memory and writes a JSON report on Close.
type Backend struct {
	cfg    config.MemoryConfig
	run    *core.ScanRun
	totals *core.ScanTotals

	recordings []core.Recording
	failures   []core.Failure

	lastReportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close writes the report of the last run, if one was started.
func (b *Backend) Close() error {
	b.mu.RLock()
	started := b.run != nil
	b.mu.RUnlock()
	if !started {
		return nil
	}
	return b.exportJSON()
}

// StartScan begins collecting a new run, discarding any previous one.
func (b *Backend) StartScan(run *core.ScanRun) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.run = run
	b.totals = nil
	b.recordings = nil
	b.failures = nil
	return nil
}

// EndScan stores the run totals.
func (b *Backend) EndScan(totals *core.ScanTotals) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.totals = totals
	return nil
}

// RecordReplay keeps the digest of a decoded file. The decoded replay itself
// is dropped to bound memory use.
func (b *Backend) RecordReplay(r *core.Recording) error {
	rc := *r
	rc.Replay = nil

	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordings = append(b.recordings, rc)
	return nil
}

// RecordFailure keeps a failed file.
func (b *Backend) RecordFailure(f *core.Failure) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, *f)
	return nil
}

// Recordings returns the collected recordings sorted by path.
func (b *Backend) Recordings() []core.Recording {
	b.mu.RLock()
	out := make([]core.Recording, len(b.recordings))
	copy(out, b.recordings)
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].File.Path < out[j].File.Path })
	return out
}

// Failures returns the collected failures sorted by path.
func (b *Backend) Failures() []core.Failure {
	b.mu.RLock()
	out := make([]core.Failure, len(b.failures))
	copy(out, b.failures)
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].File.Path < out[j].File.Path })
	return out
}

// ReportPath returns the path of the last written report.
func (b *Backend) ReportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastReportPath
}
