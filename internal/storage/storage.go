package storage

import "github.com/elmatools/acrossrec/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Record calls may arrive from several scanner workers at once.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Scan management
	StartScan(run *core.ScanRun) error
	EndScan(totals *core.ScanTotals) error

	// Per-file outcomes
	RecordReplay(r *core.Recording) error
	RecordFailure(f *core.Failure) error
}

// Reporter is an optional interface for backends that write a report file.
type Reporter interface {
	ReportPath() string
}
