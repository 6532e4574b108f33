// Package core defines the scan records passed between the scanner and the
// storage backends.
package core

import (
	"time"

	"github.com/elmatools/acrossrec/internal/summary"
	"github.com/elmatools/acrossrec/pkg/rec"
)

// ScanRun identifies one pass over a directory tree.
type ScanRun struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	Workers   int       `json:"workers"`
	StartedAt time.Time `json:"startedAt"`
}

// ScanTotals closes a ScanRun.
type ScanTotals struct {
	Files   int       `json:"files"`
	OK      int       `json:"ok"`
	Failed  int       `json:"failed"`
	Skipped int       `json:"skipped"`
	EndedAt time.Time `json:"endedAt"`
}

// File describes a replay file on disk.
type File struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modTime"`
	Checksum string    `json:"checksum"`
}

// Recording is a successfully decoded replay file.
type Recording struct {
	RunID   string          `json:"runId"`
	File    File            `json:"file"`
	Summary summary.Summary `json:"summary"`
	Replay  *rec.Replay     `json:"-"`
}

// Failure is a replay file that could not be decoded.
type Failure struct {
	RunID  string `json:"runId"`
	File   File   `json:"file"`
	Stage  string `json:"stage,omitempty"`
	Offset int    `json:"offset"`
	Error  string `json:"error"`
}
