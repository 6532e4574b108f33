// Package index remembers the outcome of every scanned file so incremental
// scans can skip files whose size, modification time and checksum are
// unchanged.
package index

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/elmatools/acrossrec/pkg/core"
)

// Entry is the stored outcome for one path.
type Entry struct {
	Size     int64  `json:"size"`
	ModTime  int64  `json:"modTime"` // unix nanoseconds
	Checksum string `json:"checksum"`
	RunID    string `json:"runId"`
	OK       bool   `json:"ok"`
	Stage    string `json:"stage,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Matches reports whether f is unchanged since the entry was written: same
// size, modification time and content checksum.
func (e Entry) Matches(f core.File) bool {
	return e.Size == f.Size && e.ModTime == f.ModTime.UnixNano() && e.Checksum == f.Checksum
}

// Index is a pebble-backed path → Entry map.
type Index struct {
	db *pebble.DB
}

// Open opens or creates the index in dir.
func Open(dir string) (*Index, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", dir, err)
	}
	return &Index{db: db}, nil
}

// Lookup returns the entry for path, and false when there is none.
func (ix *Index) Lookup(path string) (Entry, bool, error) {
	data, closer, err := ix.db.Get([]byte(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	defer closer.Close()

	// data is only valid until closer.Close
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("corrupt index entry for %s: %w", path, err)
	}
	return e, true, nil
}

// Put stores the entry for path.
func (ix *Index) Put(path string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return ix.db.Set([]byte(path), data, pebble.NoSync)
}

// PutRecording stores a successful outcome.
func (ix *Index) PutRecording(r *core.Recording) error {
	return ix.Put(r.File.Path, Entry{
		Size:     r.File.Size,
		ModTime:  r.File.ModTime.UnixNano(),
		Checksum: r.File.Checksum,
		RunID:    r.RunID,
		OK:       true,
	})
}

// PutFailure stores a failed outcome.
func (ix *Index) PutFailure(f *core.Failure) error {
	return ix.Put(f.File.Path, Entry{
		Size:     f.File.Size,
		ModTime:  f.File.ModTime.UnixNano(),
		Checksum: f.File.Checksum,
		RunID:    f.RunID,
		Stage:    f.Stage,
		Offset:   f.Offset,
		Error:    f.Error,
	})
}

// Delete forgets path.
func (ix *Index) Delete(path string) error {
	return ix.db.Delete([]byte(path), pebble.NoSync)
}

// Close flushes and closes the index.
func (ix *Index) Close() error {
	if err := ix.db.Flush(); err != nil {
		_ = ix.db.Close()
		return err
	}
	return ix.db.Close()
}
