// Package scanner decodes every replay under a directory tree with a bounded
// worker pool and hands each outcome to the configured sinks.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elmatools/acrossrec/internal/index"
	"github.com/elmatools/acrossrec/internal/influx"
	"github.com/elmatools/acrossrec/internal/logging"
	"github.com/elmatools/acrossrec/internal/otel"
	"github.com/elmatools/acrossrec/internal/queue"
	"github.com/elmatools/acrossrec/internal/storage"
	"github.com/elmatools/acrossrec/internal/summary"
	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/elmatools/acrossrec/pkg/rec"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Dependencies holds the sinks a Scanner reports to. Only Backend is required.
type Dependencies struct {
	Backend    storage.Backend
	Influx     *influx.Manager
	Index      *index.Index
	Metrics    *otel.ScanMetrics
	// Tracer opens one "decode" span per file. Nil disables tracing.
	Tracer     trace.Tracer
	LogManager *logging.SlogManager
	// Out receives one "<path> OK" or "<path> FAILED <err>" line per file.
	Out        io.Writer
}

// Options tune a scan.
type Options struct {
	Workers   int
	Extension string
}

// Result is the outcome of one file.
type Result struct {
	Path    string
	OK      bool
	Skipped bool
	Stage   string
	Offset  int
	Err     string
}

// Line formats the result the way the batch tester prints it.
func (r Result) Line() string {
	if r.OK {
		return r.Path + " OK"
	}
	return r.Path + " FAILED " + r.Err
}

// Scanner runs scans. It is safe to reuse but not to run two scans at once.
type Scanner struct {
	deps  Dependencies
	opts  Options
	runID atomic.Value
}

// New creates a Scanner.
func New(deps Dependencies, opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Extension == "" {
		opts.Extension = ".rec"
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.Tracer == nil {
		deps.Tracer = tracenoop.NewTracerProvider().Tracer("acrossrec/scanner")
	}
	s := &Scanner{deps: deps, opts: opts}
	s.runID.Store("")
	return s
}

// RunID returns the identifier of the scan in progress, or "".
func (s *Scanner) RunID() string {
	return s.runID.Load().(string)
}

// Scan decodes every replay under root. Per-file failures are reported and
// counted, never returned. The error is non-nil only when the tree cannot be
// walked, a backend refuses the run, or ctx is cancelled; in the last case
// the results gathered so far are still returned.
func (s *Scanner) Scan(ctx context.Context, root string) (*core.ScanTotals, []Result, error) {
	log := s.deps.LogManager.Logger()

	paths, err := Discover(root, s.opts.Extension)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	run := &core.ScanRun{
		ID:        ksuid.New().String(),
		Root:      root,
		Workers:   s.opts.Workers,
		StartedAt: time.Now().UTC(),
	}
	if err := s.deps.Backend.StartScan(run); err != nil {
		return nil, nil, fmt.Errorf("failed to start scan: %w", err)
	}
	s.runID.Store(run.ID)
	defer s.runID.Store("")

	log.Info("Scan started", "root", root, "files", len(paths), "workers", s.opts.Workers)

	results := queue.New[Result]()
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results.Push(s.process(ctx, run.ID, path))
			}
		}()
	}

feed:
	for _, path := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	out := results.DrainSorted(func(a, b Result) int { return strings.Compare(a.Path, b.Path) })

	totals := &core.ScanTotals{Files: len(out), EndedAt: time.Now().UTC()}
	for _, r := range out {
		switch {
		case r.Skipped:
			totals.Skipped++
		case r.OK:
			totals.OK++
		default:
			totals.Failed++
		}
		fmt.Fprintln(s.deps.Out, r.Line())
	}

	if err := s.deps.Backend.EndScan(totals); err != nil {
		log.Error("Failed to end scan", "error", err)
	}
	log.Info("Scan finished",
		"files", totals.Files, "ok", totals.OK, "failed", totals.Failed,
		"skipped", totals.Skipped, "duration", totals.EndedAt.Sub(run.StartedAt))

	return totals, out, ctx.Err()
}

// process decodes one file and fans the outcome out to every sink.
func (s *Scanner) process(ctx context.Context, runID, path string) Result {
	ctx, span := s.deps.Tracer.Start(ctx, "decode", trace.WithAttributes(
		attribute.String("run", runID),
		attribute.String("path", path),
	))
	defer span.End()

	res := s.decodeFile(ctx, runID, path)
	span.SetAttributes(attribute.Bool("skipped", res.Skipped))
	if !res.OK {
		span.SetAttributes(attribute.String("stage", res.Stage), attribute.Int("offset", res.Offset))
		span.SetStatus(codes.Error, res.Err)
	}
	return res
}

func (s *Scanner) decodeFile(ctx context.Context, runID, path string) Result {
	log := s.deps.LogManager.Logger().With("path", path)

	file, data, err := readFile(path)
	if err != nil {
		f := &core.Failure{RunID: runID, File: file, Error: err.Error()}
		s.recordFailure(ctx, f, 0)
		return Result{Path: path, Err: f.Error}
	}

	if s.deps.Index != nil {
		if e, found, err := s.deps.Index.Lookup(path); err != nil {
			log.Warn("Index lookup failed", "error", err)
		} else if found && e.Matches(file) {
			log.Debug("Unchanged since last scan", "run", e.RunID)
			return Result{Path: path, OK: e.OK, Skipped: true, Stage: e.Stage, Offset: e.Offset, Err: e.Error}
		}
	}

	start := time.Now()
	rp, err := rec.Decode(data)
	took := time.Since(start)

	if err != nil {
		f := &core.Failure{RunID: runID, File: file, Error: err.Error()}
		var de *rec.DecodeError
		if errors.As(err, &de) {
			f.Stage = string(de.Stage)
			f.Offset = de.Offset
		}
		s.recordFailure(ctx, f, took)
		return Result{Path: path, Stage: f.Stage, Offset: f.Offset, Err: f.Error}
	}

	r := &core.Recording{
		RunID:   runID,
		File:    file,
		Summary: summary.Summarize(rp),
		Replay:  rp,
	}
	s.recordReplay(ctx, r, took)
	return Result{Path: path, OK: true}
}

func (s *Scanner) recordReplay(ctx context.Context, r *core.Recording, took time.Duration) {
	log := s.deps.LogManager.Logger()
	if err := s.deps.Backend.RecordReplay(r); err != nil {
		log.Error("Failed to store recording", "path", r.File.Path, "error", err)
	}
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(influx.BucketScans, influx.RecordingPoint(r, took, time.Now())); err != nil {
			log.Warn("Failed to write influx point", "path", r.File.Path, "error", err)
		}
	}
	if s.deps.Index != nil {
		if err := s.deps.Index.PutRecording(r); err != nil {
			log.Warn("Failed to update index", "path", r.File.Path, "error", err)
		}
	}
	s.deps.Metrics.Record(ctx, r.Summary.Version, "", took)
}

func (s *Scanner) recordFailure(ctx context.Context, f *core.Failure, took time.Duration) {
	log := s.deps.LogManager.Logger()
	log.Debug("Decode failed", "path", f.File.Path, "stage", f.Stage, "offset", f.Offset, "error", f.Error)
	if err := s.deps.Backend.RecordFailure(f); err != nil {
		log.Error("Failed to store failure", "path", f.File.Path, "error", err)
	}
	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(influx.BucketScans, influx.FailurePoint(f, took, time.Now())); err != nil {
			log.Warn("Failed to write influx point", "path", f.File.Path, "error", err)
		}
	}
	if s.deps.Index != nil && f.File.Checksum != "" {
		if err := s.deps.Index.PutFailure(f); err != nil {
			log.Warn("Failed to update index", "path", f.File.Path, "error", err)
		}
	}
	stage := f.Stage
	if stage == "" {
		stage = "read"
	}
	s.deps.Metrics.Record(ctx, 0, stage, took)
}

// readFile loads a replay and fingerprints it.
func readFile(path string) (core.File, []byte, error) {
	file := core.File{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return file, nil, err
	}
	file.Size = info.Size()
	file.ModTime = info.ModTime().UTC()

	data, err := os.ReadFile(path)
	if err != nil {
		return file, nil, err
	}
	sum := sha256.Sum256(data)
	file.Checksum = hex.EncodeToString(sum[:])
	return file, data, nil
}
