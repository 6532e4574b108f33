// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/elmatools/acrossrec/pkg/core"
)

// Report is the root JSON structure of a scan report.
type Report struct {
	Run        *core.ScanRun    `json:"run"`
	Totals     *core.ScanTotals `json:"totals,omitempty"`
	Recordings []core.Recording `json:"recordings"`
	Failures   []core.Failure   `json:"failures"`
}

// exportJSON writes the run to acrossrec_<runID>.json, gzipped when configured.
func (b *Backend) exportJSON() error {
	report := b.buildReport()

	filename := fmt.Sprintf("acrossrec_%s.json", report.Run.ID)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeReport(outputPath, report, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.mu.Lock()
	b.lastReportPath = outputPath
	b.mu.Unlock()
	return nil
}

func (b *Backend) buildReport() Report {
	recordings := b.Recordings()
	failures := b.Failures()

	b.mu.RLock()
	defer b.mu.RUnlock()
	return Report{
		Run:        b.run,
		Totals:     b.totals,
		Recordings: recordings,
		Failures:   failures,
	}
}

// writeReport leaves no file behind when encoding fails.
func writeReport(path string, report Report, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if compress {
		gz := gzip.NewWriter(f)
		defer func() {
			if cerr := gz.Close(); err == nil {
				err = cerr
			}
		}()
		w = gz
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// ReadReport loads a report written by exportJSON, transparently gunzipping.
func ReadReport(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Report{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return Report{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}
