// Package convert maps between scan records and GORM models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/elmatools/acrossrec/internal/geo"
	"github.com/elmatools/acrossrec/internal/model"
	"github.com/elmatools/acrossrec/internal/summary"
	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/elmatools/acrossrec/pkg/rec"
)

// RecordingToCore converts a stored recording back to a core.Recording.
// The frame data is not stored, so Replay is nil.
func RecordingToCore(m model.Recording) core.Recording {
	var bounds *geo.Box
	if len(m.Bounds) > 0 {
		_ = json.Unmarshal(m.Bounds, &bounds)
	}
	return core.Recording{
		RunID: m.RunID,
		File: core.File{
			Path:     m.Path,
			Size:     m.Size,
			ModTime:  m.ModTime,
			Checksum: m.Checksum,
		},
		Summary: summary.Summary{
			Version:          m.Version,
			Link:             m.Link,
			Level:            m.Level,
			FrameCount:       m.FrameCount,
			EventCount:       m.EventCount,
			Apples:           m.Apples,
			ObjectsTaken:     m.ObjectsTaken,
			Bounces:          m.Bounces,
			Volts:            m.Volts,
			DirectionChanges: m.DirectionChanges,
			Finished:         m.Finished,
			Failed:           m.Failed,
			Duration:         m.Duration,
			TrackLength:      m.TrackLength,
			Bounds:           bounds,
		},
	}
}

// EventsToCore converts stored rows back to replay events.
func EventsToCore(rows []model.RecordingEvent) ([]rec.Event, error) {
	events := make([]rec.Event, len(rows))
	for i, row := range rows {
		kind, err := rec.ParseEventKind(row.Kind)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", row.Seq, err)
		}
		events[i] = rec.Event{Time: row.Time, Object: row.Object, Kind: kind, Volume: row.Volume}
	}
	return events, nil
}

// FailureToCore converts a stored failure back to a core.Failure.
func FailureToCore(m model.ScanFailure) core.Failure {
	return core.Failure{
		RunID: m.RunID,
		File: core.File{
			Path:     m.Path,
			Size:     m.Size,
			ModTime:  m.ModTime,
			Checksum: m.Checksum,
		},
		Stage:  m.Stage,
		Offset: m.Offset,
		Error:  m.Error,
	}
}
