package convert

import (
	"encoding/json"

	"github.com/elmatools/acrossrec/internal/geo"
	"github.com/elmatools/acrossrec/internal/model"
	"github.com/elmatools/acrossrec/pkg/core"
	"github.com/elmatools/acrossrec/pkg/rec"
	"gorm.io/datatypes"
)

// boundsToJSON stores a missing box as JSON null.
func boundsToJSON(b *geo.Box) datatypes.JSON {
	if b == nil {
		return datatypes.JSON("null")
	}
	data, _ := json.Marshal(b)
	return datatypes.JSON(data)
}

// CoreToScanRun converts a core.ScanRun to a GORM model.ScanRun.
func CoreToScanRun(r core.ScanRun) model.ScanRun {
	return model.ScanRun{
		ID:        r.ID,
		Root:      r.Root,
		Workers:   r.Workers,
		StartedAt: r.StartedAt,
	}
}

// CoreToRecording converts a core.Recording to a GORM model.Recording.
// Events and the bike track are taken from the decoded replay when present.
func CoreToRecording(r core.Recording) model.Recording {
	s := r.Summary
	m := model.Recording{
		RunID:            r.RunID,
		Path:             r.File.Path,
		Size:             r.File.Size,
		ModTime:          r.File.ModTime,
		Checksum:         r.File.Checksum,
		Version:          s.Version,
		Link:             s.Link,
		Level:            s.Level,
		FrameCount:       s.FrameCount,
		EventCount:       s.EventCount,
		Apples:           s.Apples,
		ObjectsTaken:     s.ObjectsTaken,
		Bounces:          s.Bounces,
		Volts:            s.Volts,
		DirectionChanges: s.DirectionChanges,
		Finished:         s.Finished,
		Failed:           s.Failed,
		Duration:         s.Duration,
		TrackLength:      s.TrackLength,
		Bounds:           boundsToJSON(s.Bounds),
	}
	if r.Replay != nil {
		m.Track = geo.Track(r.Replay.Frames)
		m.Events = EventsToGorm(r.Replay.Events)
	}
	return m
}

// EventsToGorm converts replay events to rows, numbering them in file order.
func EventsToGorm(events []rec.Event) []model.RecordingEvent {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.RecordingEvent, len(events))
	for i, e := range events {
		rows[i] = model.RecordingEvent{
			Seq:    i,
			Time:   e.Time,
			Object: e.Object,
			Kind:   e.Kind.String(),
			Volume: e.Volume,
		}
	}
	return rows
}

// CoreToFailure converts a core.Failure to a GORM model.ScanFailure.
func CoreToFailure(f core.Failure) model.ScanFailure {
	return model.ScanFailure{
		RunID:    f.RunID,
		Path:     f.File.Path,
		Size:     f.File.Size,
		ModTime:  f.File.ModTime,
		Checksum: f.File.Checksum,
		Stage:    f.Stage,
		Offset:   f.Offset,
		Error:    f.Error,
	}
}
