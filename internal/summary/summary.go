// Package summary condenses a decoded replay into the digest stored by the
// catalogue backends and printed by the inspect command.
package summary

import (
	"math"

	"github.com/elmatools/acrossrec/internal/geo"
	"github.com/elmatools/acrossrec/pkg/rec"
)

// Summary is the per-replay digest.
type Summary struct {
	Version          uint32   `json:"version"`
	Link             uint32   `json:"link"`
	Level            uint32   `json:"level"`
	FrameCount       uint32   `json:"frameCount"`
	EventCount       int      `json:"eventCount"`
	Apples           int      `json:"apples"`
	ObjectsTaken     int      `json:"objectsTaken"`
	Bounces          int      `json:"bounces"`
	Volts            int      `json:"volts"`
	DirectionChanges int      `json:"directionChanges"`
	Finished         bool     `json:"finished"`
	Failed           bool     `json:"failed"`
	Duration         float64  `json:"duration"`
	TrackLength      float64  `json:"trackLength"`
	Bounds           *geo.Box `json:"bounds,omitempty"`
}

// Summarize walks the events once and measures the bike track. Every float in
// the result is finite: non-finite positions drop the bounds and zero the
// track length, and non-finite event times do not count toward Duration.
func Summarize(rp *rec.Replay) Summary {
	s := Summary{
		FrameCount:  rp.FrameCount,
		EventCount:  len(rp.Events),
		TrackLength: geo.TrackLength(rp.Frames),
	}
	if rp.Header != nil {
		s.Version = rp.Header.Version()
		s.Link = rp.Header.Link()
		s.Level = rp.Header.Level()
	}
	if b, ok := geo.Bounds(rp.Frames); ok {
		s.Bounds = &b
	}

	for _, ev := range rp.Events {
		if !math.IsInf(ev.Time, 0) && ev.Time > s.Duration {
			s.Duration = ev.Time
		}
		switch ev.Kind {
		case rec.ObjectTaken:
			s.ObjectsTaken++
		case rec.Bounce:
			s.Bounces++
		case rec.Failure:
			s.Failed = true
		case rec.Success:
			s.Finished = true
		case rec.Apple:
			s.Apples++
		case rec.ChangeDirection:
			s.DirectionChanges++
		case rec.RightVolt, rec.LeftVolt:
			s.Volts++
		}
	}
	return s
}
