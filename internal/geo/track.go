package geo

import (
	"fmt"
	"math"

	"github.com/elmatools/acrossrec/pkg/rec"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Tracks are stored as LineStringM in game units. M carries the frame index.
// No SRID applies: the playfield is a flat Cartesian plane.

// Track builds the bike-centre path of a replay. Replays with fewer than two
// frames, a bike that never moves, or non-finite positions yield an empty
// LineString.
func Track(frames []rec.Frame) geom.LineString {
	ls, err := NewTrack(frames)
	if err != nil {
		return geom.LineString{}
	}
	return ls
}

// NewTrack is Track with the geometry constraint error reported.
func NewTrack(frames []rec.Frame) (geom.LineString, error) {
	if len(frames) < 2 {
		return geom.LineString{}, nil
	}
	coords := make([]float64, 0, len(frames)*3)
	for i, f := range frames {
		if !finite(f.Bike) {
			return geom.LineString{}, fmt.Errorf("invalid track: non-finite position in frame %d", i)
		}
		coords = append(coords, float64(f.Bike.X), float64(f.Bike.Y), float64(i))
	}
	ls, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXYM))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid track: %w", err)
	}
	return ls, nil
}

// TrackLength is the planar length of the bike path.
func TrackLength(frames []rec.Frame) float64 {
	return Track(frames).Length()
}

// Box is an axis-aligned bounding box in game units.
type Box struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Bounds returns the box covering every bike and wheel position, and false
// when there are no frames or any position is NaN or infinite.
func Bounds(frames []rec.Frame) (Box, bool) {
	if len(frames) == 0 {
		return Box{}, false
	}
	b := Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, f := range frames {
		for _, p := range [...]rec.Point{f.Bike, f.LeftWheel, f.RightWheel} {
			if !finite(p) {
				return Box{}, false
			}
			b.MinX = math.Min(b.MinX, float64(p.X))
			b.MinY = math.Min(b.MinY, float64(p.Y))
			b.MaxX = math.Max(b.MaxX, float64(p.X))
			b.MaxY = math.Max(b.MaxY, float64(p.Y))
		}
	}
	return b, true
}

func finite(p rec.Point) bool {
	x, y := float64(p.X), float64(p.Y)
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}
