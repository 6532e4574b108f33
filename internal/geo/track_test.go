package geo

import (
	"math"
	"testing"

	"github.com/elmatools/acrossrec/pkg/rec"
	geom "github.com/peterstace/simplefeatures/geom"
)

func framesAt(pts ...rec.Point) []rec.Frame {
	frames := make([]rec.Frame, len(pts))
	for i, p := range pts {
		frames[i] = rec.Frame{Bike: p, LeftWheel: p, RightWheel: p}
	}
	return frames
}

func TestTrack_Empty(t *testing.T) {
	for _, frames := range [][]rec.Frame{nil, framesAt(rec.Point{X: 1, Y: 1})} {
		ls := Track(frames)
		if !ls.IsEmpty() {
			t.Errorf("expected empty track for %d frames", len(frames))
		}
		if got := TrackLength(frames); got != 0 {
			t.Errorf("expected length 0, got %f", got)
		}
	}
}

func TestTrack_PointsAndMeasure(t *testing.T) {
	ls := Track(framesAt(rec.Point{X: 0, Y: 0}, rec.Point{X: 3, Y: 4}, rec.Point{X: 3, Y: 0}))

	seq := ls.Coordinates()
	if seq.Length() != 3 {
		t.Fatalf("expected 3 points, got %d", seq.Length())
	}
	if ls.CoordinatesType() != geom.DimXYM {
		t.Errorf("expected XYM, got %v", ls.CoordinatesType())
	}
	last := seq.Get(2)
	if last.X != 3 || last.Y != 0 || last.M != 2 {
		t.Errorf("unexpected last coordinate %+v", last)
	}
}

func TestTrackLength(t *testing.T) {
	got := TrackLength(framesAt(rec.Point{X: 0, Y: 0}, rec.Point{X: 3, Y: 4}, rec.Point{X: 3, Y: 0}))
	if math.Abs(got-9) > 1e-9 {
		t.Errorf("expected length 9, got %f", got)
	}
}

func TestBounds(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Error("expected no bounds for empty replay")
	}

	frames := framesAt(rec.Point{X: -2, Y: 5}, rec.Point{X: 7, Y: -1})
	frames[0].LeftWheel = rec.Point{X: -3, Y: 5}
	b, ok := Bounds(frames)
	if !ok {
		t.Fatal("expected bounds")
	}
	want := Box{MinX: -3, MinY: -1, MaxX: 7, MaxY: 5}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}
}

func TestTrack_Stationary(t *testing.T) {
	frames := framesAt(rec.Point{}, rec.Point{})

	_, err := NewTrack(frames)
	if err == nil {
		t.Fatal("expected a constraint error for a bike that never moves")
	}
	if ls := Track(frames); !ls.IsEmpty() {
		t.Error("expected empty track")
	}
	if got := TrackLength(frames); got != 0 {
		t.Errorf("expected length 0, got %f", got)
	}
}

func TestTrack_NonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	for _, p := range []rec.Point{{X: nan, Y: 1}, {X: 1, Y: inf}} {
		frames := framesAt(p, rec.Point{X: 2, Y: 2})

		if _, err := NewTrack(frames); err == nil {
			t.Errorf("expected error for %+v", p)
		}
		if got := TrackLength(frames); got != 0 {
			t.Errorf("expected length 0 for %+v, got %f", p, got)
		}
		if _, ok := Bounds(frames); ok {
			t.Errorf("expected no bounds for %+v", p)
		}
	}
}
