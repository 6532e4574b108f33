package summary

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/elmatools/acrossrec/pkg/rec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Modern(t *testing.T) {
	rp := &rec.Replay{
		FrameCount: 3,
		Header:     rec.ModernHeader{LinkNumber: 77, InternalNum: rec.NoInternalLevel},
		Frames: []rec.Frame{
			{Bike: rec.Point{X: 0, Y: 0}},
			{Bike: rec.Point{X: 3, Y: 4}},
			{Bike: rec.Point{X: 6, Y: 8}},
		},
		Events: []rec.Event{
			{Time: 0.5, Object: 2, Kind: rec.ObjectTaken, Volume: 1},
			{Time: 1.25, Object: rec.NoObject, Kind: rec.Apple, Volume: 1},
			{Time: 2, Object: rec.NoObject, Kind: rec.ChangeDirection, Volume: 0.5},
			{Time: 3, Object: rec.NoObject, Kind: rec.RightVolt},
			{Time: 4, Object: rec.NoObject, Kind: rec.LeftVolt},
			{Time: 4.5, Object: rec.NoObject, Kind: rec.Bounce, Volume: 0.3},
			{Time: 9.75, Object: rec.NoObject, Kind: rec.Success},
		},
	}

	s := Summarize(rp)

	assert.Equal(t, uint32(120), s.Version)
	assert.Equal(t, uint32(77), s.Link)
	assert.Equal(t, rec.NoInternalLevel, s.Level)
	assert.Equal(t, uint32(3), s.FrameCount)
	assert.Equal(t, 7, s.EventCount)
	assert.Equal(t, 1, s.Apples)
	assert.Equal(t, 1, s.ObjectsTaken)
	assert.Equal(t, 1, s.Bounces)
	assert.Equal(t, 2, s.Volts)
	assert.Equal(t, 1, s.DirectionChanges)
	assert.True(t, s.Finished)
	assert.False(t, s.Failed)
	assert.Equal(t, 9.75, s.Duration)
	assert.InDelta(t, 10.0, s.TrackLength, 1e-9)
	require.NotNil(t, s.Bounds)
	assert.Equal(t, 6.0, s.Bounds.MaxX)
}

func TestSummarize_LegacyFailedRun(t *testing.T) {
	rp := &rec.Replay{
		Header: rec.LegacyHeader{InternalLevel: 81},
		Events: []rec.Event{
			{Time: 10, Object: rec.NoObject, Kind: rec.Apple, Volume: 1},
			{Time: 3, Object: rec.NoObject, Kind: rec.Failure},
		},
	}

	s := Summarize(rp)

	assert.Equal(t, uint32(100), s.Version)
	assert.Equal(t, uint32(0), s.Link)
	assert.Equal(t, uint32(81), s.Level)
	assert.True(t, s.Failed)
	assert.False(t, s.Finished)
	assert.Equal(t, 10.0, s.Duration, "duration is the latest event time")
	assert.Zero(t, s.TrackLength)
	assert.Nil(t, s.Bounds)
}

func TestSummary_JSONOmitsMissingBounds(t *testing.T) {
	b, err := json.Marshal(Summarize(&rec.Replay{Header: rec.LegacyHeader{}}))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "bounds")
	assert.Contains(t, string(b), `"version":100`)
}

func TestSummarize_NonFiniteValuesStayEncodable(t *testing.T) {
	nan := float32(math.NaN())
	rp := &rec.Replay{
		FrameCount: 2,
		Header:     rec.LegacyHeader{InternalLevel: 3},
		Frames: []rec.Frame{
			{Bike: rec.Point{X: nan, Y: 1}},
			{Bike: rec.Point{X: 2, Y: 2}},
		},
		Events: []rec.Event{
			{Time: 1.5, Object: rec.NoObject, Kind: rec.Apple, Volume: 1},
			{Time: math.Inf(1), Object: rec.NoObject, Kind: rec.Success},
			{Time: math.NaN(), Object: rec.NoObject, Kind: rec.Bounce},
		},
	}

	s := Summarize(rp)

	assert.Zero(t, s.TrackLength)
	assert.Nil(t, s.Bounds)
	assert.Equal(t, 1.5, s.Duration)
	assert.True(t, s.Finished)

	_, err := json.Marshal(s)
	require.NoError(t, err)
}

func TestSummarize_StationaryBike(t *testing.T) {
	rp := &rec.Replay{
		FrameCount: 2,
		Header:     rec.LegacyHeader{InternalLevel: 1},
		Frames:     []rec.Frame{{}, {}},
	}

	s := Summarize(rp)

	assert.Zero(t, s.TrackLength)
	require.NotNil(t, s.Bounds)
	assert.Equal(t, 0.0, s.Bounds.MaxX)
}
