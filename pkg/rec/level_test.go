package rec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyLevelTable(t *testing.T) {
	want := map[uint32]uint32{
		11: 81, 12: 11, 13: 82, 14: 84, 15: 17, 16: 83, 17: 18,
		18: 19, 19: 20, 20: 21, 21: 22, 22: 80, 23: 38,
	}
	for raw, canonical := range want {
		got, err := CanonicalLevel(raw)
		require.NoError(t, err)
		assert.Equal(t, canonical, got, "raw %d", raw)

		back, err := RawLevel(canonical)
		require.NoError(t, err)
		assert.Equal(t, raw, back, "canonical %d", canonical)
	}
}

func TestLegacyLevelPassThrough(t *testing.T) {
	for raw := uint32(0); raw <= 10; raw++ {
		got, err := CanonicalLevel(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, got)

		back, err := RawLevel(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	}
}

func TestLegacyLevelInjective(t *testing.T) {
	seen := map[uint32]uint32{}
	for raw := uint32(0); raw < LegacyLevelCount; raw++ {
		canonical, err := CanonicalLevel(raw)
		require.NoError(t, err)
		if prev, ok := seen[canonical]; ok {
			t.Fatalf("raw %d and %d both map to %d", prev, raw, canonical)
		}
		seen[canonical] = raw

		back, err := RawLevel(canonical)
		require.NoError(t, err)
		assert.Equal(t, raw, back)
	}
	assert.Len(t, seen, LegacyLevelCount)
}

func TestCanonicalLevelOutOfRange(t *testing.T) {
	for _, raw := range []uint32{24, 25, 90, 0xFFFFFFFF} {
		_, err := CanonicalLevel(raw)
		assert.ErrorIs(t, err, ErrInvalidLevelId, "raw %d", raw)
	}
}

func TestRawLevelOutOfRange(t *testing.T) {
	for _, canonical := range []uint32{24, 50, 90} {
		_, err := RawLevel(canonical)
		assert.ErrorIs(t, err, ErrInvalidLevelId, "canonical %d", canonical)
	}
}

func TestInvertLevelsPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		invertLevels(map[uint32]uint32{1: 5, 2: 5})
	})
}
