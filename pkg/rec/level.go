package rec

import (
	"fmt"
	"sort"
)

// LegacyLevelCount is the number of internal levels addressable by a v1.00
// header. Raw ids at or above it are rejected.
const LegacyLevelCount = 24

// legacyLevels rewrites raw v1.00 internal level ids to canonical ids.
// Raw ids below LegacyLevelCount that are not listed map to themselves.
var legacyLevels = map[uint32]uint32{
	11: 81, 12: 11, 13: 82, 14: 84, 15: 17, 16: 83, 17: 18,
	18: 19, 19: 20, 20: 21, 21: 22, 22: 80, 23: 38,
}

// canonicalLevels is the inverse of legacyLevels.
var canonicalLevels = invertLevels(legacyLevels)

func invertLevels(m map[uint32]uint32) map[uint32]uint32 {
	raws := make([]uint32, 0, len(m))
	for raw := range m {
		raws = append(raws, raw)
	}
	// ascending raw order makes "first match wins" well defined
	sort.Slice(raws, func(i, j int) bool { return raws[i] < raws[j] })

	inv := make(map[uint32]uint32, len(m))
	for _, raw := range raws {
		canonical := m[raw]
		if prev, ok := inv[canonical]; ok {
			panic(fmt.Sprintf("rec: legacy level table not injective: %d and %d both map to %d", prev, raw, canonical))
		}
		inv[canonical] = raw
	}
	return inv
}

// CanonicalLevel maps a raw v1.00 internal level id to its canonical id.
func CanonicalLevel(raw uint32) (uint32, error) {
	if raw >= LegacyLevelCount {
		return 0, fmt.Errorf("%w: raw level %d (max %d)", ErrInvalidLevelId, raw, LegacyLevelCount-1)
	}
	if canonical, ok := legacyLevels[raw]; ok {
		return canonical, nil
	}
	return raw, nil
}

// RawLevel maps a canonical level id back to the id stored in a v1.00 header.
func RawLevel(canonical uint32) (uint32, error) {
	if raw, ok := canonicalLevels[canonical]; ok {
		return raw, nil
	}
	if canonical >= LegacyLevelCount {
		return 0, fmt.Errorf("%w: level %d has no legacy id", ErrInvalidLevelId, canonical)
	}
	return canonical, nil
}
