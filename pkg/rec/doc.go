// Package rec decodes and encodes motorcycle replay files (*.rec).
//
// # Layout
//
// All integers are little-endian:
//
//	frame_count  u32
//	header       v1.20: version(120) u32, link_number u32, internal_num u32
//	             v1.00: internal_level u32
//	frame_block  14 columns of frame_count elements each
//	events_num   u32
//	events       events_num records of 16 bytes
//	end_marker   u32 = 4796277
//
// The two header revisions carry no tag. A header whose first word is 120 is
// read as v1.20; any other word is taken as a v1.00 raw internal level id,
// which is remapped to a canonical id (see CanonicalLevel).
//
// The frame block is stored column by column (all bike x coordinates, then
// all bike y coordinates, and so on) and exposed as one Frame per sample.
//
// # Errors
//
// Decode and Encode return a *DecodeError or *EncodeError naming the stage
// and byte offset of the failure. Both wrap one of the Err* values, so
//
//	if errors.Is(err, rec.ErrTruncatedInput) { ... }
//
// works regardless of where the input was cut.
//
// # Concurrency
//
// All functions are pure over their arguments and safe for concurrent use.
package rec
