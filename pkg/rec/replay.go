package rec

import "fmt"

// EndMarker terminates every replay stream.
const EndMarker uint32 = 4796277

// Replay is a complete decoded replay file.
type Replay struct {
	FrameCount uint32  `json:"frameCount"`
	Header     Header  `json:"header"`
	Frames     []Frame `json:"frames"`
	Events     []Event `json:"events"`
}

// Decode parses a whole replay file. Decoding stops at the first violation;
// the returned error is a *DecodeError wrapping one of the Err* kinds.
// Bytes following the end marker are ignored.
func Decode(b []byte) (*Replay, error) {
	r := newReader(b)
	rp := &Replay{}

	start := r.off
	fail := func(stage Stage, err error) (*Replay, error) {
		return nil, &DecodeError{Stage: stage, Offset: start, Err: err}
	}

	var err error
	if rp.FrameCount, err = r.u32(); err != nil {
		return fail(StageFrameCount, err)
	}

	start = r.off
	if rp.Header, err = readHeader(r); err != nil {
		return fail(StageHeader, err)
	}

	start = r.off
	if rp.Frames, err = readFrames(r, rp.FrameCount); err != nil {
		start = r.off
		return fail(StageFrames, err)
	}

	start = r.off
	eventCount, err := r.u32()
	if err != nil {
		return fail(StageEventCount, err)
	}
	if uint64(eventCount)*EventSize > uint64(r.remaining()) {
		return fail(StageEvents, fmt.Errorf("%w: %d events need %d bytes, have %d",
			ErrTruncatedInput, eventCount, uint64(eventCount)*EventSize, r.remaining()))
	}

	rp.Events = make([]Event, eventCount)
	for i := range rp.Events {
		start = r.off
		if rp.Events[i], err = readEvent(r); err != nil {
			return fail(StageEvents, fmt.Errorf("event %d: %w", i, err))
		}
	}

	start = r.off
	marker, err := r.u32()
	if err != nil {
		return fail(StageEndMarker, fmt.Errorf("%w: %w", ErrMissingEndMarker, err))
	}
	if marker != EndMarker {
		return fail(StageEndMarker, fmt.Errorf("%w: got %d, want %d", ErrMissingEndMarker, marker, EndMarker))
	}
	return rp, nil
}

// Size returns the encoded length of rp in bytes.
func (rp *Replay) Size() int {
	header := legacyHeaderSize
	if rp.Header != nil && rp.Header.Version() == ModernVersion {
		header = modernHeaderSize
	}
	return 4 + header + len(rp.Frames)*frameSize + 4 + len(rp.Events)*EventSize + 4
}

// Encode serializes rp and appends the end marker. It refuses values that
// Decode could not have produced; the error is an *EncodeError.
func Encode(rp *Replay) ([]byte, error) {
	if rp == nil {
		return nil, &EncodeError{Stage: StageFrameCount, Err: fmt.Errorf("%w: nil replay", ErrInconsistentHeader)}
	}
	w := newWriter(rp.Size())
	fail := func(stage Stage, err error) ([]byte, error) {
		return nil, &EncodeError{Stage: stage, Offset: w.len(), Err: err}
	}

	if int64(len(rp.Frames)) != int64(rp.FrameCount) {
		return fail(StageFrameCount, fmt.Errorf("%w: frame count %d, have %d frames",
			ErrRaggedFrameColumns, rp.FrameCount, len(rp.Frames)))
	}
	w.u32(rp.FrameCount)

	if err := writeHeader(w, rp.Header); err != nil {
		return fail(StageHeader, err)
	}

	if err := writeColumns(w, ColumnsOf(rp.Frames)); err != nil {
		return fail(StageFrames, err)
	}

	w.u32(uint32(len(rp.Events)))

	for i, e := range rp.Events {
		if err := writeEvent(w, e); err != nil {
			return fail(StageEvents, fmt.Errorf("event %d: %w", i, err))
		}
	}

	w.u32(EndMarker)
	return w.bytes(), nil
}
