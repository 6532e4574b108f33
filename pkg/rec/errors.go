package rec

import (
	"errors"
	"fmt"
)

// Error kinds returned by the codec. Every error produced by Decode or Encode
// wraps exactly one of these, so callers can use errors.Is.
var (
	ErrTruncatedInput           = errors.New("truncated input")
	ErrInvalidEnumValue         = errors.New("invalid enum value")
	ErrUnknownEventKind         = fmt.Errorf("%w: unknown event kind", ErrInvalidEnumValue)
	ErrInvalidLevelId           = errors.New("invalid level id")
	ErrInconsistentHeader       = errors.New("inconsistent header")
	ErrRaggedFrameColumns       = errors.New("ragged frame columns")
	ErrInconsistentEventPayload = errors.New("inconsistent event payload")
	ErrMissingEndMarker         = errors.New("missing end marker")
)

// Stage names the step of the replay layout a failure occurred in.
type Stage string

const (
	StageFrameCount Stage = "frame count"
	StageHeader     Stage = "header"
	StageFrames     Stage = "frames"
	StageEventCount Stage = "event count"
	StageEvents     Stage = "events"
	StageEndMarker  Stage = "end marker"
)

// DecodeError reports where in the input buffer decoding stopped.
type DecodeError struct {
	Stage  Stage
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %v", e.Stage, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports the stage and output offset at which encoding was refused.
type EncodeError struct {
	Stage  Stage
	Offset int
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s at offset %d: %v", e.Stage, e.Offset, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
