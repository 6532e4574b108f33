package rec

import (
	"encoding/json"
	"fmt"
)

// EventSize is the fixed on-disk width of an event record.
const EventSize = 16

// kindSlotWidth is the padded width of the event kind field.
const kindSlotWidth = 2

// NoObject is the object index of every event that does not refer to an object.
const NoObject int16 = -1

// EventKind identifies a gameplay occurrence.
type EventKind uint8

const (
	ObjectTaken EventKind = iota
	Bounce
	Failure
	Success
	Apple
	ChangeDirection
	RightVolt
	LeftVolt
)

var eventKindNames = [...]string{
	ObjectTaken:     "object_taken",
	Bounce:          "bounce",
	Failure:         "failure",
	Success:         "success",
	Apple:           "apple",
	ChangeDirection: "changedir",
	RightVolt:       "right_volt",
	LeftVolt:        "left_volt",
}

// EventKinds lists every defined kind in tag order.
var EventKinds = []EventKind{ObjectTaken, Bounce, Failure, Success, Apple, ChangeDirection, RightVolt, LeftVolt}

func (k EventKind) Valid() bool { return int(k) < len(eventKindNames) }

func (k EventKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
	return eventKindNames[k]
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for i, name := range eventKindNames {
		if name == s {
			return EventKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
}

func (k EventKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownEventKind, uint8(k))
	}
	return json.Marshal(k.String())
}

func (k *EventKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseEventKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Event is a discrete gameplay occurrence.
type Event struct {
	Time   float64   `json:"time"`
	Object int16     `json:"object"`
	Kind   EventKind `json:"kind"`
	Volume float32   `json:"volume"`
}

// Validate checks that the object index agrees with the kind: taken objects
// carry a non-negative index, every other kind carries NoObject.
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: tag %d", ErrUnknownEventKind, uint8(e.Kind))
	}
	if e.Kind == ObjectTaken {
		if e.Object < 0 {
			return fmt.Errorf("%w: %s event with object %d", ErrInconsistentEventPayload, e.Kind, e.Object)
		}
		return nil
	}
	if e.Object != NoObject {
		return fmt.Errorf("%w: %s event with object %d, want %d", ErrInconsistentEventPayload, e.Kind, e.Object, NoObject)
	}
	return nil
}

// DecodeEvent decodes one event record from the start of b.
func DecodeEvent(b []byte) (Event, error) {
	return readEvent(newReader(b))
}

func readEvent(r *reader) (Event, error) {
	var (
		e   Event
		err error
	)
	if e.Time, err = r.f64(); err != nil {
		return Event{}, err
	}
	if e.Object, err = r.i16(); err != nil {
		return Event{}, err
	}
	tag, err := r.paddedTag(kindSlotWidth)
	if err != nil {
		return Event{}, err
	}
	e.Kind = EventKind(tag)
	if !e.Kind.Valid() {
		return Event{}, fmt.Errorf("%w: tag %d", ErrUnknownEventKind, tag)
	}
	if e.Volume, err = r.f32(); err != nil {
		return Event{}, err
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// EncodeEvent serializes e after checking its invariants.
func EncodeEvent(e Event) ([]byte, error) {
	w := newWriter(EventSize)
	if err := writeEvent(w, e); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

func writeEvent(w *writer, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	w.f64(e.Time)
	w.i16(e.Object)
	w.paddedTag(uint8(e.Kind), kindSlotWidth)
	w.f32(e.Volume)
	return nil
}
