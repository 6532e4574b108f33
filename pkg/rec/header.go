package rec

import "fmt"

const (
	// LegacyVersion is the implicit version of headers without a version field.
	LegacyVersion uint32 = 100
	// ModernVersion is the version marker that opens a v1.20 header.
	ModernVersion uint32 = 120
	// MaxInternalLevel is the highest internal level a v1.20 header may name
	// directly.
	MaxInternalLevel uint32 = 90
	// NoInternalLevel marks a v1.20 header that refers to its level via the
	// link number only.
	NoInternalLevel uint32 = 0xFFFFFFFF
)

const (
	legacyHeaderSize = 4
	modernHeaderSize = 12
)

// Header is either a LegacyHeader or a ModernHeader.
type Header interface {
	// Version is 100 for legacy headers and 120 for modern ones.
	Version() uint32
	// Link is the external level link number, always 0 for legacy headers.
	Link() uint32
	// Level is the canonical internal level, or NoInternalLevel.
	Level() uint32

	isHeader()
}

// LegacyHeader is the v1.00 header: a single internal level id.
type LegacyHeader struct {
	InternalLevel uint32 `json:"internalLevel"`
}

func (LegacyHeader) Version() uint32 { return LegacyVersion }
func (LegacyHeader) Link() uint32 { return 0 }
func (h LegacyHeader) Level() uint32 { return h.InternalLevel }
func (LegacyHeader) isHeader() {}

// ModernHeader is the v1.20 header.
type ModernHeader struct {
	LinkNumber  uint32 `json:"linkNumber"`
	InternalNum uint32 `json:"internalNum"`
}

func (ModernHeader) Version() uint32 { return ModernVersion }
func (h ModernHeader) Link() uint32 { return h.LinkNumber }
func (h ModernHeader) Level() uint32 { return h.InternalNum }
func (ModernHeader) isHeader() {}

// Validate checks the link/internal number relationship.
func (h ModernHeader) Validate() error {
	if h.LinkNumber > 0 {
		if h.InternalNum != NoInternalLevel {
			return fmt.Errorf("%w: link %d requires internal number %#x, got %d",
				ErrInconsistentHeader, h.LinkNumber, NoInternalLevel, h.InternalNum)
		}
		return nil
	}
	if h.InternalNum > MaxInternalLevel {
		return fmt.Errorf("%w: internal number %d exceeds %d", ErrInconsistentHeader, h.InternalNum, MaxInternalLevel)
	}
	return nil
}

// DecodeHeader resolves the header at the start of b and returns it together
// with the number of bytes it occupies. A leading 120 always selects the
// modern form; anything else is read as a legacy level id.
func DecodeHeader(b []byte) (Header, int, error) {
	r := newReader(b)
	h, err := readHeader(r)
	return h, r.off, err
}

func readHeader(r *reader) (Header, error) {
	first, err := r.peekU32()
	if err != nil {
		return nil, err
	}
	if first == ModernVersion {
		return readModernHeader(r)
	}
	raw, err := r.u32()
	if err != nil {
		return nil, err
	}
	level, err := CanonicalLevel(raw)
	if err != nil {
		return nil, err
	}
	return LegacyHeader{InternalLevel: level}, nil
}

func readModernHeader(r *reader) (Header, error) {
	if _, err := r.u32(); err != nil {
		return nil, err
	}
	link, err := r.u32()
	if err != nil {
		return nil, err
	}
	internal, err := r.u32()
	if err != nil {
		return nil, err
	}
	h := ModernHeader{LinkNumber: link, InternalNum: internal}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// EncodeHeader serializes h in its own revision's layout.
func EncodeHeader(h Header) ([]byte, error) {
	w := newWriter(modernHeaderSize)
	if err := writeHeader(w, h); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

func writeHeader(w *writer, h Header) error {
	switch h := h.(type) {
	case ModernHeader:
		if err := h.Validate(); err != nil {
			return err
		}
		w.u32(ModernVersion)
		w.u32(h.LinkNumber)
		w.u32(h.InternalNum)
	case LegacyHeader:
		raw, err := RawLevel(h.InternalLevel)
		if err != nil {
			return err
		}
		w.u32(raw)
	case nil:
		return fmt.Errorf("%w: no header", ErrInconsistentHeader)
	default:
		return fmt.Errorf("%w: unsupported header %T", ErrInconsistentHeader, h)
	}
	return nil
}
