package rec

import (
	"encoding/json"
	"fmt"
)

// Direction is the way the bike faces.
type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

func (d Direction) valid() bool { return d <= Right }

func (d Direction) MarshalJSON() ([]byte, error) {
	if !d.valid() {
		return nil, fmt.Errorf("%w: direction %d", ErrInvalidEnumValue, uint8(d))
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "left":
		*d = Left
	case "right":
		*d = Right
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidEnumValue, s)
	}
	return nil
}

// Point is a position in level coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Frame is one sampled simulation tick.
type Frame struct {
	Bike            Point     `json:"bike"`
	LeftWheel       Point     `json:"leftWheel"`
	RightWheel      Point     `json:"rightWheel"`
	BikeAngle       float32   `json:"bikeAngle"`
	LeftWheelAngle  float32   `json:"leftWheelAngle"`
	RightWheelAngle float32   `json:"rightWheelAngle"`
	Direction       Direction `json:"direction"`
	EngineRPM       float32   `json:"engineRpm"`
	Throttling      bool      `json:"throttling"`
	FrictionLeft    float32   `json:"frictionLeft"`
	FrictionRight   float32   `json:"frictionRight"`
}

// frameSize is the on-disk width of one frame summed over all columns:
// twelve float32 columns plus the direction and throttling bytes.
const frameSize = 12*4 + 1 + 1

// Columns is the on-disk struct-of-arrays layout of the frame block, one
// slice per column in file order.
type Columns struct {
	BikeX           []float32
	BikeY           []float32
	LeftWheelX      []float32
	LeftWheelY      []float32
	RightWheelX     []float32
	RightWheelY     []float32
	BikeAngle       []float32
	LeftWheelAngle  []float32
	RightWheelAngle []float32
	Direction       []Direction
	EngineRPM       []float32
	Throttling      []bool
	FrictionLeft    []float32
	FrictionRight   []float32
}

// Len returns the common column length, or ErrRaggedFrameColumns when the
// columns disagree.
func (c *Columns) Len() (int, error) {
	lens := [...]int{
		len(c.BikeX), len(c.BikeY),
		len(c.LeftWheelX), len(c.LeftWheelY),
		len(c.RightWheelX), len(c.RightWheelY),
		len(c.BikeAngle), len(c.LeftWheelAngle), len(c.RightWheelAngle),
		len(c.Direction), len(c.EngineRPM), len(c.Throttling),
		len(c.FrictionLeft), len(c.FrictionRight),
	}
	for i, n := range lens[1:] {
		if n != lens[0] {
			return 0, fmt.Errorf("%w: column %d has %d samples, column 0 has %d", ErrRaggedFrameColumns, i+1, n, lens[0])
		}
	}
	return lens[0], nil
}

// Rows transposes the columns into one Frame per sample index.
func (c *Columns) Rows() ([]Frame, error) {
	n, err := c.Len()
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{
			Bike:            Point{X: c.BikeX[i], Y: c.BikeY[i]},
			LeftWheel:       Point{X: c.LeftWheelX[i], Y: c.LeftWheelY[i]},
			RightWheel:      Point{X: c.RightWheelX[i], Y: c.RightWheelY[i]},
			BikeAngle:       c.BikeAngle[i],
			LeftWheelAngle:  c.LeftWheelAngle[i],
			RightWheelAngle: c.RightWheelAngle[i],
			Direction:       c.Direction[i],
			EngineRPM:       c.EngineRPM[i],
			Throttling:      c.Throttling[i],
			FrictionLeft:    c.FrictionLeft[i],
			FrictionRight:   c.FrictionRight[i],
		}
	}
	return frames, nil
}

// ColumnsOf projects every field of frames into its own column.
func ColumnsOf(frames []Frame) *Columns {
	n := len(frames)
	c := &Columns{
		BikeX:           make([]float32, n),
		BikeY:           make([]float32, n),
		LeftWheelX:      make([]float32, n),
		LeftWheelY:      make([]float32, n),
		RightWheelX:     make([]float32, n),
		RightWheelY:     make([]float32, n),
		BikeAngle:       make([]float32, n),
		LeftWheelAngle:  make([]float32, n),
		RightWheelAngle: make([]float32, n),
		Direction:       make([]Direction, n),
		EngineRPM:       make([]float32, n),
		Throttling:      make([]bool, n),
		FrictionLeft:    make([]float32, n),
		FrictionRight:   make([]float32, n),
	}
	for i, f := range frames {
		c.BikeX[i], c.BikeY[i] = f.Bike.X, f.Bike.Y
		c.LeftWheelX[i], c.LeftWheelY[i] = f.LeftWheel.X, f.LeftWheel.Y
		c.RightWheelX[i], c.RightWheelY[i] = f.RightWheel.X, f.RightWheel.Y
		c.BikeAngle[i] = f.BikeAngle
		c.LeftWheelAngle[i] = f.LeftWheelAngle
		c.RightWheelAngle[i] = f.RightWheelAngle
		c.Direction[i] = f.Direction
		c.EngineRPM[i] = f.EngineRPM
		c.Throttling[i] = f.Throttling
		c.FrictionLeft[i] = f.FrictionLeft
		c.FrictionRight[i] = f.FrictionRight
	}
	return c
}

// DecodeFrames reads a frame block of n samples from the start of b and
// returns the frames and the number of bytes consumed.
func DecodeFrames(b []byte, n uint32) ([]Frame, int, error) {
	r := newReader(b)
	frames, err := readFrames(r, n)
	return frames, r.off, err
}

func readFrames(r *reader, n uint32) ([]Frame, error) {
	if uint64(n)*frameSize > uint64(r.remaining()) {
		return nil, fmt.Errorf("%w: frame block of %d samples needs %d bytes, have %d",
			ErrTruncatedInput, n, uint64(n)*frameSize, r.remaining())
	}
	count := int(n)
	var (
		c   Columns
		err error
	)
	floats := []*[]float32{
		&c.BikeX, &c.BikeY, &c.LeftWheelX, &c.LeftWheelY, &c.RightWheelX, &c.RightWheelY,
		&c.BikeAngle, &c.LeftWheelAngle, &c.RightWheelAngle,
	}
	for _, col := range floats {
		if *col, err = readFloatColumn(r, count); err != nil {
			return nil, err
		}
	}
	c.Direction = make([]Direction, count)
	for i := range c.Direction {
		at := r.off
		tag, err := r.u8()
		if err != nil {
			return nil, err
		}
		d := Direction(tag)
		if !d.valid() {
			// leave the reader on the offending byte
			r.off = at
			return nil, fmt.Errorf("%w: direction %d in frame %d", ErrInvalidEnumValue, tag, i)
		}
		c.Direction[i] = d
	}
	if c.EngineRPM, err = readFloatColumn(r, count); err != nil {
		return nil, err
	}
	c.Throttling = make([]bool, count)
	for i := range c.Throttling {
		if c.Throttling[i], err = r.boolean(); err != nil {
			return nil, err
		}
	}
	if c.FrictionLeft, err = readFloatColumn(r, count); err != nil {
		return nil, err
	}
	if c.FrictionRight, err = readFloatColumn(r, count); err != nil {
		return nil, err
	}
	return c.Rows()
}

func readFloatColumn(r *reader, n int) ([]float32, error) {
	col := make([]float32, n)
	for i := range col {
		v, err := r.f32()
		if err != nil {
			return nil, err
		}
		col[i] = v
	}
	return col, nil
}

// EncodeFrames serializes frames as a columnar frame block.
func EncodeFrames(frames []Frame) ([]byte, error) {
	w := newWriter(len(frames) * frameSize)
	if err := writeColumns(w, ColumnsOf(frames)); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

func writeColumns(w *writer, c *Columns) error {
	n, err := c.Len()
	if err != nil {
		return err
	}
	for i, d := range c.Direction {
		if !d.valid() {
			return fmt.Errorf("%w: direction %d in frame %d", ErrInvalidEnumValue, uint8(d), i)
		}
	}
	for _, col := range [][]float32{
		c.BikeX, c.BikeY, c.LeftWheelX, c.LeftWheelY, c.RightWheelX, c.RightWheelY,
		c.BikeAngle, c.LeftWheelAngle, c.RightWheelAngle,
	} {
		writeFloatColumn(w, col)
	}
	for i := 0; i < n; i++ {
		w.u8(uint8(c.Direction[i]))
	}
	writeFloatColumn(w, c.EngineRPM)
	for _, t := range c.Throttling {
		w.boolean(t)
	}
	writeFloatColumn(w, c.FrictionLeft)
	writeFloatColumn(w, c.FrictionRight)
	return nil
}

func writeFloatColumn(w *writer, col []float32) {
	for _, v := range col {
		w.f32(v)
	}
}

// EncodeColumns serializes an already columnar frame block.
func EncodeColumns(c *Columns) ([]byte, error) {
	w := newWriter(len(c.BikeX) * frameSize)
	if err := writeColumns(w, c); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}
