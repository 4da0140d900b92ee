// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A Code is a square pixel grid.  It is immutable.
type Code struct {
	size    int
	bits    []bool // row by row, true is black
	version Version
	level   Level
	mask    int
}

// Size returns the number of pixels on a side.
func (c *Code) Size() int { return c.size }

// Version returns the QR version of c.
func (c *Code) Version() Version { return c.version }

// Level returns the error correction level of c.
func (c *Code) Level() Level { return c.level }

// Mask returns the mask applied to c.
func (c *Code) Mask() int { return c.mask }

// Black returns true if the pixel at (x,y) is black.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.size && 0 <= y && y < c.size &&
		c.bits[y*c.size+x]
}

// Modules returns a copy of the pixels, row by row, true is black.
func (c *Code) Modules() []bool {
	return append([]bool(nil), c.bits...)
}

// Rows returns a copy of the pixels as a slice of rows.
func (c *Code) Rows() [][]bool {
	bits := c.Modules()
	rows := make([][]bool, c.size)
	for y := range rows {
		rows[y], bits = bits[:c.size:c.size], bits[c.size:]
	}
	return rows
}

// Encoder encodes a QR code.
type Encoder struct {
	p      *Plan
	b      *Bits
	policy MaskPolicy
	n      int  // bytes written
	done   bool // Code called
}

// NewEncoder returns an Encoder for the given version, level and
// mask policy.
func NewEncoder(version Version, level Level, policy MaskPolicy) (*Encoder, error) {
	if !policy.valid() {
		return nil, ErrMask
	}
	p, err := NewPlan(version, level)
	if err != nil {
		return nil, err
	}
	return &Encoder{p: p, b: NewBits(version), policy: policy}, nil
}

// Plan returns the Plan used by e.
func (e *Encoder) Plan() *Plan { return e.p }

// Write adds text to e as a byte mode segment.  If the segment does
// not fit, Write returns a *CapacityError and e is unchanged.
func (e *Encoder) Write(text string) error {
	if e.done {
		return ErrFinished
	}
	if free := e.p.DataBits - e.b.Bits(); SegmentLen(len(text)) > free {
		return &CapacityError{e.p.Version, e.p.Level,
			e.n + len(text), e.n + max((free-headerLen)/8, 0)}
	}
	e.b.WriteBytes(text)
	e.n += len(text)
	return nil
}

// Reset discards data written to e.
func (e *Encoder) Reset() {
	e.b.Reset()
	e.n = 0
	e.done = false
}

// Code returns a QR code containing data written to e.
// After Code e must be Reset before reuse; until then Code and Write
// return ErrFinished.
func (e *Encoder) Code() (*Code, error) {
	if e.done {
		return nil, ErrFinished
	}
	c, _ := e.code()
	return c, nil
}

// code returns the code and the number of bits placed.
func (e *Encoder) code() (*Code, int) {
	e.done = true
	e.b.AddCheckBytes(e.p.Version, e.p.Level)
	bits := NewBitStream(e.b.Bytes())
	// Now we have the checksum bytes and the data bytes.
	// Construct the grid consisting of data and checksum bits.
	data := newGrid(e.p.Size)
	n := e.p.Serialise(&bits, data)

	// Apply masks to the data to construct the actual codes.
	// Choose the code with the smallest penalty.
	if mask, ok := e.policy.Fixed(); ok {
		return e.p.apply(data, mask), n
	}
	var best *Code
	pen := 1 << 30
	for mask := range e.p.Pattern {
		c := e.p.apply(data, mask)
		if p := c.Penalty(); p < pen {
			best, pen = c, p
		}
	}
	return best, n
}

// apply returns the code with data masked by mask and the function
// patterns for mask.
func (p *Plan) apply(data *Grid, mask int) *Code {
	siz := p.Size
	pat := p.Pattern[mask]
	c := &Code{
		size:    siz,
		bits:    make([]bool, siz*siz),
		version: p.Version,
		level:   p.Level,
		mask:    mask,
	}
	f := maskFunc[mask]
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			i := y*siz + x
			if p.Version.IsReserved(x, y) {
				c.bits[i] = pat.M[i] == Dark
			} else {
				c.bits[i] = (data.M[i] == Dark) != f(x, y)
			}
		}
	}
	return c
}

// Encode is a wrapper around Write and Code.
func (e *Encoder) Encode(text string) (*Code, error) {
	if err := e.Write(text); err != nil {
		return nil, err
	}
	return e.Code()
}

// Encode encodes text as a QR code with the given version, level and
// mask policy.  Arguments and capacity are checked before any pixel is
// drawn.
func Encode(version Version, level Level, policy MaskPolicy, text string) (*Code, error) {
	p, err := NewProfile(version, level)
	if err != nil {
		return nil, err
	}
	if !policy.valid() {
		return nil, ErrMask
	}
	if len(text) > p.Capacity {
		return nil, &CapacityError{version, level, len(text), p.Capacity}
	}
	e, err := NewEncoder(version, level, policy)
	if err != nil {
		return nil, err
	}
	return e.Encode(text)
}
