// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A Module is the state of a QR code pixel under construction.
type Module uint8

const (
	Unset Module = iota // not yet written
	Light               // white
	Dark                // black
)

func (m Module) String() string {
	switch m {
	case Unset:
		return "unset"
	case Light:
		return "light"
	case Dark:
		return "dark"
	}
	return "invalid"
}

func module(dark bool) Module {
	if dark {
		return Dark
	}
	return Light
}

// A Grid is a square of Modules, stored row by row.
type Grid struct {
	Size int
	M    []Module
}

func newGrid(siz int) *Grid {
	return &Grid{Size: siz, M: make([]Module, siz*siz)}
}

// At returns the module at column x, row y.
func (g *Grid) At(x, y int) Module { return g.M[y*g.Size+x] }

// set writes a module.  Each module is written once.
func (g *Grid) set(x, y int, m Module) {
	i := y*g.Size + x
	if g.M[i] != Unset {
		panic("qr: internal error: module written twice")
	}
	g.M[i] = m
}

func (g *Grid) clone() *Grid {
	return &Grid{Size: g.Size, M: append([]Module(nil), g.M...)}
}

// IsReserved reports whether the pixel at column x, row y of a QR code
// of version v belongs to a function pattern: a position box with its
// separator, format information, the dark pixel, timing or alignment.
// Reserved pixels carry neither data nor mask.
func (v Version) IsReserved(x, y int) bool {
	siz := v.Size()
	switch {
	case x < 9 && y < 9, x >= siz-8 && y < 9, x < 9 && y >= siz-8:
		return true
	case x == 6 || y == 6:
		return true
	}
	if a := vtab[v].apos; a != 0 {
		return abs(x-a) <= 2 && abs(y-a) <= 2
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// A Plan describes how to construct a QR code
// with a specific version and level.
type Plan struct {
	Version Version // QR code version
	Level   Level   // QR error correction Level

	DataBits int // number of data bits
	Size     int // number of pixels on a side

	// Function patterns for each mask: position and alignment
	// boxes, timing, dark pixel and format information.  Pixels
	// not reserved are Unset.
	Pattern [8]*Grid
}

// NewPlan returns a Plan for a QR code with the given version and level.
func NewPlan(version Version, level Level) (*Plan, error) {
	if !level.valid() {
		return nil, ErrLevel
	}
	if !version.valid() {
		return nil, ErrVersion
	}
	p := &Plan{
		Version:  version,
		Level:    level,
		DataBits: version.DataBits(level),
		Size:     version.Size(),
	}
	base := vplan(version)
	for mask := range p.Pattern {
		g := base.clone()
		fplan(formatBits(level, mask), g)
		p.Pattern[mask] = g
	}
	return p, nil
}

// vplan draws the function patterns for the given version,
// except format information.
func vplan(v Version) *Grid {
	siz := v.Size()
	g := newGrid(siz)

	// Position boxes with separators.
	posBox(g, 0, 0)
	posBox(g, siz-7, 0)
	posBox(g, 0, siz-7)

	// Alignment box.
	if a := vtab[v].apos; a != 0 {
		alignBox(g, a, a)
	}

	// Timing, between the separators; dark on even positions.
	for i := 8; i < siz-8; i++ {
		g.set(i, 6, module(i&1 == 0))
		g.set(6, i, module(i&1 == 0))
	}

	// One lonely black pixel
	g.set(8, siz-8, Dark)
	return g
}

// posBox draws a 7x7 position box at upper left x, y with its one
// pixel separator, clipped to the code.
func posBox(g *Grid, x, y int) {
	for dy := -1; dy <= 7; dy++ {
		for dx := -1; dx <= 7; dx++ {
			xx, yy := x+dx, y+dy
			if xx < 0 || yy < 0 || xx >= g.Size || yy >= g.Size {
				continue
			}
			// Distance from the centre: 0-1 core, 2 ring,
			// 3 border, 4 separator.
			d := max(abs(dx-3), abs(dy-3))
			g.set(xx, yy, module(d != 2 && d != 4))
		}
	}
}

// alignBox draws a 5x5 alignment box centred at x, y.
func alignBox(g *Grid, x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			g.set(x+dx, y+dy, module(max(abs(dx), abs(dy)) != 1))
		}
	}
}

// formatBits returns the 15 bit format information for level and mask:
// 2 level bits and 3 mask bits, a BCH(15,5) remainder of generator
// 0x537, masked with 0x5412.
func formatBits(l Level, mask int) uint16 {
	data := uint32([4]byte{L: 1, M: 0, Q: 3, H: 2}[l])<<3 | uint32(mask)
	rem := data
	for i := 0; i < 10; i++ {
		rem = rem<<1 ^ rem>>9*0x537
	}
	return uint16((data<<10 | rem) ^ 0x5412)
}

// formatPos returns the positions of format bits 0 (least significant)
// to 14 in each of the two copies: around the upper left position box,
// and split between the lower left and upper right ones.
func formatPos(siz int) (a, b [15][2]int) {
	for i := 0; i < 15; i++ {
		switch {
		case i < 6:
			a[i] = [2]int{8, i}
		case i < 8:
			a[i] = [2]int{8, i + 1}
		case i == 8:
			a[i] = [2]int{7, 8}
		default:
			a[i] = [2]int{14 - i, 8}
		}
		if i < 8 {
			b[i] = [2]int{siz - 1 - i, 8}
		} else {
			b[i] = [2]int{8, siz - 15 + i}
		}
	}
	return
}

// fplan draws the format bits.
func fplan(fb uint16, g *Grid) {
	a, b := formatPos(g.Size)
	for i := 0; i < 15; i++ {
		m := module(fb>>i&1 != 0)
		g.set(a[i][0], a[i][1], m)
		g.set(b[i][0], b[i][1], m)
	}
}

// zigzag calls fn for each pixel not reserved in version v in zigzag
// scan order, starting at the lower right corner.  Columns are scanned
// in pairs, right to left, skipping the vertical timing column, moving
// up the first pair and changing direction at each pair.  Within a row
// the right pixel comes first.
func zigzag(v Version, fn func(x, y int)) {
	siz := v.Size()
	up := true
	for x := siz - 1; x > 0; x -= 2 {
		if x == 6 { // vertical timing strip
			x--
		}
		for i := 0; i < siz; i++ {
			y := i
			if up {
				y = siz - 1 - i
			}
			for xx := x; xx >= x-1; xx-- {
				if !v.IsReserved(xx, y) {
					fn(xx, y)
				}
			}
		}
		up = !up
	}
}

// Serialise writes bits from s to data in zigzag scan order.  When s
// runs out, the remaining pixels are Light.  Serialise returns the
// number of bits written.
func (p *Plan) Serialise(s *BitStream, data *Grid) int {
	n := 0
	zigzag(p.Version, func(x, y int) {
		m := Light
		if s.Left() > 0 {
			m = module(s.Next() != 0)
			n++
		}
		data.set(x, y, m)
	})
	return n
}
