// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"math/bits"

	"github.com/unixdj/qr21/gf256"
)

var (
	ErrFormat  = errors.New("qr: unreadable format information")
	ErrSegment = errors.New("qr: unsupported data segment")
)

// A Bitmap is a square pixel grid to read a QR code from.
// *Code implements Bitmap.
type Bitmap interface {
	Size() int
	Black(x, y int) bool
}

// Decoded is the content of a QR code.
type Decoded struct {
	Version   Version
	Level     Level
	Mask      int
	Codewords []byte // data and check bytes as read
	Corrected int    // number of bytes corrected
	Text      string // concatenated byte mode segments
}

// readFormat returns the level and mask from the format information
// closest to the one in either copy, if no more than 3 bits away.
func readFormat(bm Bitmap) (Level, int, error) {
	a, b := formatPos(bm.Size())
	var fa, fb uint16
	for i := 14; i >= 0; i-- {
		fa <<= 1
		fb <<= 1
		if bm.Black(a[i][0], a[i][1]) {
			fa |= 1
		}
		if bm.Black(b[i][0], b[i][1]) {
			fb |= 1
		}
	}
	best, level, mask := 4, L, 0
	for l := L; l <= H; l++ {
		for m := 0; m < len(maskFunc); m++ {
			f := formatBits(l, m)
			d := min(bits.OnesCount16(f^fa), bits.OnesCount16(f^fb))
			if d < best {
				best, level, mask = d, l, m
			}
		}
	}
	if best > 3 {
		return 0, 0, ErrFormat
	}
	return level, mask, nil
}

// Read reads a QR code from bm, correcting errors.  It understands
// versions 1 and 2 and byte mode segments.
func Read(bm Bitmap) (*Decoded, error) {
	siz := bm.Size()
	v := Version((siz - 17) / 4)
	if !v.valid() || v.Size() != siz {
		return nil, ErrVersion
	}
	l, mask, err := readFormat(bm)
	if err != nil {
		return nil, err
	}

	// Unmask and collect the codewords in zigzag order.
	nb := vtab[v].bytes
	b := NewBits(v)
	zigzag(v, func(x, y int) {
		if b.Bits() < nb*8 {
			var bit uint32
			if bm.Black(x, y) != maskFunc[mask](x, y) {
				bit = 1
			}
			b.Write(bit, 1)
		}
	})
	cw := b.Bytes()
	d := &Decoded{
		Version:   v,
		Level:     l,
		Mask:      mask,
		Codewords: append([]byte(nil), cw...),
	}
	msg := append([]byte(nil), cw...)
	if d.Corrected, err = gf256.NewRSDecoder(Field,
		v.CheckBytes(l)).Correct(msg); err != nil {
		return d, err
	}

	// Parse segments.
	s := NewBitStream(msg[:v.DataBytes(l)])
	var text []byte
	for s.Left() >= indicatorLen {
		switch s.Read(indicatorLen) {
		case 0: // terminator
			d.Text = string(text)
			return d, nil
		case byteIndicator:
		default:
			return d, ErrSegment
		}
		n := int(s.Read(countLen))
		if n*8 > s.Left() {
			return d, ErrSegment
		}
		for ; n > 0; n-- {
			text = append(text, byte(s.Read(8)))
		}
	}
	d.Text = string(text)
	return d, nil
}
