// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// Bits is a bit buffer, written most significant bit first.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version.
func NewBits(v Version) *Bits {
	return &Bits{b: make([]byte, 0, vtab[v].bytes)}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the number of bits written.
func (b *Bits) Bits() int {
	return b.nbit
}

// Bytes returns the buffer.  It panics unless b holds whole bytes.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	return b.b
}

func (b *Bits) growTo(n int) {
	if cap(b.b) < n {
		nb := make([]byte, len(b.b), n)
		copy(nb, b.b)
		b.b = nb
	}
}

// Add adds n bytes to b and returns the added slice.
func (b *Bits) Add(n int) []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	b.growTo(len(b.b) + n)
	start := len(b.b)
	b.b = b.b[:start+n]
	clear(b.b[start:])
	b.nbit = 8 * len(b.b)
	return b.b[start:]
}

// Write writes the nbit least significant bits of v, nbit <= 32.
func (b *Bits) Write(v uint32, nbit int) {
	if nbit == 0 {
		return
	}
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// SegmentLen returns the encoded length in bits of a byte mode
// segment holding n bytes.
func SegmentLen(n int) int { return headerLen + n*8 }

// WriteBytes writes a byte mode segment containing s.  The character
// count field is 8 bits wide, as in QR versions 1 to 9; s must not be
// longer than 255 bytes.
func (b *Bits) WriteBytes(s string) {
	if len(s) > 1<<countLen-1 {
		panic("qr: segment too long")
	}
	b.Write(byteIndicator, indicatorLen)
	b.Write(uint32(len(s)), countLen)
	if b.nbit&7 != 0 {
		for ; len(s) >= 4; s = s[4:] {
			v := uint32(s[0])<<24 | uint32(s[1])<<16 |
				uint32(s[2])<<8 | uint32(s[3])
			b.Write(v, 32)
		}
		for i := 0; i < len(s); i++ {
			b.Write(uint32(s[i]), 8)
		}
	} else {
		b.b = append(b.b, s...)
		b.nbit += len(s) * 8
	}
}

// PadTo adds up to t zero terminator bits to b, aligns it to a byte
// boundary with zero bits and pads it with alternating 0xec and 0x11
// bytes to n bits.  n must be a multiple of 8.
func (b *Bits) PadTo(t, n int) {
	if n&7 != 0 || b.nbit > n {
		panic("qr: invalid padding")
	}
	b.growTo(n >> 3)
	b.nbit = min(b.nbit+t, n)
	for len(b.b)*8 < b.nbit {
		b.b = append(b.b, 0)
	}
	b.nbit = len(b.b) * 8
	for pad := byte(0xec); len(b.b) < n>>3; pad ^= 0xec ^ 0x11 {
		b.b = append(b.b, pad)
	}
	b.nbit = n
}

// AddCheckBytes adds terminator, padding and check bytes to b for the
// given QR version and level.
func (b *Bits) AddCheckBytes(v Version, l Level) {
	nb := v.DataBits(l)
	if b.nbit > nb {
		panic("qr: too much data")
	}
	b.growTo(vtab[v].bytes)
	b.PadTo(4, nb)
	nd := nb >> 3
	rsEncoder(v.CheckBytes(l)).ECC(b.b[:nd], b.Add(v.CheckBytes(l)))
	if len(b.b) != vtab[v].bytes {
		panic("qr: internal error")
	}
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Left returns the number of unread bits.
func (s *BitStream) Left() int { return len(s.b)*8 - s.pos }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}

// Read returns the next n bits, n <= 32, most significant first.
// Past end of buffer bits read as 0.
func (s *BitStream) Read(n int) uint32 {
	var v uint32
	for ; n > 0; n-- {
		v = v<<1 | uint32(s.Next())
	}
	return v
}
