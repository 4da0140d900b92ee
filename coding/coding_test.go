// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v                        Version
		l                        Level
		size, data, check, capac int
	}{
		{1, L, 21, 19, 7, 17},
		{1, M, 21, 16, 10, 14},
		{1, Q, 21, 13, 13, 11},
		{1, H, 21, 9, 17, 7},
		{2, L, 25, 34, 10, 32},
		{2, M, 25, 28, 16, 26},
		{2, Q, 25, 22, 22, 20},
		{2, H, 25, 16, 28, 14},
	}
	for _, tt := range tests {
		p, err := NewProfile(tt.v, tt.l)
		require.NoError(t, err)
		name := fmt.Sprintf("%s-%s", tt.v, tt.l)
		assert.Equal(t, tt.size, p.Size, name)
		assert.Equal(t, tt.data, p.DataBytes, name)
		assert.Equal(t, tt.check, p.CheckBytes, name)
		assert.Equal(t, tt.capac, p.Capacity, name)
		assert.Equal(t, vtab[tt.v].bytes, p.DataBytes+p.CheckBytes, name)
	}
}

func TestProfileInvalid(t *testing.T) {
	t.Parallel()
	_, err := NewProfile(1, Level(4))
	assert.ErrorIs(t, err, ErrLevel)
	_, err = NewProfile(1, Level(-1))
	assert.ErrorIs(t, err, ErrLevel)
	_, err = NewProfile(3, M)
	assert.ErrorIs(t, err, ErrVersion)
	_, err = NewProfile(0, M)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestLevelString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "LMQH", L.String()+M.String()+Q.String()+H.String())
	assert.Equal(t, "7", Level(7).String())
}

// bitString returns the first n bits of b as a string of 0 and 1.
func bitString(b []byte, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte('0' + b[i/8]>>(7-i%8)&1)
	}
	return sb.String()
}

func TestEncodeTextHello(t *testing.T) {
	t.Parallel()
	p, err := NewProfile(1, M)
	require.NoError(t, err)
	data, err := p.EncodeText("HELLO")
	require.NoError(t, err)
	require.Len(t, data, p.DataBytes)
	want := "0100" + "00000101" +
		"01001000" + "01000101" + "01001100" + "01001100" + "01001111"
	assert.Equal(t, want, bitString(data, 52))
	// terminator, then pad bytes
	assert.Equal(t, []byte{0x40, 0x54, 0x84, 0x54, 0xc4, 0xc4, 0xf0,
		0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec}, data)
}

func TestEncodeTextPadding(t *testing.T) {
	t.Parallel()
	p, err := NewProfile(1, M)
	require.NoError(t, err)

	// Empty text: header, terminator, pads.
	data, err := p.EncodeText("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x00, 0xec, 0x11, 0xec, 0x11, 0xec,
		0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11, 0xec, 0x11}, data)

	// Full capacity: 12+14*8 = 124 bits, the terminator fills the
	// last 4 and no pad byte fits.
	full := strings.Repeat("\xff", p.Capacity)
	data, err = p.EncodeText(full)
	require.NoError(t, err)
	require.Len(t, data, p.DataBytes)
	assert.Equal(t, byte(0xf0), data[len(data)-1])
	assert.NotContains(t, data[2:], byte(0xec))
}

func TestCapacityBoundary(t *testing.T) {
	t.Parallel()
	for v := MinVersion; v <= MaxVersion; v++ {
		for l := L; l <= H; l++ {
			p, err := NewProfile(v, l)
			require.NoError(t, err)
			text := strings.Repeat("a", p.Capacity)
			_, err = p.Codewords(text)
			require.NoError(t, err, "%s-%s", v, l)
			_, err = Encode(v, l, BestMask, text)
			require.NoError(t, err, "%s-%s", v, l)

			_, err = Encode(v, l, BestMask, text+"a")
			require.ErrorIs(t, err, ErrCapacity, "%s-%s", v, l)
			var ce *CapacityError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, p.Capacity+1, ce.Len)
			assert.Equal(t, p.Capacity, ce.Max)
			assert.Equal(t, v, ce.Version)
			assert.Equal(t, l, ce.Level)
		}
	}
}

func TestCodewordsLength(t *testing.T) {
	t.Parallel()
	for v := MinVersion; v <= MaxVersion; v++ {
		for l := L; l <= H; l++ {
			p, _ := NewProfile(v, l)
			cw, err := p.Codewords("qr")
			require.NoError(t, err)
			assert.Len(t, cw, p.DataBytes+p.CheckBytes)
		}
	}
}

func TestBitsWrite(t *testing.T) {
	t.Parallel()
	b := NewBits(1)
	b.Write(0b101, 3)
	b.Write(0, 0)
	b.Write(0xabcde, 20)
	b.Write(1, 1)
	assert.Equal(t, 24, b.Bits())
	assert.Equal(t, "101"+"10101011110011011110"+"1", bitString(b.Bytes(), 24))

	b.Reset()
	assert.Zero(t, b.Bits())
	b.Write(1, 4)
	assert.Panics(t, func() { b.Bytes() })
	assert.Panics(t, func() { b.Add(1) })
}

func TestBitStream(t *testing.T) {
	t.Parallel()
	s := NewBitStream([]byte{0xa5})
	assert.Equal(t, 8, s.Left())
	assert.Equal(t, uint32(0xa), s.Read(4))
	assert.Equal(t, byte(0), s.Next())
	assert.Equal(t, 3, s.Left())
	assert.Equal(t, uint32(0b101), s.Read(3))
	assert.Zero(t, s.Left())
	assert.Equal(t, byte(0), s.Next(), "past end")
}

func ExampleProfile_Codewords() {
	p, err := NewProfile(1, M)
	if err != nil {
		panic(err)
	}
	cw, err := p.Codewords("HELLO")
	if err != nil {
		panic(err)
	}
	fmt.Printf("% x\n", cw[:p.DataBytes])
	fmt.Println(len(cw[p.DataBytes:]))
	// Output:
	// 40 54 84 54 c4 c4 f0 ec 11 ec 11 ec 11 ec 11 ec
	// 10
}
