// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flipped is a Bitmap with some pixels inverted.
type flipped struct {
	Bitmap
	flip map[[2]int]bool
}

func (f flipped) Black(x, y int) bool {
	return f.Bitmap.Black(x, y) != f.flip[[2]int{x, y}]
}

// rows is a Bitmap stored as rows of pixels.
type rows [][]bool

func (r rows) Size() int           { return len(r) }
func (r rows) Black(x, y int) bool { return r[y][x] }

func TestReadRoundTrip(t *testing.T) {
	t.Parallel()
	for v := MinVersion; v <= MaxVersion; v++ {
		for l := L; l <= H; l++ {
			p, err := NewProfile(v, l)
			require.NoError(t, err)
			for mask := 0; mask < 8; mask++ {
				text := "round trip"[:min(10, p.Capacity)]
				c, err := Encode(v, l, FixedMask(mask), text)
				require.NoError(t, err)
				d, err := Read(c)
				require.NoError(t, err, "%s-%s mask %d", v, l, mask)
				cw, err := p.Codewords(text)
				require.NoError(t, err)
				assert.Equal(t, v, d.Version)
				assert.Equal(t, l, d.Level)
				assert.Equal(t, mask, d.Mask)
				assert.Equal(t, cw, d.Codewords)
				assert.Zero(t, d.Corrected)
				assert.Equal(t, text, d.Text)
			}
		}
	}
}

func TestReadCorrects(t *testing.T) {
	t.Parallel()
	for v := MinVersion; v <= MaxVersion; v++ {
		var pos [][2]int
		zigzag(v, func(x, y int) { pos = append(pos, [2]int{x, y}) })
		for l := L; l <= H; l++ {
			c, err := Encode(v, l, BestMask, "fix me")
			require.NoError(t, err)
			k := v.CheckBytes(l) / 2
			f := flipped{c, map[[2]int]bool{}}
			// One pixel in each of k codewords, spread out.
			for i := 0; i < k; i++ {
				f.flip[pos[(i*5%vtab[v].bytes)*8+i%8]] = true
			}
			// Two format bits of the first copy.
			a, _ := formatPos(c.Size())
			f.flip[a[0]] = true
			f.flip[a[9]] = true

			d, err := Read(f)
			require.NoError(t, err, "%s-%s", v, l)
			assert.Equal(t, k, d.Corrected, "%s-%s", v, l)
			assert.Equal(t, "fix me", d.Text)
			assert.Equal(t, c.Mask(), d.Mask)
		}
	}
}

func TestReadInvalid(t *testing.T) {
	t.Parallel()
	_, err := Read(make(rows, 22))
	assert.ErrorIs(t, err, ErrVersion)
	_, err = Read(make(rows, 29))
	assert.ErrorIs(t, err, ErrVersion)

	// No format information.
	blank := make(rows, 21)
	for y := range blank {
		blank[y] = make([]bool, 21)
	}
	_, err = Read(blank)
	assert.ErrorIs(t, err, ErrFormat)
}

// skip2 converts a code produced by github.com/skip2/go-qrcode
// to a Bitmap, removing the quiet zone.
func skip2(t *testing.T, text string, v Version, l qrcode.RecoveryLevel) rows {
	q, err := qrcode.NewWithForcedVersion(text, int(v), l)
	require.NoError(t, err)
	bm := q.Bitmap()
	border := (len(bm) - v.Size()) / 2
	require.GreaterOrEqual(t, border, 0)
	r := make(rows, v.Size())
	for y := range r {
		r[y] = bm[border+y][border : border+v.Size()]
	}
	return r
}

func TestInterop(t *testing.T) {
	t.Parallel()
	levels := []struct {
		l Level
		r qrcode.RecoveryLevel
	}{
		{L, qrcode.Low},
		{M, qrcode.Medium},
		{Q, qrcode.High},
		{H, qrcode.Highest},
	}
	for _, text := range []string{"hello,world!", "qr;code@go", "{}"} {
		for _, lv := range levels {
			p, err := NewProfile(1, lv.l)
			require.NoError(t, err)
			if len(text) > p.Capacity {
				continue
			}
			bm := skip2(t, text, 1, lv.r)
			d, err := Read(bm)
			require.NoError(t, err, "%q %s", text, lv.l)
			assert.Equal(t, lv.l, d.Level)
			assert.Zero(t, d.Corrected)
			assert.Equal(t, text, d.Text)
			cw, err := p.Codewords(text)
			require.NoError(t, err)
			assert.Equal(t, cw, d.Codewords, "%q %s", text, lv.l)

			// Same mask, same pixels.
			c, err := Encode(1, lv.l, FixedMask(d.Mask), text)
			require.NoError(t, err)
			assert.Equal(t, [][]bool(bm), c.Rows(), "%q %s", text, lv.l)
		}
	}
}
