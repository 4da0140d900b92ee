// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "strconv"

// Mask patterns:
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
//	   ███   ███         ▄▄▄▄▄ ▄▄▄▄▄        ▄▄▄   ▄▄▄     ▄█▄▀ ▀▄█▄▀ ▀
//	      ███   ███      █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	   ███   ███         ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
var maskFunc = [8]func(x, y int) bool{
	func(x, y int) bool { return (x+y)%2 == 0 },
	func(x, y int) bool { return y%2 == 0 },
	func(x, y int) bool { return x%3 == 0 },
	func(x, y int) bool { return (x+y)%3 == 0 },
	func(x, y int) bool { return (y/2+x/3)%2 == 0 },
	func(x, y int) bool { return x*y%2+x*y%3 == 0 },
	func(x, y int) bool { return (x*y%2+x*y%3)%2 == 0 },
	func(x, y int) bool { return ((x+y)%2+x*y%3)%2 == 0 },
}

// MaskFunc reports whether mask inverts the pixel at column x, row y.
func MaskFunc(mask, x, y int) bool { return maskFunc[mask](x, y) }

// A MaskPolicy selects the mask applied to a QR code.
// The zero value is BestMask.
type MaskPolicy struct {
	fixed bool
	mask  int
}

// BestMask tries all eight masks and picks the one with the lowest
// penalty, the lowest numbered on a tie.
var BestMask = MaskPolicy{}

// FixedMask always applies mask.  Validity is checked by the encoder.
func FixedMask(mask int) MaskPolicy { return MaskPolicy{true, mask} }

// Fixed returns the mask and true for a fixed mask policy,
// or false for BestMask.
func (p MaskPolicy) Fixed() (int, bool) { return p.mask, p.fixed }

func (p MaskPolicy) valid() bool {
	return !p.fixed || 0 <= p.mask && p.mask < len(maskFunc)
}

func (p MaskPolicy) String() string {
	if !p.fixed {
		return "best"
	}
	return strconv.Itoa(p.mask)
}

// Penalty returns the penalty value for a QR code.
// The value is used for choosing the mask.
//
// Total penalty is the sum of penalties for runs and boxes
// of same-colour pixels, finder patterns and colour balance.
//
//   - RunP: for non-overlapping runs of n pixels, n>=5 -> n-2
//   - BoxP: for possibly overlapping 2x2 boxes -> 3
//   - FindP: for possibly overlapping finder patterns -> 40
//     The pattern is 1011101 with 0000 on either side;
//     may extend into the quiet zone
//   - BalP: for n% of black pixels -> 10*(celing(abs(n-50)/5)-1)
//
// https://www.nayuki.io/page/creating-a-qr-code-step-by-step
func (c *Code) Penalty() int {
	const (
		MinRun    = 5             // RunP:  miniumum run length
		RunPDelta = -2            // RunP:  add to run length
		BoxPP     = 3             // BoxP:  points per box
		FindPP    = 40            // FindP: points per pattern
		BalPP     = 10            // BalP:  10 points
		BalPMul   = 20            //        for every 5% (1/20),
		BalPMax   = BalPMul/2 - 1 //        up to 9 times

		// last 11 pixels, quiet zone included, as bits
		FindB = 0b0000_1011101 // quiet zone before
		FindA = 0b1011101_0000 // quiet zone after
		Mask  = 1<<11 - 1
		Quiet = 4
	)

	siz := c.size
	p := 0
	line := make([]bool, siz)
	for dir := 0; dir < 2; dir++ {
		for i := 0; i < siz; i++ {
			for j := range line {
				if dir == 0 {
					line[j] = c.Black(j, i)
				} else {
					line[j] = c.Black(i, j)
				}
			}
			// RunP
			r := 1
			for j := 1; j < siz; j++ {
				if line[j] == line[j-1] {
					r++
					continue
				}
				if r >= MinRun {
					p += r + RunPDelta
				}
				r = 1
			}
			if r >= MinRun {
				p += r + RunPDelta
			}
			// FindP, light quiet zone on either side.
			pat := 0
			for j := -Quiet; j < siz+Quiet; j++ {
				pat <<= 1
				if 0 <= j && j < siz && line[j] {
					pat |= 1
				}
				pat &= Mask
				if j+Quiet < 10 {
					continue
				}
				switch pat {
				case FindB, FindA:
					p += FindPP
				}
			}
		}
	}

	// BoxP and BalP
	bal := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			b := c.Black(x, y)
			if b {
				bal++
			}
			if x > 0 && y > 0 && b == c.Black(x-1, y) &&
				b == c.Black(x, y-1) && b == c.Black(x-1, y-1) {
				p += BoxPP
			}
		}
	}
	// Exact percentages get less penalty.  E.g., 40% and 60% get
	// 10 points like 41%, not 20 like 39%.  To round away from 50%,
	// fold bal into 0 <= n < c.Size²/2 and divide rounding down.
	// No need to handle 50% as c.Size is always odd.
	sq := siz * siz
	if bal > sq/2 {
		bal = sq - bal
	}
	p += (BalPMax - bal*BalPMul/sq) * BalPP
	return p
}
