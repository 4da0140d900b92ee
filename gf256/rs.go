// Copyright 2010 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gf256

import "errors"

// ErrUncorrectable is returned by RSDecoder.Correct when the message
// has more errors than the check bytes can correct.
var ErrUncorrectable = errors.New("gf256: too many errors")

// An RSEncoder implements Reed-Solomon encoding
// over a given field using a given number of error correction bytes.
// An RSEncoder is immutable and safe for concurrent use.
type RSEncoder struct {
	f    *Field
	c    int
	gen  []byte
	lgen []byte
}

// gen returns the generator polynomial (x-α^0)(x-α^1)...(x-α^(e-1))
// with the most significant coefficient first, and its logarithms,
// using 255 for the log of 0.
func (f *Field) gen(e int) (gen, lgen []byte) {
	// p = 1
	p := make([]byte, e+1)
	p[e] = 1

	for i := 0; i < e; i++ {
		// p *= (x + Exp(i))
		// p[j] = p[j]*Exp(i) + p[j+1].
		c := f.Exp(i)
		for j := 0; j < e; j++ {
			p[j] = f.Mul(p[j], c) ^ p[j+1]
		}
		p[e] = f.Mul(p[e], c)
	}

	// lp = log p.
	lp := make([]byte, e+1)
	for i, c := range p {
		if c == 0 {
			lp[i] = 255
		} else {
			lp[i] = byte(f.Log(c))
		}
	}

	return p, lp
}

// NewRSEncoder returns a new Reed-Solomon encoder
// over the given field and number of error correction bytes.
func NewRSEncoder(f *Field, c int) *RSEncoder {
	gen, lgen := f.gen(c)
	return &RSEncoder{f: f, c: c, gen: gen, lgen: lgen}
}

// Check returns the number of error correction bytes.
func (rs *RSEncoder) Check() int { return rs.c }

// Generator returns a copy of the generator polynomial,
// most significant coefficient first.
func (rs *RSEncoder) Generator() []byte {
	return append([]byte(nil), rs.gen...)
}

// ECC writes to check the error correcting code bytes
// for data using the given Reed-Solomon parameters.
func (rs *RSEncoder) ECC(data []byte, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	if rs.c == 0 {
		return
	}

	// The check bytes are the remainder after dividing
	// data padded with c zeros by the generator polynomial.

	// p = data padded with c zeros.
	p := make([]byte, len(data)+rs.c)
	copy(p, data)

	// Divide p by gen, leaving the remainder in p[len(data):].
	// p[0] is the most significant term in p, and
	// gen[0] is the most significant term in the generator,
	// which is always 1.
	// To avoid repeated work, we store various values as
	// lv, not v, where lv = log[v].
	f := rs.f
	lgen := rs.lgen[1:]
	for i := 0; i < len(data); i++ {
		c := p[i]
		if c == 0 {
			continue
		}
		q := p[i+1:]
		exp := f.exp[f.log[c]:]
		for j, lg := range lgen {
			if lg != 255 { // lgen uses 255 for log 0
				q[j] ^= exp[lg]
			}
		}
	}
	copy(check, p[len(data):])
}

// An RSDecoder corrects errors in Reed-Solomon encoded messages
// produced by an RSEncoder with the same field and check length.
type RSDecoder struct {
	f *Field
	c int
}

// NewRSDecoder returns a new Reed-Solomon decoder
// over the given field and number of error correction bytes.
func NewRSDecoder(f *Field, c int) *RSDecoder {
	return &RSDecoder{f: f, c: c}
}

// evalHigh evaluates p, most significant coefficient first, at x.
func (f *Field) evalHigh(p []byte, x byte) byte {
	var y byte
	for _, c := range p {
		y = f.Mul(y, x) ^ c
	}
	return y
}

// evalLow evaluates p, least significant coefficient first, at x.
func (f *Field) evalLow(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}

// Syndromes returns the c syndromes of msg, data followed by check
// bytes.  All syndromes are zero if and only if msg is a codeword.
func (rs *RSDecoder) Syndromes(msg []byte) []byte {
	s := make([]byte, rs.c)
	for i := range s {
		s[i] = rs.f.evalHigh(msg, rs.f.Exp(i))
	}
	return s
}

// Correct corrects msg, data followed by check bytes, in place.
// It returns the number of bytes corrected.  If msg has more than c/2
// errors, Correct returns ErrUncorrectable and leaves msg unchanged.
//
// Errors are located with the Berlekamp-Massey algorithm and a Chien
// search and evaluated with Forney's formula.
func (rs *RSDecoder) Correct(msg []byte) (int, error) {
	f := rs.f
	if len(msg) > 255 || len(msg) < rs.c {
		return 0, ErrUncorrectable
	}
	s := rs.Syndromes(msg)
	clean := true
	for _, v := range s {
		if v != 0 {
			clean = false
			break
		}
	}
	if clean {
		return 0, nil
	}

	// Berlekamp-Massey.  Polynomials are least significant first.
	lambda := make([]byte, 1, rs.c+1)
	lambda[0] = 1
	prev := []byte{1}
	nerr, shift := 0, 1
	var last byte = 1
	for n := 0; n < rs.c; n++ {
		d := s[n]
		for i := 1; i <= nerr && i < len(lambda); i++ {
			d ^= f.Mul(lambda[i], s[n-i])
		}
		if d == 0 {
			shift++
			continue
		}
		coef := f.Div(d, last)
		next := make([]byte, max(len(lambda), len(prev)+shift))
		copy(next, lambda)
		for i, v := range prev {
			next[i+shift] ^= f.Mul(coef, v)
		}
		if 2*nerr <= n {
			prev = lambda
			nerr = n + 1 - nerr
			last = d
			shift = 1
		} else {
			shift++
		}
		lambda = next
	}
	for len(lambda) > 1 && lambda[len(lambda)-1] == 0 {
		lambda = lambda[:len(lambda)-1]
	}
	if nerr > rs.c/2 || len(lambda)-1 != nerr {
		return 0, ErrUncorrectable
	}

	// Chien search.  Position p holds the coefficient of x^(n-1-p),
	// whose locator is α^(n-1-p).
	n := len(msg)
	pos := make([]int, 0, nerr)
	for p := 0; p < n; p++ {
		if f.evalLow(lambda, f.Inv(f.Exp(n-1-p))) == 0 {
			pos = append(pos, p)
		}
	}
	if len(pos) != nerr {
		return 0, ErrUncorrectable
	}

	// Forney.  omega = s*lambda mod x^c; the first consecutive root
	// is α^0, so e = X * omega(1/X) / lambda'(1/X).
	omega := make([]byte, rs.c)
	for i := range omega {
		for j := 0; j <= i && j < len(lambda); j++ {
			omega[i] ^= f.Mul(lambda[j], s[i-j])
		}
	}
	deriv := make([]byte, len(lambda))
	for i := 1; i < len(lambda); i += 2 {
		deriv[i-1] = lambda[i]
	}
	fix := make([]byte, len(pos))
	for i, p := range pos {
		x := f.Exp(n - 1 - p)
		xinv := f.Inv(x)
		den := f.evalLow(deriv, xinv)
		if den == 0 {
			return 0, ErrUncorrectable
		}
		fix[i] = f.Mul(x, f.Div(f.evalLow(omega, xinv), den))
	}
	for i, p := range pos {
		msg[p] ^= fix[i]
	}
	return len(pos), nil
}
