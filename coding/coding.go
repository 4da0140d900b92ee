// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details for the two
// smallest QR versions: byte mode bit streams, Reed-Solomon check
// bytes, function patterns, zigzag data placement and masking.
package coding // import "github.com/unixdj/qr21/coding"

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/unixdj/qr21/gf256"
)

var (
	ErrLevel    = errors.New("qr: invalid level")
	ErrVersion  = errors.New("qr: invalid version")
	ErrMask     = errors.New("qr: invalid mask")
	ErrCapacity = errors.New("qr: text too long")
	ErrFinished = errors.New("qr: encoder not reset")
)

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 pixels on a side.
// Only versions with a single error correction block at every level
// are supported.
type Version int

const (
	MinVersion Version = 1 // Minimum QR version, 21x21
	MaxVersion Version = 2 // Maximum QR version, 25x25
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

func (v Version) valid() bool { return MinVersion <= v && v <= MaxVersion }

// Size returns the number of pixels on a side.
func (v Version) Size() int { return int(v)*4 + 17 }

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	vt := &vtab[v]
	return vt.bytes - vt.check[l]
}

// CheckBytes returns the number of error correction bytes
// in a QR code with the given version and level.
func (v Version) CheckBytes(l Level) int { return vtab[v].check[l] }

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if L <= l && l <= H {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

func (l Level) valid() bool { return L <= l && l <= H }

// A version describes metadata associated with a version.
type version struct {
	apos  int    // alignment box centre, 0 if none
	bytes int    // total codewords
	check [4]int // check bytes per level
}

var vtab = [MaxVersion + 1]version{
	{},
	{0, 26, [4]int{7, 10, 13, 17}},   // 1
	{18, 44, [4]int{10, 16, 22, 28}}, // 2
}

// Byte mode segment header: 4 bit mode indicator, 8 bit count.
const (
	byteIndicator = 4
	indicatorLen  = 4
	countLen      = 8
	headerLen     = indicatorLen + countLen
)

// A Profile describes the capacity of a QR code with a specific
// version and level.
type Profile struct {
	Version    Version
	Level      Level
	Size       int // number of pixels on a side
	DataBytes  int // number of data codewords
	CheckBytes int // number of error correction codewords
	Capacity   int // maximum text length in bytes
}

// NewProfile returns the Profile for the given version and level.
func NewProfile(v Version, l Level) (Profile, error) {
	if !l.valid() {
		return Profile{}, ErrLevel
	}
	if !v.valid() {
		return Profile{}, ErrVersion
	}
	return Profile{
		Version:    v,
		Level:      l,
		Size:       v.Size(),
		DataBytes:  v.DataBytes(l),
		CheckBytes: v.CheckBytes(l),
		Capacity:   (v.DataBits(l) - headerLen) / 8,
	}, nil
}

// DataBits returns the number of data bits.
func (p Profile) DataBits() int { return p.DataBytes * 8 }

// EncodeText returns the data codewords for text encoded as a single
// byte mode segment, terminated and padded to p.DataBytes.
func (p Profile) EncodeText(text string) ([]byte, error) {
	b, err := p.bits(text)
	if err != nil {
		return nil, err
	}
	b.PadTo(4, p.DataBits())
	return b.Bytes(), nil
}

// Codewords returns the data codewords for text followed by their
// error correction codewords, as placed in the code.
func (p Profile) Codewords(text string) ([]byte, error) {
	b, err := p.bits(text)
	if err != nil {
		return nil, err
	}
	b.AddCheckBytes(p.Version, p.Level)
	return b.Bytes(), nil
}

func (p Profile) bits(text string) (*Bits, error) {
	if len(text) > p.Capacity {
		return nil, &CapacityError{p.Version, p.Level, len(text), p.Capacity}
	}
	b := NewBits(p.Version)
	b.WriteBytes(text)
	return b, nil
}

// CapacityError reports text too long for a QR code.
// It wraps ErrCapacity.
type CapacityError struct {
	Version
	Level
	Len int // text length in bytes
	Max int // maximum length in bytes
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("qr: %d bytes of text exceed %d byte capacity "+
		"of version %s-%s", e.Len, e.Max, e.Version, e.Level)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// Reed-Solomon encoders by number of check bytes.  An encoder is
// created the first time a check length is used.
var encoders struct {
	sync.Mutex
	m map[int]*gf256.RSEncoder
}

func rsEncoder(check int) *gf256.RSEncoder {
	encoders.Lock()
	defer encoders.Unlock()
	rs := encoders.m[check]
	if rs == nil {
		if encoders.m == nil {
			encoders.m = make(map[int]*gf256.RSEncoder)
		}
		rs = gf256.NewRSEncoder(Field, check)
		encoders.m[check] = rs
	}
	return rs
}
