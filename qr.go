// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr encodes text as a QR code in byte mode.

The code is version 1 (21x21 pixels) unless Options select version 2.
The mask is the one with the lowest penalty unless Options fix it.
A Code renders itself as an image, PNG, PBM, SVG or text.
*/
package qr // import "github.com/unixdj/qr21"

import (
	"errors"
	"image/color"
	"strings"

	"github.com/unixdj/qr21/coding"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string { return coding.Level(l).String() }

var (
	ErrLevel      = coding.ErrLevel
	ErrArgs       = errors.New("qr: invalid arguments")
	ErrLargeImage = errors.New("qr: image too large")
)

// ParseLevel returns the Level named by s, one of L, M, Q or H
// in either case.
func ParseLevel(s string) (Level, error) {
	if len(s) == 1 {
		if i := strings.IndexByte("LMQHlmqh", s[0]); i >= 0 {
			return Level(i & 3), nil
		}
	}
	return 0, ErrLevel
}

// Options select the QR version and mask.
// The zero value selects version 1 and the best mask.
type Options struct {
	Version coding.Version    // 0 means coding.MinVersion
	Mask    coding.MaskPolicy // coding.BestMask or coding.FixedMask(k)
}

// Encode returns an encoding of text at the given error correction
// level as a version 1 code with the best mask.
func Encode(text string, level Level) (*Code, error) {
	return EncodeOptions(text, level, Options{})
}

// EncodeOptions returns an encoding of text at the given error
// correction level with the version and mask selected by opt.
// If text is too long, the error is a *coding.CapacityError.
func EncodeOptions(text string, level Level, opt Options) (*Code, error) {
	v := opt.Version
	if v == 0 {
		v = coding.MinVersion
	}
	cc, err := coding.Encode(v, coding.Level(level), opt.Mask, text)
	if err != nil {
		return nil, err
	}
	return &Code{Code: cc, Scale: 8, Border: 4}, nil
}

// A Code is a square pixel grid with rendering parameters.
// It implements direct PNG, PBM, SVG and text encoding.
type Code struct {
	*coding.Code

	Scale   int             // number of image pixels per QR pixel
	Border  int             // width of quiet zone in QR pixels
	Palette *[2]color.Color // light and dark colours; nil for white and black
	Reverse bool            // swap light and dark
}

func (c *Code) isValid() bool {
	return c != nil && c.Code != nil && c.Scale > 0 && c.Border >= 0
}

// black reports whether the pixel at (x,y) is drawn dark, quiet zone
// included and Reverse applied.
func (c *Code) black(x, y int) bool {
	return c.Black(x, y) != c.Reverse
}

// colors returns the light and dark colours.
func (c *Code) colors() color.Palette {
	pal := color.Palette{color.Gray{0xff}, color.Gray{0x00}}
	if c.Palette != nil {
		pal = color.Palette{c.Palette[0], c.Palette[1]}
	}
	return pal
}
