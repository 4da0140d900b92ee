// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Image returns an Image displaying the code, c.Scale image pixels per
// QR pixel, with a quiet zone of c.Border QR pixels.
// Image returns nil if the parameters are invalid.
func (c *Code) Image() image.Image {
	if !c.isValid() {
		return nil
	}
	d := (c.Size() + 2*c.Border) * c.Scale
	return &codeImage{
		Code:  c,
		pal:   c.colors(),
		r:     image.Rect(0, 0, d, d),
		cell:  c.Scale,
		start: image.Pt(c.Border*c.Scale, c.Border*c.Scale),
	}
}

// Fit returns a width x height image with the code centred on it.
// Each QR pixel is drawn as a square of the largest whole number of
// image pixels that leaves at least margin pixels on every side.
// c.Scale and c.Border are ignored.
func (c *Code) Fit(width, height, margin int) (image.Image, error) {
	if c == nil || c.Code == nil || width <= 0 || height <= 0 || margin < 0 {
		return nil, ErrArgs
	}
	siz := c.Size()
	cell := (min(width, height) - 2*margin) / siz
	if cell < 1 {
		return nil, ErrArgs
	}
	return &codeImage{
		Code: c,
		pal:  c.colors(),
		r:    image.Rect(0, 0, width, height),
		cell: cell,
		start: image.Pt((width-siz*cell)/2,
			(height-siz*cell)/2),
	}, nil
}

// EncodeFit writes a PNG image of the code fitted to width x height
// pixels with at least margin pixels around it, as laid out by Fit.
func (c *Code) EncodeFit(w io.Writer, width, height, margin int) error {
	if w == nil {
		return ErrArgs
	}
	if width > 32767*8 || height > 32767*8 {
		return ErrLargeImage
	}
	m, err := c.Fit(width, height, margin)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, m)
}

// codeImage implements image.PalettedImage.
type codeImage struct {
	*Code
	pal   color.Palette // light, dark
	r     image.Rectangle
	cell  int         // image pixels per QR pixel
	start image.Point // upper left corner of the QR pixels
}

func (c *codeImage) Bounds() image.Rectangle { return c.r }

func (c *codeImage) ColorModel() color.Model { return c.pal }

func (c *codeImage) ColorIndexAt(x, y int) uint8 {
	if !(image.Point{x, y}.In(c.r)) {
		return 0
	}
	x -= c.start.X
	y -= c.start.Y
	if x < 0 || y < 0 {
		// Integer division rounds towards zero.
		return c.index(-1, -1)
	}
	return c.index(x/c.cell, y/c.cell)
}

func (c *codeImage) index(x, y int) uint8 {
	if c.black(x, y) {
		return 1
	}
	return 0
}

func (c *codeImage) At(x, y int) color.Color {
	return c.pal[c.ColorIndexAt(x, y)]
}

// PNG returns a PNG image displaying the code, or nil if the
// parameters are invalid or the image would be too large.
func (c *Code) PNG() []byte {
	var b bytes.Buffer
	if err := c.EncodePNG(&b); err != nil {
		return nil
	}
	return b.Bytes()
}

// EncodePNG writes a PNG image displaying the code to w.
// The image has a two colour palette: light, dark.
func (c *Code) EncodePNG(w io.Writer) error {
	if w == nil || !c.isValid() {
		return ErrArgs
	}
	if (c.Size()+2*c.Border)*c.Scale > 32767*8 {
		return ErrLargeImage
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, c.Image())
}
