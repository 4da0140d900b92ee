// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qr

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strings"
)

// String returns the code as text for a terminal with a dark
// background, two QR pixels per character cell using Unicode half
// blocks.  Light pixels are drawn, dark are blank.  The quiet zone is
// c.Border pixels wide; c.Scale and c.Palette are disregarded.
func (c *Code) String() string {
	if c == nil || c.Code == nil || c.Border < 0 {
		return ""
	}
	var b strings.Builder
	bord := c.Border
	for y := -bord; y < c.Size()+bord; y += 2 {
		for x := -bord; x < c.Size()+bord; x++ {
			// Past the last row counts as dark.
			top := !c.black(x, y)
			bot := y+1 < c.Size()+bord && !c.black(x, y+1)
			switch {
			case top && bot:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bot:
				b.WriteString("▄")
			default:
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodeASCII writes the code to w as text, two characters per QR
// pixel: "##" for dark, spaces for light.
func (c *Code) EncodeASCII(w io.Writer) error {
	if w == nil || c == nil || c.Code == nil || c.Border < 0 {
		return ErrArgs
	}
	siz := c.Size()
	bord := c.Border
	pix := siz + 2*bord
	b := make([]byte, (pix*2+1)*pix)
	i := 0
	for y := -bord; y < siz+bord; y++ {
		for x := -bord; x < siz+bord; x++ {
			var p byte = ' '
			if c.black(x, y) {
				p = '#'
			}
			_ = b[i+1]
			b[i], b[i+1] = p, p
			i += 2
		}
		b[i] = '\n'
		i++
	}
	_, err := w.Write(b)
	return err
}

// EncodeSVG writes an SVG image displaying the code to w.  The image
// is c.Scale user units per QR pixel; dark pixels are drawn as one
// path of horizontal runs over a light background.
func (c *Code) EncodeSVG(w io.Writer) error {
	if w == nil || !c.isValid() {
		return ErrArgs
	}
	pal := c.colors()
	siz := c.Size()
	bord := c.Border
	pix := siz + 2*bord
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" `+
		`width="%d" height="%d" viewBox="0 0 %d %d" `+
		`shape-rendering="crispEdges">`+"\n",
		pix*c.Scale, pix*c.Scale, pix, pix)
	fmt.Fprintf(b, `<rect width="%d" height="%d" %s/>`+"\n",
		pix, pix, svgFill(pal[0]))
	fmt.Fprintf(b, `<path %s d="`, svgFill(pal[1]))
	sep := ""
	for y := -bord; y < siz+bord; y++ {
		for x := -bord; x < siz+bord; {
			if !c.black(x, y) {
				x++
				continue
			}
			s := x
			for x < siz+bord && c.black(x, y) {
				x++
			}
			fmt.Fprintf(b, "%sM%d %dh%dv1h-%dz", sep, s+bord, y+bord,
				x-s, x-s)
			sep = " "
		}
	}
	b.WriteString("\"/>\n</svg>\n")
	return b.Flush()
}

// svgFill returns the fill attributes for c.
func svgFill(c color.Color) string {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return `fill="none"`
	}
	// Undo alpha premultiplication.
	r, g, b = r*0xffff/a, g*0xffff/a, b*0xffff/a
	s := fmt.Sprintf(`fill="#%02x%02x%02x"`, r>>8, g>>8, b>>8)
	if a != 0xffff {
		s += fmt.Sprintf(` fill-opacity="%.3g"`, float64(a)/0xffff)
	}
	return s
}
