package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qr21"
)

func TestEPS(t *testing.T) {
	c, err := qr.Encode("eps", qr.M)
	require.NoError(t, err)
	c.Scale = 2
	var b bytes.Buffer
	require.NoError(t, eps(c, &b))
	out := b.String()
	assert.True(t, strings.HasPrefix(out, "%!PS-Adobe-2.0 EPSF-2.0\n"))
	assert.True(t, strings.HasSuffix(out, "stroke grestore\nend\n%%Trailer\n"), out)
	// One row operator per QR row.
	assert.Equal(t, c.Size(), strings.Count(out, " r\n")+strings.Count(out, "\nr\n"))
}

func TestColourSet(t *testing.T) {
	tests := []struct {
		in   string
		want rgba
	}{
		{"navy", rgba{0x00, 0x00, 0x80, 0xff}},
		{"Dark Green", rgba{0x00, 0x64, 0x00, 0xff}},
		{"f80", rgba{0xff, 0x88, 0x00, 0xff}},
		{"f808", rgba{0xff, 0x88, 0x00, 0x88}},
		{"123456", rgba{0x12, 0x34, 0x56, 0xff}},
		{"12345678", rgba{0x12, 0x34, 0x56, 0x78}},
	}
	for _, tt := range tests {
		var c rgba
		require.NoError(t, c.Set(tt.in, nil), tt.in)
		assert.Equal(t, tt.want, c, tt.in)
	}
	for _, s := range []string{"", "12", "12345", "nocolour", "ggg"} {
		var c rgba
		assert.Error(t, c.Set(s, nil), s)
	}
	assert.Equal(t, "black", (&rgba{0, 0, 0, 0xff}).String())
	assert.Equal(t, "123456", (&rgba{0x12, 0x34, 0x56, 0xff}).String())
}
