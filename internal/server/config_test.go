package server

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unixdj/qr21/coding"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "M", cfg.Level)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "best", cfg.Mask)
	assert.Equal(t, 8, cfg.Scale)
	assert.Equal(t, 4, cfg.Border)
	assert.Equal(t, 16, cfg.Margin)
	assert.Equal(t, 4096, cfg.MaxSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig(map[string]string{
		"QR_ADDR":      "127.0.0.1:9000",
		"QR_LEVEL":     "h",
		"QR_VERSION":   "2",
		"QR_MASK":      "5",
		"QR_LOG_LEVEL": "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	p, err := cfg.defaults()
	require.NoError(t, err)
	assert.EqualValues(t, 3, p.level)
	assert.Equal(t, coding.Version(2), p.opt.Version)
	assert.Equal(t, coding.FixedMask(5), p.opt.Mask)
}

func TestParseConfigInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		env  map[string]string
		want error
	}{
		{map[string]string{"QR_LEVEL": "X"}, coding.ErrLevel},
		{map[string]string{"QR_VERSION": "3"}, coding.ErrVersion},
		{map[string]string{"QR_MASK": "8"}, coding.ErrMask},
		{map[string]string{"QR_SCALE": "0"}, nil},
		{map[string]string{"QR_SCALE": "65"}, nil},
		{map[string]string{"QR_BORDER": "-1"}, nil},
		{map[string]string{"QR_MARGIN": "-1"}, nil},
		{map[string]string{"QR_MAX_SIZE": "0"}, nil},
		{map[string]string{"QR_LOG_LEVEL": "loud"}, nil},
		{map[string]string{"QR_READ_TIMEOUT": "soon"}, nil},
	}
	for _, tt := range tests {
		_, err := ParseConfig(tt.env)
		require.Error(t, err, "%v", tt.env)
		if tt.want != nil {
			assert.ErrorIs(t, err, tt.want, "%v", tt.env)
		}
	}
}

func TestParseMask(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "best", "BEST"} {
		m, err := ParseMask(s)
		require.NoError(t, err)
		assert.Equal(t, coding.BestMask, m)
	}
	for k := 0; k < 8; k++ {
		m, err := ParseMask(string(rune('0' + k)))
		require.NoError(t, err)
		assert.Equal(t, coding.FixedMask(k), m)
	}
	for _, s := range []string{"8", "-1", "worst", "1.5"} {
		_, err := ParseMask(s)
		assert.ErrorIs(t, err, coding.ErrMask, "%q", s)
	}
}

func TestLoadConfigDotenv(t *testing.T) {
	// t.Setenv restores the variables godotenv sets.
	t.Setenv("QR_ADDR", "")
	t.Setenv("QR_LEVEL", "")
	require.NoError(t, os.Unsetenv("QR_ADDR"))
	require.NoError(t, os.Unsetenv("QR_LEVEL"))

	fn := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(fn,
		[]byte("QR_ADDR=:9999\nQR_LEVEL=Q\n"), 0o600))
	cfg, err := LoadConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "Q", cfg.Level)

	// A missing file is not an error.
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
