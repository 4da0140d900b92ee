package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/unixdj/qr21"
	"github.com/unixdj/qr21/coding"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Addr            string        `env:"QR_ADDR" envDefault:":8080"`
	Level           string        `env:"QR_LEVEL" envDefault:"M"`
	Version         int           `env:"QR_VERSION" envDefault:"1"`
	Mask            string        `env:"QR_MASK" envDefault:"best"`
	Scale           int           `env:"QR_SCALE" envDefault:"8"`
	MaxScale        int           `env:"QR_MAX_SCALE" envDefault:"64"`
	Border          int           `env:"QR_BORDER" envDefault:"4"`
	Margin          int           `env:"QR_MARGIN" envDefault:"16"`
	MaxSize         int           `env:"QR_MAX_SIZE" envDefault:"4096"`
	MaxBody         int64         `env:"QR_MAX_BODY" envDefault:"4096"`
	LogLevel        slog.Level    `env:"QR_LOG_LEVEL" envDefault:"info"`
	ReadTimeout     time.Duration `env:"QR_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"QR_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"QR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig loads .env files, if any, and parses the environment.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return ParseConfig(nil)
}

// ParseConfig parses environ, or the process environment if environ
// is nil, and validates the result.
func ParseConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.defaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// params are rendering parameters of a request.
type params struct {
	level   qr.Level
	opt     qr.Options
	scale   int
	border  int
	width   int // fit to width x height if not 0
	height  int
	margin  int
	format  string
	reverse bool
	latin1  bool
}

// defaults returns the rendering parameters configured as defaults.
func (cfg Config) defaults() (params, error) {
	p := params{
		scale:  cfg.Scale,
		border: cfg.Border,
		margin: cfg.Margin,
		format: "png",
	}
	var err error
	if p.level, err = qr.ParseLevel(cfg.Level); err != nil {
		return p, fmt.Errorf("QR_LEVEL %q: %w", cfg.Level, err)
	}
	p.opt.Version = coding.Version(cfg.Version)
	if p.opt.Version < coding.MinVersion || p.opt.Version > coding.MaxVersion {
		return p, fmt.Errorf("QR_VERSION %d: %w", cfg.Version, coding.ErrVersion)
	}
	if p.opt.Mask, err = ParseMask(cfg.Mask); err != nil {
		return p, fmt.Errorf("QR_MASK %q: %w", cfg.Mask, err)
	}
	if cfg.Scale < 1 || cfg.Scale > cfg.MaxScale {
		return p, fmt.Errorf("QR_SCALE %d: out of range 1..%d", cfg.Scale, cfg.MaxScale)
	}
	if cfg.Border < 0 {
		return p, fmt.Errorf("QR_BORDER %d: negative", cfg.Border)
	}
	if cfg.Margin < 0 {
		return p, fmt.Errorf("QR_MARGIN %d: negative", cfg.Margin)
	}
	if cfg.MaxSize < 1 {
		return p, fmt.Errorf("QR_MAX_SIZE %d: out of range", cfg.MaxSize)
	}
	return p, nil
}

// ParseMask parses a mask policy: "best" or a mask number 0 to 7.
func ParseMask(s string) (coding.MaskPolicy, error) {
	if strings.EqualFold(s, "best") || s == "" {
		return coding.BestMask, nil
	}
	k, err := strconv.Atoi(s)
	if err != nil || k < 0 || k > 7 {
		return coding.BestMask, coding.ErrMask
	}
	return coding.FixedMask(k), nil
}
