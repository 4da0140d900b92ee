// Package server implements an HTTP service rendering QR codes.
//
//	GET  /health                  OK
//	GET  /qr?text=...             render text
//	POST /qr                      render the request body
//	GET  /qr/{level}/{text}       render text at level
//
// Query parameters override the configured defaults: level (L, M, Q,
// H), version (1, 2), mask (best, 0-7), format (png, svg, pbm, txt),
// scale, border, reverse and charset (utf-8, latin1).  A PNG image may
// instead be fitted to width and height pixels, leaving margin pixels
// around the code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/text/encoding/charmap"

	"github.com/unixdj/qr21"
	"github.com/unixdj/qr21/coding"
)

// Server renders QR codes over HTTP.
type Server struct {
	cfg    Config
	def    params
	log    *slog.Logger
	router *mux.Router
	h      http.Handler // router wrapped in request logging
}

// New returns a Server for cfg.  A nil logger means slog.Default().
func New(cfg Config, log *slog.Logger) (*Server, error) {
	def, err := cfg.defaults()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, def: def, log: log}
	s.router = s.routes()
	s.h = s.logging(s.router)
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/qr", s.handleQuery).Methods(http.MethodGet)
	r.HandleFunc("/qr", s.handleBody).Methods(http.MethodPost)
	r.HandleFunc("/qr/{level}/{text}", s.handlePath).Methods(http.MethodGet)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.h.ServeHTTP(w, r)
}

// Run serves HTTP on cfg.Addr until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("text") {
		http.Error(w, "missing text", http.StatusBadRequest)
		return
	}
	s.render(w, r, q.Get("text"), "")
}

func (s *Server) handleBody(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	s.render(w, r, string(b), "")
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.render(w, r, vars["text"], vars["level"])
}

// render encodes text with the request's parameters and writes the
// image.  level, if not empty, overrides the level parameter.
func (s *Server) render(w http.ResponseWriter, r *http.Request, text, level string) {
	p, err := s.params(r, level)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.latin1 {
		if text, err = charmap.ISO8859_1.NewEncoder().String(text); err != nil {
			http.Error(w, "text not representable in Latin-1", http.StatusBadRequest)
			return
		}
	}
	c, err := qr.EncodeOptions(text, p.level, p.opt)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, coding.ErrCapacity) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	c.Scale = p.scale
	c.Border = p.border
	c.Reverse = p.reverse
	if p.width != 0 {
		if _, err := c.Fit(p.width, p.height, p.margin); err != nil {
			http.Error(w, fmt.Sprintf("%dx%d margin %d: too small for %d pixels",
				p.width, p.height, p.margin, c.Size()), http.StatusBadRequest)
			return
		}
	}

	h := w.Header()
	h.Set("X-QR-Version", c.Version().String())
	h.Set("X-QR-Level", c.Level().String())
	h.Set("X-QR-Mask", strconv.Itoa(c.Mask()))
	var werr error
	switch p.format {
	case "png":
		h.Set("Content-Type", "image/png")
		if p.width != 0 {
			werr = c.EncodeFit(w, p.width, p.height, p.margin)
		} else {
			werr = c.EncodePNG(w)
		}
	case "svg":
		h.Set("Content-Type", "image/svg+xml")
		werr = c.EncodeSVG(w)
	case "pbm":
		h.Set("Content-Type", "image/x-portable-bitmap")
		werr = c.EncodePBM(w)
	case "txt":
		h.Set("Content-Type", "text/plain; charset=utf-8")
		_, werr = io.WriteString(w, c.String())
	}
	if werr != nil {
		s.log.ErrorContext(r.Context(), "write image",
			slog.String("format", p.format), slog.Any("error", werr))
	}
}

// params returns the rendering parameters for r.
func (s *Server) params(r *http.Request, level string) (params, error) {
	p := s.def
	q := r.URL.Query()
	if level == "" {
		level = q.Get("level")
	}
	if level != "" {
		l, err := qr.ParseLevel(level)
		if err != nil {
			return p, fmt.Errorf("level %q: %w", level, err)
		}
		p.level = l
	}
	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < int(coding.MinVersion) || n > int(coding.MaxVersion) {
			return p, fmt.Errorf("version %q: %w", v, coding.ErrVersion)
		}
		p.opt.Version = coding.Version(n)
	}
	if v := q.Get("mask"); v != "" {
		m, err := ParseMask(v)
		if err != nil {
			return p, fmt.Errorf("mask %q: %w", v, err)
		}
		p.opt.Mask = m
	}
	if v := q.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > s.cfg.MaxScale {
			return p, fmt.Errorf("scale %q: out of range 1..%d", v, s.cfg.MaxScale)
		}
		p.scale = n
	}
	if v := q.Get("border"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 64 {
			return p, fmt.Errorf("border %q: out of range 0..64", v)
		}
		p.border = n
	}
	for _, f := range []struct {
		name string
		v    *int
		min  int
	}{
		{"width", &p.width, 1},
		{"height", &p.height, 1},
		{"margin", &p.margin, 0},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < f.min || n > s.cfg.MaxSize {
			return p, fmt.Errorf("%s %q: out of range %d..%d",
				f.name, v, f.min, s.cfg.MaxSize)
		}
		*f.v = n
	}
	switch {
	case p.width == 0:
		p.width = p.height
	case p.height == 0:
		p.height = p.width
	}
	if v := q.Get("reverse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("reverse %q: %w", v, err)
		}
		p.reverse = b
	}
	if v := q.Get("format"); v != "" {
		switch v = strings.ToLower(v); v {
		case "png", "svg", "pbm", "txt":
			p.format = v
		default:
			return p, fmt.Errorf("format %q: unsupported", v)
		}
	}
	if p.width != 0 && p.format != "png" {
		return p, fmt.Errorf("format %q: width and height need png", p.format)
	}
	switch v := strings.ToLower(q.Get("charset")); v {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1":
		p.latin1 = true
	default:
		return p, fmt.Errorf("charset %q: unsupported", v)
	}
	return p, nil
}
