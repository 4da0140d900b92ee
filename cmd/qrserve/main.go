// Command qrserve serves QR code images over HTTP.
//
// Configuration is read from the environment and an optional .env
// file; see internal/server.Config.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/unixdj/qr21/internal/server"
)

func main() {
	log.SetFlags(0)
	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalln(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		log.Fatalln(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
