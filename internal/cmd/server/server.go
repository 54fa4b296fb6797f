// Package server parses server command flags and starts the HTTP API.
package server

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/openlocalize/blankpage/internal/platform/cmd"
	httpserver "github.com/openlocalize/blankpage/internal/server"
	"github.com/openlocalize/blankpage/internal/storage/sqlite"
)

// Config holds server command configuration.
type Config = httpserver.Config

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret for signing session tokens")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()

		srv, err := httpserver.New(cfg, store)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx)
	})
}
