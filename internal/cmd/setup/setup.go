// Package setup parses setup command flags and runs the demo bootstrap.
package setup

import (
	"context"
	"flag"
	"os"

	entrypoint "github.com/openlocalize/blankpage/internal/platform/cmd"
	"github.com/openlocalize/blankpage/internal/setup"
)

// Config holds setup command configuration.
type Config = setup.Config

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database")
	fs.StringVar(&cfg.AdminName, "admin-name", cfg.AdminName, "Admin account name")
	fs.StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "Admin account email")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Admin account password")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the bootstrap and prints instructions to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSetup, func(ctx context.Context) error {
		return setup.Run(ctx, cfg, os.Stdout)
	})
}
