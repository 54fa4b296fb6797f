package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	setupcmd "github.com/openlocalize/blankpage/internal/cmd/setup"
	"github.com/openlocalize/blankpage/internal/platform/config"
)

func main() {
	cfg, err := setupcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[SETUP] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := setupcmd.Run(ctx, cfg); err != nil {
		config.Exitf("setup failed: %v", err)
	}
}
