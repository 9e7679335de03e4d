package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ledgerly-app/ledgerly/internal/infra/gateway/ledgerapi"
	"github.com/ledgerly-app/ledgerly/internal/ledgerview"
	"github.com/ledgerly-app/ledgerly/internal/tui"
	"github.com/ledgerly-app/ledgerly/pkg/config"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal owns stdout; keep log output away from the UI.
	logFile, err := os.OpenFile("ledgerly.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logger.New(cfg.Env, logFile)

	gateway := ledgerapi.NewClient(cfg.APIBaseURL, log)
	app := tui.New(log)

	controller := ledgerview.NewController(ledgerview.Config{
		Gateway:  gateway,
		Renderer: app,
		Notifier: app,
		Form:     app,
		Logger:   log,
	})
	app.SetController(controller)

	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "UI error: %v\n", err)
		os.Exit(1)
	}
}
