package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerly-app/ledgerly/internal/infra/gateway/mockapi"
	"github.com/ledgerly-app/ledgerly/internal/infra/memstore"
	"github.com/ledgerly-app/ledgerly/internal/transport/httpapi"
	"github.com/ledgerly-app/ledgerly/internal/transport/httpapi/handler"
	"github.com/ledgerly-app/ledgerly/pkg/config"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.ImportFeedURL == "" {
		fmt.Fprintln(os.Stderr, "IMPORT_FEED_URL is required")
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting ledgerly API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	store := memstore.New()
	feed := mockapi.NewClient(cfg.ImportFeedURL, log)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:             log,
		AllowedOrigins:     cfg.AllowedOrigins,
		TransactionHandler: handler.NewTransactionHandler(store, feed, log),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()
	log.Info("Server listening", "addr", srv.Addr)

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
