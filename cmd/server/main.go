package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfchat/internal/api"
	"github.com/dgallion1/pdfchat/internal/chat"
	"github.com/dgallion1/pdfchat/internal/config"
	"github.com/dgallion1/pdfchat/internal/localstore"
	"github.com/dgallion1/pdfchat/internal/session"
	"github.com/dgallion1/pdfchat/internal/vault"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := localstore.Open(cfg.DataDir, cfg.HistoryLimit)
	if err != nil {
		log.Error("opening local store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	v := vault.New(cfg.PBKDF2Iterations)
	gemini := chat.NewGeminiClient(cfg.GeminiModel)

	sessions := session.NewManager(cfg.SessionTTL, cfg.MaxConcurrentExtract, log)
	sessions.Start(ctx)

	srv := api.NewServer(sessions, store, v, gemini, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // chat responses stream
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		sessions.Stop()
		gemini.Close()
		if err := store.Close(); err != nil {
			log.Warn("closing local store", "error", err)
		}
	}()

	log.Info("starting pdfchat", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
