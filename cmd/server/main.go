package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/slidedit/internal/api"
	"github.com/dgallion1/slidedit/internal/config"
	"github.com/dgallion1/slidedit/internal/editor"
	"github.com/dgallion1/slidedit/internal/schema"
	"github.com/dgallion1/slidedit/internal/state"
	"github.com/dgallion1/slidedit/internal/translate"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	sch := cfg.Schema()

	store, err := openStore(cfg, sch)
	if err != nil {
		log.Error("open state store", "error", err)
		os.Exit(1)
	}

	// Translation is optional; without a backend the translate action
	// keeps the text as it is.
	var (
		client     *translate.Client
		stats      *translate.LatencyStats
		translator *translate.Adapter
	)
	if cfg.TranslateURL != "" {
		client = translate.NewClient(cfg.TranslateURL, cfg.TranslateAPIKey, cfg.TranslateTimeout)
		stats = translate.NewLatencyStats(cfg.StatsWindow)
		translator = translate.New(client.Translate, translate.Options{
			MaxChars:    cfg.TranslateMaxChars,
			Concurrency: cfg.TranslateConcurrency,
			Stats:       stats,
			Logger:      log.With("component", "translate"),
		})
	}

	ed := editor.New(editor.Config{
		Schema:     sch,
		LabelLang:  cfg.Lang(),
		Translator: translator,
		Store:      store,
		Logger:     log.With("component", "editor"),
	})

	srv, err := api.NewServer(ed, stats, log, cfg)
	if err != nil {
		log.Error("create server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
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

		if client != nil {
			client.Close()
		}
		store.Close()
	}()

	log.Info("starting slidedit",
		"port", cfg.Port,
		"variant", string(sch.Variant),
		"state_backend", cfg.StateBackend,
		"translate", translator.Available(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg config.Config, sch *schema.Schema) (state.Store, error) {
	if cfg.StateBackend == config.BackendSQLite {
		return state.OpenSQLite(cfg.StateLocation(), sch)
	}
	return state.NewFileStore(cfg.StateLocation(), sch), nil
}
