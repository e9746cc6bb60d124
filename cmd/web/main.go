package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"medassist-ai/internal/app"
	"medassist-ai/internal/config"
	"medassist-ai/internal/logger"
	"medassist-ai/internal/runner"
	"medassist-ai/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		slog.Error("config load failed", logger.Err(err))
		os.Exit(1)
	}

	log := app.NewLogger(os.Stdout, cfg)
	httpClient := app.NewHTTPClient(cfg)

	svc, err := app.NewAssistant(cfg, httpClient, log)
	if err != nil {
		log.Error("assistant init failed", logger.Err(err))
		os.Exit(1)
	}

	sessions := session.NewStore(session.Options{TTL: cfg.SessionTTL})

	s := newServer(serverOptions{
		Assistant:      svc,
		Sessions:       sessions,
		Title:          cfg.PageTitle,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	handler, err := s.routes()
	if err != nil {
		log.Error("routes init failed", logger.Err(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("web started",
		"addr", cfg.WebAddr,
		"provider", cfg.Provider,
		"chat", cfg.EnableChat,
	)

	if err := (runner.Group{httpService{srv: srv}, sessions}).Run(ctx); err != nil {
		log.Error("web stopped", logger.Err(err))
		os.Exit(1)
	}
	log.Info("shutting down")
}

type httpService struct {
	srv *http.Server
}

func (h httpService) Name() string {
	return "http"
}

func (h httpService) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return h.srv.Shutdown(shutdownCtx)
}
