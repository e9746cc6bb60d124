package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"medassist-ai/internal/app"
	"medassist-ai/internal/config"
	"medassist-ai/internal/handlers"
	"medassist-ai/internal/logger"
	"medassist-ai/internal/mediagroup"
	"medassist-ai/internal/runner"
	"medassist-ai/internal/session"
	"medassist-ai/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.LoadOptions{RequireTelegram: true})
	if err != nil {
		slog.Error("config load failed", logger.Err(err))
		os.Exit(1)
	}

	log := app.NewLogger(os.Stdout, cfg)
	httpClient := app.NewHTTPClient(cfg)

	tg, err := telegram.New(telegram.Options{
		Token:        cfg.TelegramToken,
		HTTPClient:   httpClient,
		Logger:       log,
		Debug:        cfg.Debug,
		MaxFileBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		log.Error("telegram init failed", logger.Err(err))
		os.Exit(1)
	}

	svc, err := app.NewAssistant(cfg, httpClient, log)
	if err != nil {
		log.Error("assistant init failed", logger.Err(err))
		os.Exit(1)
	}

	sessions := session.NewStore(session.Options{TTL: cfg.SessionTTL})

	handler := handlers.New(handlers.Options{
		Telegram:  tg,
		Assistant: svc,
		Sessions:  sessions,
		Logger:    log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	dispatch := func(fn func(context.Context)) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		go func() {
			defer func() { <-sem }()
			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()
			fn(reqCtx)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		OnFlush: func(group mediagroup.Group) {
			dispatch(func(reqCtx context.Context) {
				handler.HandleMediaGroup(reqCtx, group)
			})
		},
	})
	defer aggregator.Stop()
	handler.SetMediaGroupAggregator(aggregator)

	listener := runner.Func{ServiceName: "telegram", Fn: func(ctx context.Context) error {
		updates := tg.Updates(telegram.UpdatesOptions{Timeout: cfg.UpdatesTimeout})
		defer tg.StopUpdates()

		for {
			select {
			case <-ctx.Done():
				return nil
			case update, ok := <-updates:
				if !ok {
					return errors.New("updates channel closed")
				}
				dispatch(func(reqCtx context.Context) {
					if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
						log.Error("handle update failed", logger.Err(err))
					}
				})
			}
		}
	}}

	log.Info("bot started",
		"username", tg.Username(),
		"provider", cfg.Provider,
		"chat", cfg.EnableChat,
	)

	if err := (runner.Group{listener, sessions}).Run(ctx); err != nil {
		log.Error("bot stopped", logger.Err(err))
		os.Exit(1)
	}
	log.Info("shutting down")
}
