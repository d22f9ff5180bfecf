package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"geckobot/internal/chart"
	"geckobot/internal/config"
	"geckobot/internal/discord"
	"geckobot/internal/fulfill"
	"geckobot/internal/gecko"
	"geckobot/internal/logger"
	"geckobot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	must(err)
	must(cfg.Validate())

	logger.InitWith(cfg.Log.Level, cfg.Log.Format)
	must(trace.Init())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := gecko.New(cfg.Gecko.BaseURL, cfg.GeckoTimeout())
	renderer := &chart.Renderer{}
	fulfiller := fulfill.New(market, renderer, cfg.Fulfill.MaxConcurrent, cfg.RequestTimeout())

	bot, err := discord.New(cfg, market, fulfiller)
	must(err)

	if cfg.Commands.SyncCron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Commands.SyncCron, func() {
			if err := bot.SyncCommands(context.Background()); err != nil {
				logger.ErrorWithErr(context.Background(), "scheduled command sync failed", err)
			}
		})
		must(err)
		c.Start()
		defer c.Stop()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(context.Background(), "shutdown signal received")
		cancel()
	}()

	logger.Info(ctx, "bot starting")
	must(bot.Run(ctx))
}
