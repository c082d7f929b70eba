package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/config"
	"interview-bot/internal/export"
	"interview-bot/internal/interview"
	"interview-bot/internal/metrics"
	"interview-bot/internal/scheduler"
	"interview-bot/internal/session"
	"interview-bot/internal/storage"
	"interview-bot/internal/survey"
	"interview-bot/internal/telegram"
)

func loadConfig() (*config.Config, *slog.Logger, error) {
	envErr := godotenv.Load(".env")
	cfg, err := config.Parse()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Warn(".env file not found", "error", envErr)
	}
	return cfg, logger, nil
}

func runBot(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	opts, err := interview.LoadOptions(cfg.QuestionnairePath)
	if err != nil {
		return fmt.Errorf("failed to load questionnaire: %w", err)
	}

	table, err := export.NewXLSX(cfg.ExportPath)
	if err != nil {
		return fmt.Errorf("failed to init export: %w", err)
	}
	sinkOpts := []aggregate.Option{aggregate.WithLogger(logger)}
	if cfg.JournalPath != "" {
		j, err := storage.NewFileJournal(cfg.JournalPath)
		if err != nil {
			logger.Warn("journal disabled", "path", cfg.JournalPath, "error", err)
		} else {
			sinkOpts = append(sinkOpts, aggregate.WithJournal(j))
		}
	}
	sink := aggregate.NewSink(table, sinkOpts...)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	engine := interview.NewEngine(opts, sink,
		interview.WithHooks(m.Hooks()),
		interview.WithLogger(logger))
	svc := survey.New(session.NewStore(), engine, sink, m, logger)

	bot, err := telegram.New(cfg.TelegramBotToken, svc, cfg.Debug,
		telegram.WithMetrics(m),
		telegram.WithLogger(logger),
		telegram.WithAdmin(cfg.AdminUserID),
		telegram.WithPollTimeout(cfg.PollTimeout))
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminUserID != 0 {
		sch := scheduler.New(cfg.StatsCron, logger)
		sch.SetReportFunction(bot.SendStatsToAdmin)
		if err := sch.Start(); err != nil {
			logger.Error("failed to start scheduler", "error", err)
		} else {
			defer sch.Stop()
		}
	}

	var wg sync.WaitGroup
	if m != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := metrics.NewRouter(m, svc.Snapshot)
			if err := metrics.Serve(ctx, cfg.MetricsAddr, h, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	bot.Start(ctx)
	stop()
	wg.Wait()
	return nil
}
