package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the stats report every day at 21:00 UTC.
const DefaultSpec = "0 21 * * *"

// Scheduler управляет запланированными задачами
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	spec       string
	reportFunc func(ctx context.Context) error
	logger     *slog.Logger
}

// New создает новый планировщик. Пустой spec означает DefaultSpec.
func New(spec string, logger *slog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
		logger: logger,
	}
}

// SetReportFunction устанавливает функцию для отправки отчета
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		return errors.New("scheduler: report function not set")
	}

	_, err := s.cron.AddFunc(s.spec, s.runReport)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("📅 Scheduler started", "spec", s.spec)
	return nil
}

func (s *Scheduler) runReport() {
	s.logger.Info("🕘 Triggered scheduled stats report")
	if err := s.reportFunc(s.ctx); err != nil {
		s.logger.Error("❌ Scheduled stats report failed", "error", err)
	}
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("📅 Scheduler stopped")
}

// IsRunning проверяет, есть ли запланированные задачи
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
