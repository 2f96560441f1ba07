package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// Runner runs one sweep
type Runner interface {
	Run(ctx context.Context) (*domain.SweepReport, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(runner Runner, spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}

	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the sweep and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.spec, s.runSweep); err != nil {
		s.cancel()
		return fmt.Errorf("failed to create cron job: %w", err)
	}

	s.logger.Info("cron scheduler started", zap.String("schedule", s.spec))
	s.cron.Start()
	return nil
}

// Stop cancels an in-flight sweep and waits for it to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}

// Next returns the next scheduled run, zero before Start
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runSweep() {
	started := time.Now()
	s.logger.Info("scheduled sweep started")

	report, err := s.runner.Run(s.ctx)
	if err != nil {
		s.logger.Error("scheduled sweep failed", zap.Error(err), zap.Duration("duration", time.Since(started)))
		return
	}

	s.logger.Info("scheduled sweep completed",
		zap.String("run_id", report.RunID),
		zap.Int("released", report.Released),
		zap.Duration("duration", time.Since(started)),
	)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
