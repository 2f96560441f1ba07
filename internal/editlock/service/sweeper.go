package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/lock-sweeper/config"
	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
)

// WhiteboardStore is the document store the sweeper walks
type WhiteboardStore interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
	ListWhiteboards(ctx context.Context, groupID string) ([]domain.Whiteboard, error)
	DeleteLock(ctx context.Context, groupID, whiteboardID string) error
}

// ReportStore keeps finished sweep reports
type ReportStore interface {
	Save(ctx context.Context, report *domain.SweepReport) error
}

// Options configures a Sweeper
type Options struct {
	DryRun          bool
	MalformedPolicy string
	DeleteRPS       int
	DeleteBurst     int
	Now             func() time.Time
	Logger          *zap.Logger
	Metrics         *Metrics
	Reports         ReportStore
}

// Sweeper finds expired edit locks and removes them
type Sweeper struct {
	store   WhiteboardStore
	opts    Options
	limiter *rate.Limiter
	metrics *Metrics

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a new Sweeper
func NewSweeper(store WhiteboardStore, opts Options) *Sweeper {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MalformedPolicy == "" {
		opts.MalformedPolicy = config.PolicyFail
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.DeleteRPS > 0 {
		burst := opts.DeleteBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.DeleteRPS), burst)
	}

	return &Sweeper{
		store:   store,
		opts:    opts,
		limiter: limiter,
		metrics: opts.Metrics,
	}
}

// Run performs one full sweep. The first store error aborts the run; the
// partial report is returned alongside the error.
func (s *Sweeper) Run(ctx context.Context) (*domain.SweepReport, error) {
	return s.run(ctx, s.opts.DryRun)
}

// Check classifies every lock without removing any
func (s *Sweeper) Check(ctx context.Context) (*domain.SweepReport, error) {
	return s.run(ctx, true)
}

// Running reports whether a sweep is in progress
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context, dryRun bool) (*domain.SweepReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrSweepInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := &domain.SweepReport{
		RunID:     uuid.New().String(),
		StartedAt: s.opts.Now(),
		DryRun:    dryRun,
	}
	logger := NewLogger(s.opts.Logger, report.RunID)
	logger.LogInfo("sweep", "checking edit locks", zap.Bool("dry_run", dryRun))

	err := s.sweep(ctx, logger, report, dryRun)

	finished := s.opts.Now()
	report.FinishedAt = &finished
	if err != nil {
		report.Error = err.Error()
		logger.LogError("sweep", err)
	} else {
		logger.LogInfo("sweep", "edit lock check complete",
			zap.Int("groups", report.Groups),
			zap.Int("whiteboards", report.Whiteboards),
			zap.Int("locked", report.Locked),
			zap.Int("expired", report.Expired),
			zap.Int("released", report.Released),
		)
	}
	s.metrics.recordRun(report.StartedAt, finished, err)

	if s.opts.Reports != nil {
		// a fresh context so a cancelled run still records its report
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if saveErr := s.opts.Reports.Save(saveCtx, report); saveErr != nil {
			logger.LogWarn("save_report", "failed to store sweep report", zap.Error(saveErr))
		}
	}

	return report, err
}

func (s *Sweeper) sweep(ctx context.Context, logger *Logger, report *domain.SweepReport, dryRun bool) error {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list groups: %w", err)
	}
	report.Groups = len(groups)
	logger.LogInfof("list_groups", "found %d groups", len(groups))

	for _, group := range groups {
		boards, err := s.store.ListWhiteboards(ctx, group.ID)
		if err != nil {
			return fmt.Errorf("failed to list whiteboards of group %s: %w", group.ID, err)
		}
		report.Whiteboards += len(boards)
		logger.LogInfo("list_whiteboards", "group inspected",
			zap.String("group_id", group.ID),
			zap.Int("whiteboards", len(boards)),
		)

		for _, wb := range boards {
			if err := s.inspect(ctx, logger, report, wb, dryRun); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Sweeper) inspect(ctx context.Context, logger *Logger, report *domain.SweepReport, wb domain.Whiteboard, dryRun bool) error {
	now := s.opts.Now()
	state := wb.StateAt(now)
	if state == domain.LockNone {
		return nil
	}

	report.Locked++
	s.metrics.recordLock(string(state))

	entry := domain.LockEntry{GroupID: wb.GroupID, WhiteboardID: wb.ID, State: state}
	fields := []zap.Field{
		zap.String("group_id", wb.GroupID),
		zap.String("whiteboard_id", wb.ID),
	}

	release := false
	switch state {
	case domain.LockMalformed:
		report.Malformed++
		fields = append(fields, zap.Error(wb.LockErr))
		switch s.opts.MalformedPolicy {
		case config.PolicyReclaim:
			logger.LogWarn("inspect", "malformed lock will be reclaimed", fields...)
			release = true
		case config.PolicySkip:
			logger.LogWarn("inspect", "malformed lock skipped", fields...)
		default:
			report.Entries = append(report.Entries, entry)
			return wb.LockErr
		}
	default:
		entry.UserName = wb.Lock.UserName
		entry.CreatedAt = wb.Lock.CreatedAt
		entry.ExpiresAt = wb.Lock.ExpiresAt
		expired := state == domain.LockExpired
		if expired {
			report.Expired++
			release = true
		} else {
			report.Live++
		}
		logger.LogInfo("inspect", "edit lock",
			append(fields,
				zap.String("user_name", wb.Lock.UserName),
				zap.Time("created_at", wb.Lock.CreatedAt),
				zap.Time("expires_at", wb.Lock.ExpiresAt),
				zap.Bool("expired", expired),
			)...,
		)
	}

	if release && !dryRun {
		if err := s.release(ctx, wb); err != nil {
			report.Entries = append(report.Entries, entry)
			return err
		}
		entry.Released = true
		report.Released++
		s.metrics.recordRelease()
		logger.LogInfo("release", "expired lock removed", fields[:2]...)
	}

	report.Entries = append(report.Entries, entry)
	return nil
}

func (s *Sweeper) release(ctx context.Context, wb domain.Whiteboard) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to release lock on %s/%s: %w", wb.GroupID, wb.ID, err)
	}
	if err := s.store.DeleteLock(ctx, wb.GroupID, wb.ID); err != nil {
		return fmt.Errorf("failed to release lock on %s/%s: %w", wb.GroupID, wb.ID, err)
	}
	return nil
}
