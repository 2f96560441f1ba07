package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/lock-sweeper/internal/editlock/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix    = "editlock:sweep:"        // Key prefix for report data: editlock:sweep:{run_id}
	reportIndexKey     = "editlock:sweeps"        // Sorted set of run IDs scored by start time
	latestReportKey    = "editlock:sweeps:latest" // Run ID of the most recently saved report
	reportEventChannel = "editlock:events"        // Pub/Sub channel for finished sweeps
	defaultReportTTL   = 7 * 24 * time.Hour
)

// ReportRepository stores sweep reports in Redis
type ReportRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(client *redis.Client, ttl time.Duration) *ReportRepository {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &ReportRepository{client: client, ttl: ttl}
}

// Save stores the report, moves the latest pointer and announces it
func (r *ReportRepository) Save(ctx context.Context, report *domain.SweepReport) error {
	if report.RunID == "" {
		report.RunID = uuid.New().String()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep report: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.reportKey(report.RunID), data, r.ttl)
	pipe.ZAdd(ctx, reportIndexKey, redis.Z{
		Score:  float64(report.StartedAt.UnixNano()),
		Member: report.RunID,
	})
	pipe.Set(ctx, latestReportKey, report.RunID, r.ttl)
	// drop index entries whose report has already expired
	pipe.ZRemRangeByScore(ctx, reportIndexKey, "-inf", fmt.Sprintf("(%d", time.Now().Add(-r.ttl).UnixNano()))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save sweep report: %w", err)
	}

	summary, err := json.Marshal(report.Summary())
	if err == nil {
		r.client.Publish(ctx, reportEventChannel, summary)
	}

	return nil
}

// Get retrieves a report by its run ID
func (r *ReportRepository) Get(ctx context.Context, runID string) (*domain.SweepReport, error) {
	data, err := r.client.Get(ctx, r.reportKey(runID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep report: %w", err)
	}

	var report domain.SweepReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sweep report: %w", err)
	}

	return &report, nil
}

// Latest retrieves the most recently saved report
func (r *ReportRepository) Latest(ctx context.Context) (*domain.SweepReport, error) {
	runID, err := r.client.Get(ctx, latestReportKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sweep id: %w", err)
	}

	return r.Get(ctx, runID)
}

// List returns summaries of the most recent reports, newest first
func (r *ReportRepository) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	runIDs, err := r.client.ZRevRange(ctx, reportIndexKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sweep reports: %w", err)
	}

	summaries := make([]domain.ReportSummary, 0, len(runIDs))
	for _, id := range runIDs {
		report, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrReportNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, report.Summary())
	}

	return summaries, nil
}

// Ping checks the Redis connection
func (r *ReportRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Subscribe returns a subscription to finished-sweep announcements
func (r *ReportRepository) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, reportEventChannel)
}

func (r *ReportRepository) reportKey(runID string) string {
	return fmt.Sprintf("%s%s", reportKeyPrefix, runID)
}
