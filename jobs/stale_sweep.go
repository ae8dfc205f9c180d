package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hivemart/hivemart/internal/moderation"
)

// StaleSweepJob reports pending requests that have waited past the
// configured age so reviewers can triage a clogged queue.
type StaleSweepJob struct {
	Repo          moderation.Repository
	Logger        *slog.Logger
	DefaultMaxAge time.Duration
	clock         func() time.Time
}

// NewStaleSweepJob initialises the sweep handler.
func NewStaleSweepJob(repo moderation.Repository, logger *slog.Logger, defaultMaxAge time.Duration) *StaleSweepJob {
	return &StaleSweepJob{
		Repo:          repo,
		Logger:        logger,
		DefaultMaxAge: defaultMaxAge,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep over the pending queue.
func (j *StaleSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("stale sweep: handler not configured")
	}
	var payload StaleSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	maxAge := payload.MaxAge
	if maxAge <= 0 {
		maxAge = j.DefaultMaxAge
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	now := j.now()
	cutoff := now.Add(-maxAge)
	logger := j.logger().With(slog.Duration("max_age", maxAge))
	logger.Info("starting stale request sweep")

	stale, err := j.Repo.ListStalePending(ctx, cutoff)
	if err != nil {
		logger.Error("sweep failed", slog.Any("error", err))
		return err
	}

	for _, rec := range stale {
		logger.Warn("stale pending request",
			slog.String("request_id", rec.ID.String()),
			slog.String("request_type", string(rec.Type)),
			slog.Int64("submitted_by", rec.SubmittedBy),
			slog.Duration("age", now.Sub(rec.CreatedAt)),
		)
	}

	logger.Info("completed stale request sweep", slog.Int("stale", len(stale)))
	return nil
}

func (j *StaleSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeStaleSweep))
	}
	return slog.Default().With(slog.String("job", TaskTypeStaleSweep))
}

func (j *StaleSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
