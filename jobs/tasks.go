// Package jobs carries the asynq background processing for hivemart:
// decision notices pushed to submitters and periodic sweeps over the
// moderation queue.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDecisionNotice delivers the outcome of a moderation
	// decision to the submitter.
	TaskTypeDecisionNotice = "moderation:decision_notice"
	// TaskTypeStaleSweep flags pending requests that sat unreviewed for
	// too long.
	TaskTypeStaleSweep = "moderation:stale_sweep"
)

// DecisionNoticePayload describes a decided request for notification.
type DecisionNoticePayload struct {
	RequestID   string    `json:"request_id"`
	RequestType string    `json:"request_type"`
	Status      string    `json:"status"`
	SubmittedBy int64     `json:"submitted_by"`
	DecidedBy   int64     `json:"decided_by"`
	DecidedAt   time.Time `json:"decided_at"`
}

// NewDecisionNoticeTask constructs an Asynq task.
func NewDecisionNoticeTask(payload DecisionNoticePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDecisionNotice, data), nil
}

// HandleDecisionNoticeTask processes TaskTypeDecisionNotice tasks.
// Delivery is a structured log line until a mail channel lands.
func HandleDecisionNoticeTask(ctx context.Context, t *asynq.Task) error {
	var payload DecisionNoticePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	slog.Default().Info("moderation decision notice",
		slog.String("request_id", payload.RequestID),
		slog.String("request_type", payload.RequestType),
		slog.String("status", payload.Status),
		slog.Int64("submitted_by", payload.SubmittedBy),
		slog.Int64("decided_by", payload.DecidedBy),
	)
	return nil
}

// StaleSweepPayload configures a sweep run. A zero MaxAge falls back to
// the worker default.
type StaleSweepPayload struct {
	MaxAge time.Duration `json:"max_age"`
}

// NewStaleSweepTask constructs an Asynq task.
func NewStaleSweepTask(payload StaleSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStaleSweep, data), nil
}
