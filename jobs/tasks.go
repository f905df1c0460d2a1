package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPruneSessions is the task type for purging expired session rows.
	TaskPruneSessions = "auth:prune_sessions"
)

// SessionPruner is the slice of the auth repository the prune task needs.
type SessionPruner interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// NewPruneSessionsTask constructs the session-prune task. The task carries
// no payload; the cutoff is always "now" at execution time.
func NewPruneSessionsTask() *asynq.Task {
	return asynq.NewTask(TaskPruneSessions, nil)
}

// HandlePruneSessions returns the handler for TaskPruneSessions tasks.
func HandlePruneSessions(pruner SessionPruner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		removed, err := pruner.DeleteExpiredSessions(ctx, time.Now())
		if err != nil {
			return err
		}
		if removed > 0 {
			logger.Info("pruned expired sessions", slog.Int64("removed", removed))
		}
		return nil
	}
}
