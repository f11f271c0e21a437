package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ExpiredCodeCleaner deletes verification codes past their expiry.
type ExpiredCodeCleaner interface {
	DeleteExpired() (int64, error)
}

// CleanupVerificationsTask purges expired email verification codes.
// Used codes stay until their expiry passes, then get swept too.
type CleanupVerificationsTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// Config returns the queue configuration for verification cleanup tasks.
func (t CleanupVerificationsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_verifications",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupVerificationsProcessor creates a processor function for
// CleanupVerificationsTask.
func CleanupVerificationsProcessor(cleaner ExpiredCodeCleaner) backlite.QueueProcessor[CleanupVerificationsTask] {
	return func(ctx context.Context, task CleanupVerificationsTask) error {
		if cleaner == nil {
			return fmt.Errorf("verification code cleaner not configured")
		}

		deleted, err := cleaner.DeleteExpired()
		if err != nil {
			return fmt.Errorf("cleanup verification codes: %w", err)
		}

		if deleted > 0 {
			log.Printf("[TASK] Cleaned up %d expired verification codes", deleted)
		}
		return nil
	}
}

// NewCleanupVerificationsQueue creates a backlite queue for
// verification cleanup tasks.
func NewCleanupVerificationsQueue(cleaner ExpiredCodeCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupVerificationsProcessor(cleaner))
}
