// Package scheduler triggers periodic maintenance work. The only job
// today enqueues the expired-verification-code cleanup task on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/tasks"
)

// CleanupScheduler enqueues verification cleanup tasks on a schedule.
type CleanupScheduler struct {
	taskClient *tasks.Client
	config     config.Cleanup

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCleanupScheduler creates a scheduler instance.
func NewCleanupScheduler(taskClient *tasks.Client, cfg config.Cleanup) *CleanupScheduler {
	return &CleanupScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron: cron.New(cron.WithParser(
			cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Printf("Verification cleanup scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.enqueueCleanup)
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.config.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Verification cleanup scheduler: started with schedule %q", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil
	log.Printf("Verification cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *CleanupScheduler) RunNow() {
	go s.enqueueCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will be enqueued.
func (s *CleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *CleanupScheduler) enqueueCleanup() {
	task := tasks.CleanupVerificationsTask{RequestedAt: time.Now()}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("Verification cleanup scheduler: failed to enqueue task: %v", err)
	}
}
