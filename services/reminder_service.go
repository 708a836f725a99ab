// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"
	"visitperk-backend/config"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ReminderService runs one execution cycle: reconciliation sweep, then due-pair
// selection, then dispatch. It holds no timers itself; the HTTP trigger (or the
// optional in-process cron) drives it, and overlapping invocations are safe
// because every visit write is version-guarded.
type ReminderService struct {
	store      VisitStore
	dispatcher *Dispatcher
	clock      Clock
	settings   config.ReminderSettings
}

func NewReminderService(store VisitStore, notifier Notifier, clock Clock, settings config.ReminderSettings) *ReminderService {
	return &ReminderService{
		store:      store,
		dispatcher: NewDispatcher(store, notifier, settings.DispatchWorkers, settings.SendTimeout),
		clock:      clock,
		settings:   settings,
	}
}

// CycleSummary is what a trigger invocation gets back. Counts always reflect
// whatever phases completed; Error is set when a phase aborted the cycle.
type CycleSummary struct {
	Timestamp      time.Time   `json:"timestamp"`
	Swept          int         `json:"swept"`
	Sent           int         `json:"sent"`
	Failed         int         `json:"failed"`
	Skipped        int         `json:"skipped"`
	FailedVisitIDs []uuid.UUID `json:"failedVisitIds"`
	Error          string      `json:"error,omitempty"`
}

// RunCycle executes sweep -> selector -> dispatcher once under the configured
// deadline. A phase abort stops later phases (a lapsed visit must never also be
// reminded) but the summary keeps the counts of everything that finished.
func (s *ReminderService) RunCycle(parent context.Context) CycleSummary {
	now := s.clock.Now()
	summary := CycleSummary{Timestamp: now, FailedVisitIDs: []uuid.UUID{}}

	ctx, cancel := context.WithTimeout(parent, s.settings.CycleDeadline)
	defer cancel()

	swept, err := s.sweep(ctx, now)
	summary.Swept = swept
	if err != nil {
		summary.Error = fmt.Sprintf("sweep: %v", err)
		return summary
	}

	visits, err := s.store.FindDueForReminder(now, s.settings.Offsets)
	if err != nil {
		summary.Error = fmt.Sprintf("selector: %v", err)
		return summary
	}
	pairs := SelectDue(visits, now, s.settings.Offsets)

	res := s.dispatcher.Dispatch(ctx, pairs, now)
	summary.Sent = res.Sent
	summary.Failed = res.Failed
	summary.Skipped = res.Skipped
	summary.FailedVisitIDs = res.FailedVisitIDs
	return summary
}

// sweep marks lapsed SCHEDULED visits as MISSED. Lost conditional writes mean a
// manual action or a concurrent run got there first; those are skipped silently.
func (s *ReminderService) sweep(ctx context.Context, now time.Time) (int, error) {
	lapsed, err := s.store.FindLapsed(now, s.settings.GracePeriod)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, v := range lapsed {
		if ctx.Err() != nil {
			// Deadline hit: report what finished, the rest keeps until next run.
			return count, nil
		}
		updated, err := MarkMissed(v, now, s.settings.GracePeriod)
		if err != nil {
			continue
		}
		ok, err := s.store.ApplyConditional(updated, v.Version)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// StartScheduler wires an in-process cron trigger onto the same cycle path the
// HTTP endpoint uses. Deployments driven purely by external cron skip this.
func (s *ReminderService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		summary := s.RunCycle(context.Background())
		log.Printf("Reminder cycle: swept=%d sent=%d failed=%d skipped=%d error=%q",
			summary.Swept, summary.Sent, summary.Failed, summary.Skipped, summary.Error)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Println("Reminder scheduler started")
	return c, nil
}
