// services/dispatcher.go
package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
	"visitperk-backend/models"

	"github.com/google/uuid"
)

// DispatchResult aggregates one dispatch batch.
type DispatchResult struct {
	Sent           int
	Failed         int
	Skipped        int
	FailedVisitIDs []uuid.UUID
}

func (r *DispatchResult) add(other DispatchResult) {
	r.Sent += other.Sent
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.FailedVisitIDs = append(r.FailedVisitIDs, other.FailedVisitIDs...)
}

// Dispatcher fans due reminders out to the notification provider with a bounded
// worker pool. A failed send leaves the offset unrecorded so the next cycle
// retries it; one visit's failure never aborts the rest of the batch.
type Dispatcher struct {
	store       VisitStore
	notifier    Notifier
	workers     int
	sendTimeout time.Duration
}

func NewDispatcher(store VisitStore, notifier Notifier, workers int, sendTimeout time.Duration) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		store:       store,
		notifier:    notifier,
		workers:     workers,
		sendTimeout: sendTimeout,
	}
}

// Dispatch sends each due pair once. Pairs for the same visit are handled by a
// single worker in order; distinct visits run concurrently up to the pool size.
// If ctx expires mid-batch the remaining pairs are simply left due.
func (d *Dispatcher) Dispatch(ctx context.Context, pairs []DuePair, now time.Time) DispatchResult {
	result := DispatchResult{FailedVisitIDs: []uuid.UUID{}}
	if len(pairs) == 0 {
		return result
	}

	groups := groupByVisit(pairs)
	jobs := make(chan []DuePair)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range jobs {
				out := d.processVisit(ctx, group, now)
				mu.Lock()
				result.add(out)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, g := range groups {
		select {
		case jobs <- g:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return result
}

// processVisit walks one visit's due offsets in order, carrying the updated
// snapshot and version across writes.
func (d *Dispatcher) processVisit(ctx context.Context, group []DuePair, now time.Time) DispatchResult {
	out := DispatchResult{}
	snapshot := group[0].Visit

	for _, pair := range group {
		if ctx.Err() != nil {
			return out
		}
		if snapshot.RemindersSent.Has(pair.OffsetID) {
			out.Skipped++
			continue
		}

		channel, err := d.send(ctx, snapshot, pair.OffsetID)
		attempt := models.ReminderLog{
			StoreID:  snapshot.StoreID,
			VisitID:  snapshot.ID,
			OffsetID: pair.OffsetID,
			Channel:  channel,
			SentAt:   now,
		}

		if err != nil {
			out.Failed++
			out.FailedVisitIDs = append(out.FailedVisitIDs, snapshot.ID)
			attempt.Status = "failed"
			attempt.ErrorMessage = err.Error()
			if lerr := d.store.LogReminder(attempt); lerr != nil {
				log.Printf("Failed to log reminder attempt for visit %s: %v", snapshot.ID, lerr)
			}
			continue
		}

		updated := RecordReminderSent(snapshot, pair.OffsetID)
		ok, uerr := d.store.ApplyConditional(updated, snapshot.Version)
		if uerr != nil {
			out.Failed++
			out.FailedVisitIDs = append(out.FailedVisitIDs, snapshot.ID)
			continue
		}
		if !ok {
			// A concurrent run recorded this offset (or completed the visit)
			// first; count it as already handled.
			out.Skipped++
			continue
		}
		updated.Version = snapshot.Version + 1
		snapshot = updated

		out.Sent++
		attempt.Status = "sent"
		if lerr := d.store.LogReminder(attempt); lerr != nil {
			log.Printf("Failed to log reminder attempt for visit %s: %v", snapshot.ID, lerr)
		}
	}
	return out
}

// send runs one provider call under the per-send timeout. A timeout is reported
// as a provider failure.
func (d *Dispatcher) send(ctx context.Context, v models.Visit, offsetID string) (string, error) {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	type sendResult struct {
		channel string
		err     error
	}
	done := make(chan sendResult, 1)
	go func() {
		channel, err := d.notifier.Send(sctx, v, offsetID)
		done <- sendResult{channel, err}
	}()

	select {
	case <-sctx.Done():
		return "", fmt.Errorf("notification send timed out: %w", sctx.Err())
	case r := <-done:
		return r.channel, r.err
	}
}
