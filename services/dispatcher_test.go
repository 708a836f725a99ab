package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"visitperk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchSendsAndRecords(t *testing.T) {
	now := baseTime
	v := scheduledVisit(now.Add(30 * time.Minute))
	store := newFakeVisitStore(v)
	notifier := newFakeNotifier()
	d := NewDispatcher(store, notifier, 4, time.Second)

	res := d.Dispatch(context.Background(), []DuePair{{Visit: v, OffsetID: "1h"}}, now)

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.Skipped)

	stored := store.get(v.ID)
	assert.True(t, stored.RemindersSent.Has("1h"))
	assert.Equal(t, 1, stored.Version)

	require.Len(t, store.logs, 1)
	assert.Equal(t, "sent", store.logs[0].Status)
	assert.Equal(t, "1h", store.logs[0].OffsetID)
	assert.Equal(t, v.ID, store.logs[0].VisitID)
}

// Provider fails the second of three sends; the failed one stays due.
func TestDispatchPartialProviderFailure(t *testing.T) {
	now := baseTime
	v1 := scheduledVisit(now.Add(30 * time.Minute))
	v2 := scheduledVisit(now.Add(35 * time.Minute))
	v3 := scheduledVisit(now.Add(40 * time.Minute))
	store := newFakeVisitStore(v1, v2, v3)
	notifier := newFakeNotifier()
	notifier.failFor[pairKey(v2.ID, "1h")] = errors.New("provider rejected")
	d := NewDispatcher(store, notifier, 4, time.Second)

	pairs := []DuePair{
		{Visit: v1, OffsetID: "1h"},
		{Visit: v2, OffsetID: "1h"},
		{Visit: v3, OffsetID: "1h"},
	}
	res := d.Dispatch(context.Background(), pairs, now)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.FailedVisitIDs, 1)
	assert.Equal(t, v2.ID, res.FailedVisitIDs[0])

	// The failed visit is untouched, so a re-run still finds it due
	assert.False(t, store.get(v2.ID).RemindersSent.Has("1h"))
	assert.Equal(t, 0, store.get(v2.ID).Version)

	rerun := SelectDue([]models.Visit{store.get(v2.ID)}, now, testOffsets())
	require.Len(t, rerun, 1)
	assert.Equal(t, "1h", rerun[0].OffsetID)
}

// Two overlapping runs pick the same due pair; the conditional write lets only
// one record it and the other counts a skip.
func TestDispatchConcurrentRunsRecordOnce(t *testing.T) {
	now := baseTime
	v := scheduledVisit(now.Add(30 * time.Minute))
	store := newFakeVisitStore(v)
	notifier := newFakeNotifier()

	d1 := NewDispatcher(store, notifier, 2, time.Second)
	d2 := NewDispatcher(store, notifier, 2, time.Second)
	pairs := []DuePair{{Visit: v, OffsetID: "1h"}}

	var wg sync.WaitGroup
	results := make([]DispatchResult, 2)
	wg.Add(2)
	go func() { defer wg.Done(); results[0] = d1.Dispatch(context.Background(), pairs, now) }()
	go func() { defer wg.Done(); results[1] = d2.Dispatch(context.Background(), pairs, now) }()
	wg.Wait()

	assert.Equal(t, 1, results[0].Sent+results[1].Sent)
	assert.Equal(t, 1, results[0].Skipped+results[1].Skipped)
	assert.Equal(t, 0, results[0].Failed+results[1].Failed)

	stored := store.get(v.ID)
	assert.Equal(t, models.StringSet{"1h"}, stored.RemindersSent)
	assert.Equal(t, 1, stored.Version)
}

// Both offsets of one visit due in the same run: processed in order by one
// worker, each write building on the previous version.
func TestDispatchMultipleOffsetsSameVisit(t *testing.T) {
	now := baseTime
	v := scheduledVisit(now.Add(30 * time.Minute))
	store := newFakeVisitStore(v)
	notifier := newFakeNotifier()
	d := NewDispatcher(store, notifier, 4, time.Second)

	pairs := []DuePair{
		{Visit: v, OffsetID: "24h"},
		{Visit: v, OffsetID: "1h"},
	}
	res := d.Dispatch(context.Background(), pairs, now)

	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 0, res.Skipped)
	stored := store.get(v.ID)
	assert.True(t, stored.RemindersSent.Has("24h"))
	assert.True(t, stored.RemindersSent.Has("1h"))
	assert.Equal(t, 2, stored.Version)
}

func TestDispatchSendTimeoutCountsAsFailure(t *testing.T) {
	now := baseTime
	v := scheduledVisit(now.Add(30 * time.Minute))
	store := newFakeVisitStore(v)
	notifier := newFakeNotifier()
	notifier.delay = 200 * time.Millisecond
	d := NewDispatcher(store, notifier, 1, 20*time.Millisecond)

	res := d.Dispatch(context.Background(), []DuePair{{Visit: v, OffsetID: "1h"}}, now)

	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, store.get(v.ID).RemindersSent.Has("1h"))
}

func TestDispatchEmptyBatch(t *testing.T) {
	store := newFakeVisitStore()
	d := NewDispatcher(store, newFakeNotifier(), 4, time.Second)

	res := d.Dispatch(context.Background(), nil, baseTime)
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, res.FailedVisitIDs)
}
