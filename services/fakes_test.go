package services

import (
	"context"
	"sort"
	"sync"
	"time"
	"visitperk-backend/config"
	"visitperk-backend/models"

	"github.com/google/uuid"
)

// fakeVisitStore is an in-memory VisitStore with real compare-and-swap
// semantics, so conflict scenarios behave like the SQL implementation.
type fakeVisitStore struct {
	mu     sync.Mutex
	visits map[uuid.UUID]models.Visit
	logs   []models.ReminderLog

	findDueErr    error
	findLapsedErr error
	applyErr      error
}

func newFakeVisitStore(visits ...models.Visit) *fakeVisitStore {
	s := &fakeVisitStore{visits: make(map[uuid.UUID]models.Visit)}
	for _, v := range visits {
		s.visits[v.ID] = v
	}
	return s
}

func (s *fakeVisitStore) FindDueForReminder(now time.Time, offsets []config.Offset) ([]models.Visit, error) {
	if s.findDueErr != nil {
		return nil, s.findDueErr
	}
	var max time.Duration
	for _, o := range offsets {
		if o.Before > max {
			max = o.Before
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visit
	for _, v := range s.visits {
		if v.Status == models.VisitScheduled &&
			v.ScheduledAt.After(now) &&
			!v.ScheduledAt.After(now.Add(max)) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *fakeVisitStore) FindLapsed(now time.Time, grace time.Duration) ([]models.Visit, error) {
	if s.findLapsedErr != nil {
		return nil, s.findLapsedErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Visit
	for _, v := range s.visits {
		if v.Status == models.VisitScheduled && v.ScheduledAt.Before(now.Add(-grace)) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *fakeVisitStore) ApplyConditional(v models.Visit, expectedVersion int) (bool, error) {
	if s.applyErr != nil {
		return false, s.applyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.visits[v.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	stored.Status = v.Status
	stored.DiscountUnlocked = v.DiscountUnlocked
	stored.ActualVisit = v.ActualVisit
	stored.RemindersSent = v.RemindersSent
	stored.Version = expectedVersion + 1
	s.visits[v.ID] = stored
	return true, nil
}

func (s *fakeVisitStore) LogReminder(lg models.ReminderLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, lg)
	return nil
}

func (s *fakeVisitStore) get(id uuid.UUID) models.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visits[id]
}

// fakeNotifier records sends and can fail or stall selected pairs.
type fakeNotifier struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]error
	delay   time.Duration
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]error)}
}

func pairKey(visitID uuid.UUID, offsetID string) string {
	return visitID.String() + "|" + offsetID
}

func (n *fakeNotifier) Send(ctx context.Context, visit models.Visit, offsetID string) (string, error) {
	if n.delay > 0 {
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	key := pairKey(visit.ID, offsetID)
	n.calls = append(n.calls, key)
	if err, ok := n.failFor[key]; ok {
		return "sms", err
	}
	return "sms", nil
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func scheduledVisit(scheduledAt time.Time) models.Visit {
	return models.Visit{
		ID:          uuid.New(),
		StoreID:     uuid.New(),
		CustomerID:  uuid.New(),
		ScheduledAt: scheduledAt,
		Status:      models.VisitScheduled,
	}
}

func testOffsets() []config.Offset {
	return []config.Offset{
		{ID: "24h", Before: 24 * time.Hour},
		{ID: "1h", Before: time.Hour},
	}
}

func testSettings() config.ReminderSettings {
	return config.ReminderSettings{
		TriggerSecret:   "test-secret",
		Offsets:         testOffsets(),
		GracePeriod:     time.Hour,
		DispatchWorkers: 4,
		SendTimeout:     time.Second,
		CycleDeadline:   30 * time.Second,
	}
}
