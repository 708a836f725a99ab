// services/lifecycle.go
package services

import (
	"time"
	"visitperk-backend/models"
)

// The visit state machine. Every function takes a visit snapshot and returns an
// updated copy; nothing here touches storage. Callers persist the result with a
// conditional write keyed on the snapshot's version.
//
//	SCHEDULED -> COMPLETED | MISSED | CANCELLED (terminal)

// Complete marks a scheduled visit as completed at the given instant and unlocks
// the discount. Legal only from SCHEDULED.
func Complete(v models.Visit, now time.Time) (models.Visit, error) {
	if v.Status != models.VisitScheduled {
		return v, ErrInvalidTransition
	}
	v.Status = models.VisitCompleted
	v.DiscountUnlocked = true
	actual := now
	v.ActualVisit = &actual
	return v, nil
}

// Cancel marks a scheduled visit as cancelled. Legal only from SCHEDULED.
func Cancel(v models.Visit) (models.Visit, error) {
	if v.Status != models.VisitScheduled {
		return v, ErrInvalidTransition
	}
	v.Status = models.VisitCancelled
	return v, nil
}

// MarkMissed marks a scheduled visit as missed. Legal only from SCHEDULED and
// only once the arrival window (scheduledAt + grace) has fully elapsed.
func MarkMissed(v models.Visit, now time.Time, grace time.Duration) (models.Visit, error) {
	if v.Status != models.VisitScheduled {
		return v, ErrInvalidTransition
	}
	if !now.After(v.ScheduledAt.Add(grace)) {
		return v, ErrInvalidTransition
	}
	v.Status = models.VisitMissed
	return v, nil
}

// RecordReminderSent adds the offset to the visit's sent set. Idempotent: a
// second call with the same offset returns the snapshot unchanged.
func RecordReminderSent(v models.Visit, offsetID string) models.Visit {
	v.RemindersSent = v.RemindersSent.With(offsetID)
	return v
}
