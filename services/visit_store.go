// services/visit_store.go
package services

import (
	"time"
	"visitperk-backend/config"
	"visitperk-backend/models"

	"gorm.io/gorm"
)

// VisitStore is the narrow storage surface the reminder cycle consumes. The core
// never issues queries beyond these shapes.
type VisitStore interface {
	// FindDueForReminder returns SCHEDULED visits whose scheduled time falls
	// inside the widest configured reminder window, ordered by scheduled time,
	// with customer and store preloaded for message building.
	FindDueForReminder(now time.Time, offsets []config.Offset) ([]models.Visit, error)

	// FindLapsed returns SCHEDULED visits whose arrival window has fully elapsed.
	FindLapsed(now time.Time, grace time.Duration) ([]models.Visit, error)

	// ApplyConditional persists the snapshot's mutable fields only if the stored
	// row still carries expectedVersion, bumping the version on success. Returns
	// false (no error) when the precondition fails.
	ApplyConditional(v models.Visit, expectedVersion int) (bool, error)

	// LogReminder appends one send-attempt audit row.
	LogReminder(lg models.ReminderLog) error
}

type GormVisitStore struct {
	db *gorm.DB
}

func NewGormVisitStore(db *gorm.DB) *GormVisitStore {
	return &GormVisitStore{db: db}
}

func (s *GormVisitStore) FindDueForReminder(now time.Time, offsets []config.Offset) ([]models.Visit, error) {
	var max time.Duration
	for _, o := range offsets {
		if o.Before > max {
			max = o.Before
		}
	}

	var visits []models.Visit
	err := s.db.Preload("Customer").Preload("Store").
		Where("status = ? AND scheduled_at > ? AND scheduled_at <= ?",
			models.VisitScheduled, now, now.Add(max)).
		Order("scheduled_at asc").
		Find(&visits).Error
	return visits, err
}

func (s *GormVisitStore) FindLapsed(now time.Time, grace time.Duration) ([]models.Visit, error) {
	var visits []models.Visit
	err := s.db.
		Where("status = ? AND scheduled_at < ?", models.VisitScheduled, now.Add(-grace)).
		Order("scheduled_at asc").
		Find(&visits).Error
	return visits, err
}

func (s *GormVisitStore) ApplyConditional(v models.Visit, expectedVersion int) (bool, error) {
	res := s.db.Model(&models.Visit{}).
		Where("id = ? AND version = ?", v.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            v.Status,
			"discount_unlocked": v.DiscountUnlocked,
			"actual_visit":      v.ActualVisit,
			"reminders_sent":    v.RemindersSent,
			"version":           expectedVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormVisitStore) LogReminder(lg models.ReminderLog) error {
	return s.db.Create(&lg).Error
}
