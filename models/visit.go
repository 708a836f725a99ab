package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visit statuses. COMPLETED, MISSED and CANCELLED are terminal.
const (
	VisitScheduled = "SCHEDULED"
	VisitCompleted = "COMPLETED"
	VisitMissed    = "MISSED"
	VisitCancelled = "CANCELLED"
)

// IsTerminalStatus reports whether a visit in this status accepts no further transitions.
func IsTerminalStatus(status string) bool {
	return status == VisitCompleted || status == VisitMissed || status == VisitCancelled
}

type Visit struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	ScheduledAt      time.Time `gorm:"index;not null"`
	Status           string    `gorm:"type:varchar(20);index;default:'SCHEDULED'"`
	DiscountUnlocked bool      `gorm:"default:false"`
	ActualVisit      *time.Time
	RemindersSent    StringSet `gorm:"type:jsonb;default:'[]'"`

	// Version guards every conditional update; bumped on each successful write.
	Version int `gorm:"not null;default:0"`

	Customer Customer `gorm:"foreignKey:CustomerID"`
	Store    Store    `gorm:"foreignKey:StoreID"`

	gorm.Model
}

func (v *Visit) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = VisitScheduled
	}
	return
}

// StringSet is a JSONB-backed set of identifiers (reminder offsets already sent).
type StringSet []string

func (s StringSet) Has(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a copy of the set with id added; the receiver is never mutated.
func (s StringSet) With(id string) StringSet {
	if s.Has(id) {
		return s
	}
	out := make(StringSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, id)
}

func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal(StringSet{})
	}
	return json.Marshal(s)
}

func (s *StringSet) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, s)
}
