package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"not null"`
	Address      string
	Phone        string
	WorkingHours JSONB `gorm:"type:jsonb;default:'{}'"`

	Users      []User          `gorm:"foreignKey:StoreID"`
	Customers  []Customer      `gorm:"foreignKey:StoreID"`
	Visits     []Visit         `gorm:"foreignKey:StoreID"`
	Categories []StoreCategory `gorm:"foreignKey:StoreID"`
	Images     []StoreImage    `gorm:"foreignKey:StoreID"`

	gorm.Model
}

func (s *Store) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// StoreCategory is a display category shown on the store page, ordered by Position.
type StoreCategory struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Name     string    `gorm:"not null"`
	Position int       `gorm:"default:0"`

	gorm.Model
}

func (c *StoreCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// StoreImage references an externally hosted image, ordered by Position.
type StoreImage struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID  uuid.UUID `gorm:"type:uuid;index;not null"`
	URL      string    `gorm:"not null"`
	Caption  string
	Position int `gorm:"default:0"`

	gorm.Model
}

func (i *StoreImage) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
