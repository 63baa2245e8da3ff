package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Пределы длительности услуги в минутах.
const (
	MinServiceDurationMin = 1
	MaxServiceDurationMin = 1440
)

// services
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Цена услуги, неотрицательная.
	Price float64 `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	// Длительность в минутах — вход генератора слотов.
	DurationMinutes int `gorm:"not null" json:"duration_minutes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
