package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Master — мастер салона: специалист со своим недельным расписанием.
// masters
type Master struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name string `gorm:"type:varchar(255);not null" json:"name"`

	// Краткое описание, специализация и т.п.
	Bio     string `gorm:"type:text" json:"bio"`
	Contact string `gorm:"type:varchar(255)" json:"contact"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Навигационные поля для GORM (удобно для Preload).
	Rules      []WeeklyScheduleRule `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Exceptions []DateException      `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (m *Master) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
