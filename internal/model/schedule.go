package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WeeklyScheduleRule — недельное окно доступности мастера.
// Не более одного активного правила на (master_id, weekday): повторная
// запись заменяет прежнюю (upsert).
// weekly_schedule_rules
type WeeklyScheduleRule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	MasterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_master_weekday" json:"master_id"`

	// День недели, 0 = понедельник ... 6 = воскресенье.
	Weekday int `gorm:"not null;uniqueIndex:uniq_master_weekday" json:"weekday"`

	// Границы окна в формате HH:MM, инвариант start < end.
	StartTime string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"end_time"`

	// Шаг сетки предложений в минутах.
	IntervalMinutes int `gorm:"not null" json:"interval_minutes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Master *Master `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (r *WeeklyScheduleRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DateException — исключение на конкретную дату: выходной либо
// особые часы, заменяющие недельное правило. Upsert по (master_id, date).
// date_exceptions
type DateException struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	MasterID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uniq_master_date" json:"master_id"`
	Date     datatypes.Date `gorm:"type:date;not null;uniqueIndex:uniq_master_date" json:"date"`

	Available bool `gorm:"not null" json:"available"`

	// Особые часы на эту дату; nil — действует недельное правило.
	StartTime *string `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime   *string `gorm:"type:varchar(5)" json:"end_time,omitempty"`

	Note string `gorm:"type:text" json:"note"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Master *Master `gorm:"foreignKey:MasterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (e *DateException) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
