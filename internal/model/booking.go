package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus проверяет, что статус входит в допустимое множество.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking — запись клиента на услугу.
// Слот (master_id, date, start_time) уникален, пока мастер выбран;
// NULL-мастер («без выбора») слот не занимает.
// bookings
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	// Ссылка сохраняется и после удаления услуги из каталога —
	// история записей не вычищается.
	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`

	// NULL — «без выбора мастера»; также выставляется при удалении мастера.
	MasterID *uuid.UUID `gorm:"type:uuid;uniqueIndex:uniq_master_slot" json:"master_id,omitempty"`

	Date      datatypes.Date `gorm:"type:date;not null;uniqueIndex:uniq_master_slot" json:"date"`
	StartTime string         `gorm:"type:varchar(5);not null;uniqueIndex:uniq_master_slot" json:"start_time"`

	// Контакты, введённые клиентом при оформлении.
	ClientName  string `gorm:"type:varchar(255)" json:"client_name"`
	ClientPhone string `gorm:"type:varchar(32)" json:"client_phone"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Client *Client `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
