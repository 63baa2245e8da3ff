package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client — клиент, заводится лениво при первом обращении по Telegram ID.
// clients
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TelegramID int64 `gorm:"not null;uniqueIndex" json:"telegram_id"`

	Name  string `gorm:"type:varchar(255)" json:"name"`
	Phone string `gorm:"type:varchar(32)" json:"phone"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
