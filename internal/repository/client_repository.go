package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/salonbot/booking-core/internal/model"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*model.Client, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Client, error)
	// GetOrCreate идемпотентен по telegramID: непустые name/phone
	// перезаписывают сохранённые значения, пустые не трогают.
	GetOrCreate(ctx context.Context, telegramID int64, name, phone string) (*model.Client, error)
}

type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormClientRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Client, error) {
	var c model.Client
	if err := r.db.WithContext(ctx).First(&c, "telegram_id = ?", telegramID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormClientRepository) GetOrCreate(ctx context.Context, telegramID int64, name, phone string) (*model.Client, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	var c model.Client
	tx := r.db.WithContext(ctx).First(&c, "telegram_id = ?", telegramID)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			c = model.Client{TelegramID: telegramID, Name: name, Phone: phone}
			if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
				return nil, err
			}
			return &c, nil
		}
		return nil, tx.Error
	}

	// last-write-wins только для непустых аргументов
	updates := map[string]any{}
	if name != "" && name != c.Name {
		updates["name"] = name
	}
	if phone != "" && phone != c.Phone {
		updates["phone"] = phone
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&model.Client{}).
			Where("id = ?", c.ID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		if name != "" {
			c.Name = name
		}
		if phone != "" {
			c.Phone = phone
		}
	}
	return &c, nil
}
