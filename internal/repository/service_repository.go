package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/salonbot/booking-core/internal/model"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	Update(ctx context.Context, s *model.Service) error
	// Удаление услуги не трогает историю записей: ссылка в bookings остаётся.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Service, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) Create(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) Update(ctx context.Context, s *model.Service) error {
	return r.db.WithContext(ctx).
		Model(&model.Service{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":             s.Name,
			"description":      s.Description,
			"price":            s.Price,
			"duration_minutes": s.DurationMinutes,
		}).Error
}

func (r *GormServiceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Service{}, "id = ?", id).Error
}

func (r *GormServiceRepository) List(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}
