package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/salonbot/booking-core/internal/model"
)

type MasterRepository interface {
	Create(ctx context.Context, m *model.Master) error
	GetByID(ctx context.Context, id string) (*model.Master, error)
	Update(ctx context.Context, m *model.Master) error
	// Удаление мастера: правила и исключения уходят вместе с ним,
	// исторические записи получают NULL-ссылку на мастера.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Master, error)
}

// Реализация на GORM.
type GormMasterRepository struct {
	db *gorm.DB
}

func NewGormMasterRepository(db *gorm.DB) *GormMasterRepository {
	return &GormMasterRepository{db: db}
}

func (r *GormMasterRepository) Create(ctx context.Context, m *model.Master) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormMasterRepository) GetByID(ctx context.Context, id string) (*model.Master, error) {
	var m model.Master
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMasterRepository) Update(ctx context.Context, m *model.Master) error {
	return r.db.WithContext(ctx).
		Model(&model.Master{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"name":    m.Name,
			"bio":     m.Bio,
			"contact": m.Contact,
		}).Error
}

func (r *GormMasterRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.WeeklyScheduleRule{}, "master_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.DateException{}, "master_id = ?", id).Error; err != nil {
			return err
		}
		// «Без конкретного мастера» — допустимое историческое состояние.
		if err := tx.Model(&model.Booking{}).
			Where("master_id = ?", id).
			Update("master_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Master{}, "id = ?", id).Error
	})
}

func (r *GormMasterRepository) List(ctx context.Context) ([]model.Master, error) {
	var masters []model.Master
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&masters).Error; err != nil {
		return nil, err
	}
	return masters, nil
}
