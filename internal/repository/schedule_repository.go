package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salonbot/booking-core/internal/model"
)

type ScheduleRepository interface {
	// UpsertRule заменяет правило по ключу (master_id, weekday).
	UpsertRule(ctx context.Context, rule *model.WeeklyScheduleRule) error
	GetRule(ctx context.Context, masterID string, weekday int) (*model.WeeklyScheduleRule, error)
	ListRules(ctx context.Context, masterID string) ([]model.WeeklyScheduleRule, error)

	// UpsertException заменяет исключение по ключу (master_id, date).
	UpsertException(ctx context.Context, exc *model.DateException) error
	GetException(ctx context.Context, masterID string, date datatypes.Date) (*model.DateException, error)
	// ListExceptions возвращает исключения мастера по возрастанию даты.
	ListExceptions(ctx context.Context, masterID string) ([]model.DateException, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) UpsertRule(ctx context.Context, rule *model.WeeklyScheduleRule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "master_id"}, {Name: "weekday"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"start_time", "end_time", "interval_minutes", "updated_at",
			}),
		}).
		Create(rule).Error
}

func (r *GormScheduleRepository) GetRule(ctx context.Context, masterID string, weekday int) (*model.WeeklyScheduleRule, error) {
	var rule model.WeeklyScheduleRule
	err := r.db.WithContext(ctx).
		First(&rule, "master_id = ? AND weekday = ?", masterID, weekday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *GormScheduleRepository) ListRules(ctx context.Context, masterID string) ([]model.WeeklyScheduleRule, error) {
	var rules []model.WeeklyScheduleRule
	err := r.db.WithContext(ctx).
		Where("master_id = ?", masterID).
		Order("weekday ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *GormScheduleRepository) UpsertException(ctx context.Context, exc *model.DateException) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "master_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"available", "start_time", "end_time", "note", "updated_at",
			}),
		}).
		Create(exc).Error
}

func (r *GormScheduleRepository) GetException(ctx context.Context, masterID string, date datatypes.Date) (*model.DateException, error) {
	var exc model.DateException
	err := r.db.WithContext(ctx).
		First(&exc, "master_id = ? AND date = ?", masterID, date).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exc, nil
}

func (r *GormScheduleRepository) ListExceptions(ctx context.Context, masterID string) ([]model.DateException, error) {
	var excs []model.DateException
	err := r.db.WithContext(ctx).
		Where("master_id = ?", masterID).
		Order("date ASC").
		Find(&excs).Error
	if err != nil {
		return nil, err
	}
	return excs, nil
}
