package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salonbot/booking-core/internal/model"
)

// BookingFilter сужает выборку списка записей. Нулевые поля не фильтруют.
type BookingFilter struct {
	MasterID *uuid.UUID
	ClientID *uuid.UUID
	Date     *datatypes.Date
	Status   *model.BookingStatus
	Limit    int
	Offset   int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Обновить статус записи (подтверждение/отмена админом).
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error
	List(ctx context.Context, f BookingFilter) ([]model.Booking, int64, error)
	// Занятые старты мастера на дату (не-отменённые записи), для генератора.
	ListBookedTimes(ctx context.Context, masterID uuid.UUID, date datatypes.Date) ([]string, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormBookingRepository) List(ctx context.Context, f BookingFilter) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if f.MasterID != nil {
		q = q.Where("master_id = ?", *f.MasterID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.Date != nil {
		q = q.Where("date = ?", *f.Date)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	if err := q.Order("date ASC, start_time ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListBookedTimes(ctx context.Context, masterID uuid.UUID, date datatypes.Date) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("master_id = ? AND date = ?", masterID, date).
		Where("status <> ?", model.BookingStatusCancelled).
		Order("start_time ASC").
		Pluck("start_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}
