package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/repository"
)

// CatalogService — справочник мастеров и услуг (админские CRUD-операции).
type CatalogService struct {
	masters  repository.MasterRepository
	services repository.ServiceRepository
	log      *logger.Logger
}

func NewCatalogService(
	masters repository.MasterRepository,
	services repository.ServiceRepository,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{masters: masters, services: services, log: log}
}

func (s *CatalogService) CreateMaster(ctx context.Context, name, bio, contact string) (*model.Master, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("master name is required")
	}
	m := &model.Master{Name: name, Bio: bio, Contact: contact}
	if err := s.masters.Create(ctx, m); err != nil {
		return nil, apperr.Internal("create master", err)
	}
	s.log.Info("master created", "master_id", m.ID, "name", name)
	return m, nil
}

func (s *CatalogService) UpdateMaster(ctx context.Context, id uuid.UUID, name, bio, contact string) (*model.Master, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("master name is required")
	}
	m, err := s.masters.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapStoreErr(err, "master")
	}
	m.Name, m.Bio, m.Contact = name, bio, contact
	if err := s.masters.Update(ctx, m); err != nil {
		return nil, apperr.Internal("update master", err)
	}
	return m, nil
}

// DeleteMaster удаляет мастера вместе с расписанием; история записей
// остаётся с NULL-ссылкой на мастера.
func (s *CatalogService) DeleteMaster(ctx context.Context, id uuid.UUID) error {
	if _, err := s.masters.GetByID(ctx, id.String()); err != nil {
		return mapStoreErr(err, "master")
	}
	if err := s.masters.Delete(ctx, id.String()); err != nil {
		return apperr.Internal("delete master", err)
	}
	s.log.Info("master deleted", "master_id", id)
	return nil
}

func (s *CatalogService) GetMaster(ctx context.Context, id uuid.UUID) (*model.Master, error) {
	m, err := s.masters.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapStoreErr(err, "master")
	}
	return m, nil
}

func (s *CatalogService) ListMasters(ctx context.Context) ([]model.Master, error) {
	masters, err := s.masters.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list masters", err)
	}
	return masters, nil
}

func (s *CatalogService) CreateService(ctx context.Context, name, description string, price float64, durationMinutes int) (*model.Service, error) {
	if err := validateService(name, price, durationMinutes); err != nil {
		return nil, err
	}
	svc := &model.Service{
		Name:            strings.TrimSpace(name),
		Description:     description,
		Price:           price,
		DurationMinutes: durationMinutes,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperr.Internal("create service", err)
	}
	s.log.Info("service created", "service_id", svc.ID, "name", svc.Name)
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, name, description string, price float64, durationMinutes int) (*model.Service, error) {
	if err := validateService(name, price, durationMinutes); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapStoreErr(err, "service")
	}
	svc.Name = strings.TrimSpace(name)
	svc.Description = description
	svc.Price = price
	svc.DurationMinutes = durationMinutes
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, apperr.Internal("update service", err)
	}
	return svc, nil
}

// DeleteService убирает услугу из каталога; ссылки из истории записей
// сохраняются, подстановка «не найдено» — забота отображающего слоя.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.services.GetByID(ctx, id.String()); err != nil {
		return mapStoreErr(err, "service")
	}
	if err := s.services.Delete(ctx, id.String()); err != nil {
		return apperr.Internal("delete service", err)
	}
	s.log.Info("service deleted", "service_id", id)
	return nil
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapStoreErr(err, "service")
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context) ([]model.Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list services", err)
	}
	return services, nil
}

func validateService(name string, price float64, durationMinutes int) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("service name is required")
	}
	if price < 0 {
		return apperr.Validation("price must be non-negative")
	}
	if durationMinutes < model.MinServiceDurationMin || durationMinutes > model.MaxServiceDurationMin {
		return apperr.Validation("duration out of range")
	}
	return nil
}
