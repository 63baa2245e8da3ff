package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/repository"
	"github.com/salonbot/booking-core/internal/schedule"
)

// ScheduleService — операции над расписанием мастера и выдача свободных
// слотов. Чтение слотов не блокирует: актуальность разрешается при коммите
// записи, а не при чтении.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	bookings  repository.BookingRepository
	masters   repository.MasterRepository

	defaultIntervalMin int
	log                *logger.Logger
}

func NewScheduleService(
	schedules repository.ScheduleRepository,
	bookings repository.BookingRepository,
	masters repository.MasterRepository,
	defaultIntervalMin int,
	log *logger.Logger,
) *ScheduleService {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = schedule.DefaultIntervalMinutes
	}
	return &ScheduleService{
		schedules:          schedules,
		bookings:           bookings,
		masters:            masters,
		defaultIntervalMin: defaultIntervalMin,
		log:                log,
	}
}

// SetWeeklyRule заменяет недельное правило для (мастер, день недели).
// intervalMinutes <= 0 — используется платформенный дефолт (30 минут).
func (s *ScheduleService) SetWeeklyRule(
	ctx context.Context,
	masterID uuid.UUID,
	weekday int,
	start, end string,
	intervalMinutes int,
) (*model.WeeklyScheduleRule, error) {
	if weekday < 0 || weekday > 6 {
		return nil, apperr.Validation("weekday must be in range 0..6")
	}

	startMin, err := schedule.ParseClock(start)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	endMin, err := schedule.ParseClock(end)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if startMin >= endMin {
		return nil, apperr.Validation("schedule window start must be before end")
	}

	if intervalMinutes <= 0 {
		intervalMinutes = s.defaultIntervalMin
	}

	if _, err := s.masters.GetByID(ctx, masterID.String()); err != nil {
		return nil, mapStoreErr(err, "master")
	}

	rule := &model.WeeklyScheduleRule{
		MasterID:        masterID,
		Weekday:         weekday,
		StartTime:       start,
		EndTime:         end,
		IntervalMinutes: intervalMinutes,
	}
	if err := s.schedules.UpsertRule(ctx, rule); err != nil {
		return nil, apperr.Internal("upsert weekly rule", err)
	}

	s.log.Info("weekly rule set",
		"master_id", masterID,
		"weekday", weekday,
		"start", start,
		"end", end,
		"interval_min", intervalMinutes,
	)
	return rule, nil
}

// SetException заменяет исключение для (мастер, дата). Особые часы задаются
// только парой start+end; available=true без особых часов оставляет недельное
// правило в силе на эту дату.
func (s *ScheduleService) SetException(
	ctx context.Context,
	masterID uuid.UUID,
	date string,
	available bool,
	start, end *string,
	note string,
) (*model.DateException, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if (start == nil) != (end == nil) {
		return nil, apperr.Validation("override hours require both start and end")
	}
	if start != nil {
		startMin, err := schedule.ParseClock(*start)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		endMin, err := schedule.ParseClock(*end)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if startMin >= endMin {
			return nil, apperr.Validation("override window start must be before end")
		}
	}

	if _, err := s.masters.GetByID(ctx, masterID.String()); err != nil {
		return nil, mapStoreErr(err, "master")
	}

	exc := &model.DateException{
		MasterID:  masterID,
		Date:      datatypes.Date(day),
		Available: available,
		StartTime: start,
		EndTime:   end,
		Note:      note,
	}
	if err := s.schedules.UpsertException(ctx, exc); err != nil {
		return nil, apperr.Internal("upsert date exception", err)
	}

	s.log.Info("date exception set",
		"master_id", masterID,
		"date", date,
		"available", available,
	)
	return exc, nil
}

// GetWeeklyRule возвращает правило или nil, если день не настроен.
func (s *ScheduleService) GetWeeklyRule(ctx context.Context, masterID uuid.UUID, weekday int) (*model.WeeklyScheduleRule, error) {
	if weekday < 0 || weekday > 6 {
		return nil, apperr.Validation("weekday must be in range 0..6")
	}
	rule, err := s.schedules.GetRule(ctx, masterID.String(), weekday)
	if err != nil {
		return nil, apperr.Internal("get weekly rule", err)
	}
	return rule, nil
}

// ListExceptions возвращает исключения мастера по возрастанию даты.
func (s *ScheduleService) ListExceptions(ctx context.Context, masterID uuid.UUID) ([]model.DateException, error) {
	excs, err := s.schedules.ListExceptions(ctx, masterID.String())
	if err != nil {
		return nil, apperr.Internal("list exceptions", err)
	}
	return excs, nil
}

// AvailableSlots собирает входы из хранилища и отдаёт их чистому генератору:
// упорядоченный список свободных стартов "HH:MM" на дату.
func (s *ScheduleService) AvailableSlots(
	ctx context.Context,
	masterID uuid.UUID,
	date string,
	durationMinutes int,
) ([]string, error) {
	if durationMinutes < model.MinServiceDurationMin || durationMinutes > model.MaxServiceDurationMin {
		return nil, apperr.Validation("service duration out of range")
	}

	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	d := datatypes.Date(day)

	excRow, err := s.schedules.GetException(ctx, masterID.String(), d)
	if err != nil {
		return nil, apperr.Internal("get exception", err)
	}
	ruleRow, err := s.schedules.GetRule(ctx, masterID.String(), schedule.WeekdayIndex(day))
	if err != nil {
		return nil, apperr.Internal("get weekly rule", err)
	}
	booked, err := s.bookings.ListBookedTimes(ctx, masterID, d)
	if err != nil {
		return nil, apperr.Internal("list booked times", err)
	}

	var rule *schedule.Rule
	if ruleRow != nil {
		rule = &schedule.Rule{
			Start:           ruleRow.StartTime,
			End:             ruleRow.EndTime,
			IntervalMinutes: ruleRow.IntervalMinutes,
		}
	}
	var exc *schedule.Exception
	if excRow != nil {
		exc = &schedule.Exception{
			Available: excRow.Available,
			Start:     excRow.StartTime,
			End:       excRow.EndTime,
		}
	}

	slots, err := schedule.GenerateSlots(rule, exc, durationMinutes, booked)
	if err != nil {
		return nil, apperr.Internal("generate slots", err)
	}
	return slots, nil
}
