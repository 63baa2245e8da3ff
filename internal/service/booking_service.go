package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/metrics"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/notify"
	"github.com/salonbot/booking-core/internal/repository"
	"github.com/salonbot/booking-core/internal/schedule"
)

var phoneRe = regexp.MustCompile(`^\+?\d{7,15}$`)

// BookingService — транзакционный журнал записей. Единственный компонент
// с конкурентными записями: хранилище — единственная точка синхронизации,
// вся проверка и вставка происходят в одной транзакции.
type BookingService struct {
	db       *gorm.DB
	bookings repository.BookingRepository

	publisher notify.Publisher
	log       *logger.Logger
}

func NewBookingService(
	db *gorm.DB,
	bookings repository.BookingRepository,
	publisher notify.Publisher,
	log *logger.Logger,
) *BookingService {
	return &BookingService{
		db:        db,
		bookings:  bookings,
		publisher: publisher,
		log:       log,
	}
}

// Create проводит запись клиента на слот.
//
// Гарантии при конкурентных коммитах одного слота (мастер, дата, время):
// ровно один победитель, остальные получают SLOT_TAKEN — через уникальный
// индекс хранилища, так что гарантия держится и между процессами.
// Проверка «у клиента нет активной записи» выполняется в той же транзакции
// под блокировкой строки клиента, чтобы два запроса одного клиента
// не прошли предварительную проверку одновременно.
//
// masterID == nil («без выбора») слот не занимает — NULL в уникальном
// индексе не конфликтует.
func (s *BookingService) Create(
	ctx context.Context,
	clientID uuid.UUID,
	serviceID uuid.UUID,
	masterID *uuid.UUID,
	date string,
	startTime string,
	name string,
	phone string,
) (uuid.UUID, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return uuid.Nil, apperr.Validation(err.Error())
	}
	if _, err := schedule.ParseClock(startTime); err != nil {
		return uuid.Nil, apperr.Validation(err.Error())
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, apperr.Validation("client name is required")
	}
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return uuid.Nil, apperr.Validation("phone must match +79991234567 format")
	}

	booking := &model.Booking{
		ClientID:    clientID,
		ServiceID:   serviceID,
		MasterID:    masterID,
		Date:        datatypes.Date(day),
		StartTime:   startTime,
		ClientName:  name,
		ClientPhone: phone,
		Status:      model.BookingStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Блокировка строки клиента сериализует конкурентные попытки
		// одного клиента (на SQLite писатели сериализуются сами).
		var client model.Client
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&client, "id = ?", clientID).Error; err != nil {
			return mapStoreErr(err, "client")
		}

		var service model.Service
		if err := tx.First(&service, "id = ?", serviceID).Error; err != nil {
			return mapStoreErr(err, "service")
		}

		var active int64
		if err := tx.Model(&model.Booking{}).
			Where("client_id = ? AND status <> ?", clientID, model.BookingStatusCancelled).
			Count(&active).Error; err != nil {
			return apperr.Internal("count active bookings", err)
		}
		if active > 0 {
			return apperr.DoubleBooking()
		}

		if err := tx.Create(booking).Error; err != nil {
			if isDuplicateKey(err) {
				return apperr.SlotTaken()
			}
			return apperr.Internal("insert booking", err)
		}

		event := &model.Event{
			EventType: model.EventTypeBookingCreated,
			ClientID:  &clientID,
			BookingID: &booking.ID,
			MasterID:  masterID,
			Details:   fmt.Sprintf("%s %s", date, startTime),
		}
		return tx.Create(event).Error
	})
	if err != nil {
		switch apperr.CodeOf(err) {
		case apperr.CodeSlotTaken:
			metrics.SlotConflicts.Inc()
			s.log.Info("slot conflict", "master_id", masterID, "date", date, "time", startTime)
		case apperr.CodeDoubleBooking:
			metrics.DoubleBookings.Inc()
			s.log.Info("double booking rejected", "client_id", clientID)
		default:
			s.log.Error("create booking failed", "error", err)
		}
		return uuid.Nil, err
	}

	metrics.BookingsCreated.Inc()
	s.log.Info("booking created",
		"booking_id", booking.ID,
		"client_id", clientID,
		"date", date,
		"time", startTime,
	)

	// Публикация события — после коммита, best effort: доставка
	// уведомлений не входит в атомарность записи.
	s.publish(ctx, notify.BookingEvent{
		Type:      string(model.EventTypeBookingCreated),
		BookingID: booking.ID.String(),
		ClientID:  clientID.String(),
		MasterID:  uuidString(masterID),
		ServiceID: serviceID.String(),
		Date:      date,
		Time:      startTime,
		Status:    string(booking.Status),
		At:        time.Now().UTC(),
	})

	return booking.ID, nil
}

// SetStatus переводит запись в новый статус (админское действие).
// Записи не удаляются физически — история сохраняется для экспорта.
func (s *BookingService) SetStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	if !model.ValidBookingStatus(status) {
		return apperr.Validation("unknown booking status")
	}

	booking, err := s.bookings.GetByID(ctx, id.String())
	if err != nil {
		return mapStoreErr(err, "booking")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).
			Where("id = ?", id).
			Update("status", status).Error; err != nil {
			return apperr.Internal("update booking status", err)
		}
		event := &model.Event{
			EventType: model.EventTypeBookingStatusChanged,
			ClientID:  &booking.ClientID,
			BookingID: &booking.ID,
			MasterID:  booking.MasterID,
			Details:   string(status),
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("booking status changed", "booking_id", id, "status", status)

	s.publish(ctx, notify.BookingEvent{
		Type:      string(model.EventTypeBookingStatusChanged),
		BookingID: id.String(),
		ClientID:  booking.ClientID.String(),
		MasterID:  uuidString(booking.MasterID),
		Status:    string(status),
		At:        time.Now().UTC(),
	})
	return nil
}

// List отдаёт записи для внешних потребителей (уведомления, экспорт).
func (s *BookingService) List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int64, error) {
	bookings, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal("list bookings", err)
	}
	return bookings, total, nil
}

func (s *BookingService) publish(ctx context.Context, ev notify.BookingEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish booking event", "type", ev.Type, "booking_id", ev.BookingID, "error", err)
	}
}

// isDuplicateKey распознаёт нарушение уникального индекса. Основной путь —
// транслированная gorm.ErrDuplicatedKey; строковые проверки покрывают
// драйверы без трансляции.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// mapStoreErr переводит ошибки хранилища в типизированные отказы ядра.
func mapStoreErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return apperr.Internal("load "+entity, err)
}
