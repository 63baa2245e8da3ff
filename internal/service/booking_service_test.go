package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/notify"
	"github.com/salonbot/booking-core/internal/repository"
)

// Понедельник, 2026-03-02 — фиксированная дата для тестов расписания.
const testDate = "2026-03-02"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

type fixture struct {
	db *gorm.DB

	bookings  *BookingService
	schedules *ScheduleService

	master  *model.Master
	service *model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := logger.Discard()

	bookingRepo := repository.NewGormBookingRepository(db)
	scheduleRepo := repository.NewGormScheduleRepository(db)
	masterRepo := repository.NewGormMasterRepository(db)

	f := &fixture{
		db:        db,
		bookings:  NewBookingService(db, bookingRepo, notify.NopPublisher{}, log),
		schedules: NewScheduleService(scheduleRepo, bookingRepo, masterRepo, 0, log),
	}

	f.master = &model.Master{Name: "Anna", Bio: "Парикмахер"}
	if err := db.Create(f.master).Error; err != nil {
		t.Fatalf("seed master: %v", err)
	}
	f.service = &model.Service{Name: "Стрижка", Price: 25, DurationMinutes: 30}
	if err := db.Create(f.service).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return f
}

func (f *fixture) newClient(t *testing.T, telegramID int64) *model.Client {
	t.Helper()
	c := &model.Client{TelegramID: telegramID, Name: "Ivan"}
	if err := f.db.Create(c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func TestBookingService_Create(t *testing.T) {
	f := newFixture(t)
	client := f.newClient(t, 1001)

	id, err := f.bookings.Create(context.Background(),
		client.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if id == uuid.Nil {
		t.Fatalf("expected booking id, got nil uuid")
	}

	var booking model.Booking
	if err := f.db.First(&booking, "id = ?", id).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.Status != model.BookingStatusPending {
		t.Fatalf("expected pending status, got %q", booking.Status)
	}

	// Создание записи фиксируется в журнале событий.
	var events int64
	if err := f.db.Model(&model.Event{}).
		Where("event_type = ? AND booking_id = ?", model.EventTypeBookingCreated, id).
		Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 1 {
		t.Fatalf("expected 1 created event, got %d", events)
	}
}

func TestBookingService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	client := f.newClient(t, 1002)
	ctx := context.Background()

	tests := []struct {
		name  string
		date  string
		time  string
		cname string
		phone string
	}{
		{"bad date", "02.03.2026", "10:00", "Ivan", "+79991234567"},
		{"bad time", testDate, "10-00", "Ivan", "+79991234567"},
		{"empty name", testDate, "10:00", "  ", "+79991234567"},
		{"bad phone", testDate, "10:00", "Ivan", "abc"},
		{"short phone", testDate, "10:00", "Ivan", "+123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.Create(ctx,
				client.ID, f.service.ID, &f.master.ID,
				tt.date, tt.time, tt.cname, tt.phone)
			if apperr.CodeOf(err) != apperr.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestBookingService_UnknownClientAndService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Create(ctx,
		uuid.New(), f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567")
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown client, got %v", err)
	}

	client := f.newClient(t, 1003)
	_, err = f.bookings.Create(ctx,
		client.ID, uuid.New(), &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567")
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown service, got %v", err)
	}
}

func TestBookingService_DoubleBookingRejected(t *testing.T) {
	f := newFixture(t)
	client := f.newClient(t, 1004)
	ctx := context.Background()

	if _, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Вторая активная запись клиента запрещена — даже на другую дату и слот.
	_, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		"2026-03-09", "15:00", "Ivan", "+79991234567")
	if apperr.CodeOf(err) != apperr.CodeDoubleBooking {
		t.Fatalf("expected DOUBLE_BOOKING, got %v", err)
	}
}

func TestBookingService_CancelledFreesClient(t *testing.T) {
	f := newFixture(t)
	client := f.newClient(t, 1005)
	ctx := context.Background()

	id, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567")
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	if err := f.bookings.SetStatus(ctx, id, model.BookingStatusCancelled); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	// После отмены клиент может записаться снова, слот свободен.
	if _, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567"); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestBookingService_SlotTaken(t *testing.T) {
	f := newFixture(t)
	first := f.newClient(t, 1006)
	second := f.newClient(t, 1007)
	ctx := context.Background()

	if _, err := f.bookings.Create(ctx,
		first.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.bookings.Create(ctx,
		second.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Petr", "+79991234568")
	if apperr.CodeOf(err) != apperr.CodeSlotTaken {
		t.Fatalf("expected SLOT_TAKEN, got %v", err)
	}
}

func TestBookingService_ConcurrentSlotSingleWinner(t *testing.T) {
	f := newFixture(t)
	first := f.newClient(t, 1008)
	second := f.newClient(t, 1009)
	ctx := context.Background()

	type result struct {
		id  uuid.UUID
		err error
	}
	results := make([]result, 2)
	clients := []uuid.UUID{first.ID, second.ID}
	phones := []string{"+79991234567", "+79991234568"}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := f.bookings.Create(ctx,
				clients[i], f.service.ID, &f.master.ID,
				testDate, "10:00", "Ivan", phones[i])
			results[i] = result{id: id, err: err}
		}(i)
	}
	wg.Wait()

	var winners, conflicts int
	for _, r := range results {
		switch {
		case r.err == nil:
			winners++
		case apperr.CodeOf(r.err) == apperr.CodeSlotTaken:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", r.err)
		}
	}
	if winners != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got winners=%d conflicts=%d", winners, conflicts)
	}

	day := datatypes.Date(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	var stored int64
	if err := f.db.Model(&model.Booking{}).
		Where("master_id = ? AND date = ? AND start_time = ?", f.master.ID, day, "10:00").
		Count(&stored).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected 1 stored booking, got %d", stored)
	}
}

func TestBookingService_NilMasterDoesNotHoldSlot(t *testing.T) {
	f := newFixture(t)
	first := f.newClient(t, 1010)
	second := f.newClient(t, 1011)
	ctx := context.Background()

	// Запись «без выбора мастера» не занимает слот: NULL не конфликтует
	// в уникальном индексе, обе записи проходят.
	if _, err := f.bookings.Create(ctx,
		first.ID, f.service.ID, nil,
		testDate, "10:00", "Ivan", "+79991234567"); err != nil {
		t.Fatalf("first nil-master booking: %v", err)
	}
	if _, err := f.bookings.Create(ctx,
		second.ID, f.service.ID, nil,
		testDate, "10:00", "Petr", "+79991234568"); err != nil {
		t.Fatalf("second nil-master booking: %v", err)
	}
}

func TestBookingService_SetStatus(t *testing.T) {
	f := newFixture(t)
	client := f.newClient(t, 1012)
	ctx := context.Background()

	id, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "10:00", "Ivan", "+79991234567")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if err := f.bookings.SetStatus(ctx, id, model.BookingStatus("done")); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for unknown status, got %v", err)
	}
	if err := f.bookings.SetStatus(ctx, uuid.New(), model.BookingStatusCompleted); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown booking, got %v", err)
	}

	if err := f.bookings.SetStatus(ctx, id, model.BookingStatusCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}

	var booking model.Booking
	if err := f.db.First(&booking, "id = ?", id).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.Status != model.BookingStatusCompleted {
		t.Fatalf("expected completed, got %q", booking.Status)
	}

	var events int64
	if err := f.db.Model(&model.Event{}).
		Where("event_type = ? AND booking_id = ?", model.EventTypeBookingStatusChanged, id).
		Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 1 {
		t.Fatalf("expected 1 status event, got %d", events)
	}
}

func TestBookingService_ListFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := datatypes.Date(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	for i, tm := range []string{"11:00", "09:00", "10:00"} {
		client := f.newClient(t, int64(2000+i))
		if _, err := f.bookings.Create(ctx,
			client.ID, f.service.ID, &f.master.ID,
			testDate, tm, "Ivan", "+79991234567"); err != nil {
			t.Fatalf("booking %s: %v", tm, err)
		}
	}

	bookings, total, err := f.bookings.List(ctx, repository.BookingFilter{
		MasterID: &f.master.ID,
		Date:     &day,
	})
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if total != 3 || len(bookings) != 3 {
		t.Fatalf("expected 3 bookings, got total=%d len=%d", total, len(bookings))
	}
	// Выдача упорядочена по дате и времени начала.
	for i, want := range []string{"09:00", "10:00", "11:00"} {
		if bookings[i].StartTime != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, bookings[i].StartTime)
		}
	}
}
