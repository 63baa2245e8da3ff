package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/model"
)

func TestScheduleService_SetWeeklyRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rule, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, 0, "09:00", "17:00", 0)
	if err != nil {
		t.Fatalf("set weekly rule: %v", err)
	}
	// Нулевой интервал заменяется платформенным дефолтом.
	if rule.IntervalMinutes != 30 {
		t.Fatalf("expected default interval 30, got %d", rule.IntervalMinutes)
	}

	got, err := f.schedules.GetWeeklyRule(ctx, f.master.ID, 0)
	if err != nil {
		t.Fatalf("get weekly rule: %v", err)
	}
	if got == nil || got.StartTime != "09:00" || got.EndTime != "17:00" {
		t.Fatalf("unexpected rule: %+v", got)
	}
}

func TestScheduleService_SetWeeklyRuleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		weekday    int
		start, end string
	}{
		{"weekday below range", -1, "09:00", "17:00"},
		{"weekday above range", 7, "09:00", "17:00"},
		{"bad start", 0, "9:00", "17:00"},
		{"bad end", 0, "09:00", "25:00"},
		{"inverted window", 0, "17:00", "09:00"},
		{"empty window", 0, "09:00", "09:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, tt.weekday, tt.start, tt.end, 30)
			if apperr.CodeOf(err) != apperr.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}

	_, err := f.schedules.SetWeeklyRule(ctx, uuid.New(), 0, "09:00", "17:00", 30)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown master, got %v", err)
	}
}

func TestScheduleService_SetExceptionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start, end := "12:00", "15:00"

	if _, err := f.schedules.SetException(ctx, f.master.ID, "02.03.2026", false, nil, nil, ""); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for bad date, got %v", err)
	}
	// Особые часы задаются только парой.
	if _, err := f.schedules.SetException(ctx, f.master.ID, testDate, true, &start, nil, ""); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for lone start, got %v", err)
	}
	if _, err := f.schedules.SetException(ctx, f.master.ID, testDate, true, &end, &start, ""); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for inverted window, got %v", err)
	}
	if _, err := f.schedules.SetException(ctx, uuid.New(), testDate, false, nil, nil, ""); apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unknown master, got %v", err)
	}
}

func TestScheduleService_AvailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, 0, "09:00", "11:00", 30); err != nil {
		t.Fatalf("set weekly rule: %v", err)
	}

	slots, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
}

func TestScheduleService_AvailableSlotsExcludesBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, 0, "09:00", "11:00", 30); err != nil {
		t.Fatalf("set weekly rule: %v", err)
	}

	client := f.newClient(t, 3001)
	if _, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "09:30", "Ivan", "+79991234567"); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	slots, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []string{"09:00", "10:00", "10:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected booked slot removed, want %v, got %v", want, slots)
	}
}

func TestScheduleService_AvailableSlotsCancelledNotExcluded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, 0, "09:00", "11:00", 30); err != nil {
		t.Fatalf("set weekly rule: %v", err)
	}

	client := f.newClient(t, 3002)
	id, err := f.bookings.Create(ctx,
		client.ID, f.service.ID, &f.master.ID,
		testDate, "09:30", "Ivan", "+79991234567")
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := f.bookings.SetStatus(ctx, id, model.BookingStatusCancelled); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	slots, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []string{"09:00", "09:30", "10:00", "10:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected cancelled slot back, want %v, got %v", want, slots)
	}
}

func TestScheduleService_AvailableSlotsException(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.schedules.SetWeeklyRule(ctx, f.master.ID, 0, "09:00", "17:00", 30); err != nil {
		t.Fatalf("set weekly rule: %v", err)
	}

	// Выходной: слотов нет.
	if _, err := f.schedules.SetException(ctx, f.master.ID, testDate, false, nil, nil, "отпуск"); err != nil {
		t.Fatalf("set exception: %v", err)
	}
	slots, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on day off, got %v", slots)
	}

	// Особые часы перекрывают недельное окно.
	start, end := "12:00", "13:30"
	if _, err := f.schedules.SetException(ctx, f.master.ID, testDate, true, &start, &end, ""); err != nil {
		t.Fatalf("set exception: %v", err)
	}
	slots, err = f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	want := []string{"12:00", "12:30", "13:00"}
	if !reflect.DeepEqual(slots, want) {
		t.Fatalf("expected override window slots %v, got %v", want, slots)
	}
}

func TestScheduleService_AvailableSlotsNoRule(t *testing.T) {
	f := newFixture(t)

	slots, err := f.schedules.AvailableSlots(context.Background(), f.master.ID, testDate, 30)
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots without a rule, got %v", slots)
	}
}

func TestScheduleService_AvailableSlotsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.schedules.AvailableSlots(ctx, f.master.ID, "bad-date", 30); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for bad date, got %v", err)
	}
	if _, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 0); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for zero duration, got %v", err)
	}
	if _, err := f.schedules.AvailableSlots(ctx, f.master.ID, testDate, 100000); apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for huge duration, got %v", err)
	}
}
