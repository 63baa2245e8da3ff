package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/salonbot/booking-core/internal/model"
)

func TestBookingsCSV(t *testing.T) {
	masterID := uuid.New()
	bookings := []model.Booking{
		{
			ID:          uuid.New(),
			ClientID:    uuid.New(),
			ServiceID:   uuid.New(),
			MasterID:    &masterID,
			Date:        datatypes.Date(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)),
			StartTime:   "10:00",
			ClientName:  "Ivan",
			ClientPhone: "+79991234567",
			Status:      model.BookingStatusPending,
			CreatedAt:   time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.New(),
			ClientID:  uuid.New(),
			ServiceID: uuid.New(),
			// Мастер не выбран: пустая колонка.
			MasterID:  nil,
			Date:      datatypes.Date(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)),
			StartTime: "11:30",
			// Запятая в имени проверяет экранирование.
			ClientName:  "Petrov, Petr",
			ClientPhone: "+79991234568",
			Status:      model.BookingStatusCancelled,
			CreatedAt:   time.Date(2026, time.March, 1, 13, 0, 0, 0, time.UTC),
		},
	}

	out, err := BookingsCSV(bookings)
	if err != nil {
		t.Fatalf("bookings csv: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "id" || records[0][4] != "date" || records[0][9] != "created_at" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[3] != masterID.String() {
		t.Fatalf("expected master id %s, got %s", masterID, first[3])
	}
	if first[4] != "2026-03-02" || first[5] != "10:00" {
		t.Fatalf("unexpected date/time columns: %v", first)
	}
	if first[9] != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected created_at: %s", first[9])
	}

	second := records[2]
	if second[3] != "" {
		t.Fatalf("expected empty master column, got %q", second[3])
	}
	if second[6] != "Petrov, Petr" {
		t.Fatalf("expected quoted name round-trip, got %q", second[6])
	}
	if second[8] != string(model.BookingStatusCancelled) {
		t.Fatalf("expected cancelled status, got %q", second[8])
	}
}

func TestBookingsCSVEmpty(t *testing.T) {
	out, err := BookingsCSV(nil)
	if err != nil {
		t.Fatalf("bookings csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
}
