package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/salonbot/booking-core/internal/model"
)

var header = []string{
	"id", "client_id", "service_id", "master_id",
	"date", "time", "client_name", "client_phone", "status", "created_at",
}

// BookingsCSV сериализует записи в CSV (заголовок + строки, utf-8).
func BookingsCSV(bookings []model.Booking) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, b := range bookings {
		masterID := ""
		if b.MasterID != nil {
			masterID = b.MasterID.String()
		}
		row := []string{
			b.ID.String(),
			b.ClientID.String(),
			b.ServiceID.String(),
			masterID,
			time.Time(b.Date).Format("2006-01-02"),
			b.StartTime,
			b.ClientName,
			b.ClientPhone,
			string(b.Status),
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
