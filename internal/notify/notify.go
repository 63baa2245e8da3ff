package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent — факт о записи, публикуемый для внешних потребителей
// (уведомления админам, отчётность). Доставка — забота потребителя.
type BookingEvent struct {
	Type      string    `json:"type"` // booking_created | booking_status_changed
	BookingID string    `json:"booking_id"`
	ClientID  string    `json:"client_id,omitempty"`
	MasterID  string    `json:"master_id,omitempty"`
	ServiceID string    `json:"service_id,omitempty"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD
	Time      string    `json:"time,omitempty"` // HH:MM
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

// KafkaPublisher пишет события в один топик, ключ — ID записи
// (события одной записи сохраняют порядок внутри партиции).
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher — заглушка для тестов и развёртываний без брокера.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev BookingEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
