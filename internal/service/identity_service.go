package service

import (
	"context"
	"strings"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/repository"
)

// IdentityService заводит клиентов лениво по идентификатору чат-платформы.
type IdentityService struct {
	clients repository.ClientRepository
	log     *logger.Logger
}

func NewIdentityService(clients repository.ClientRepository, log *logger.Logger) *IdentityService {
	return &IdentityService{clients: clients, log: log}
}

// GetOrCreateClient идемпотентен по telegramID: существующий клиент
// возвращается как есть, непустые name/phone перезаписывают сохранённые.
func (s *IdentityService) GetOrCreateClient(ctx context.Context, telegramID int64, name, phone string) (*model.Client, error) {
	if telegramID <= 0 {
		return nil, apperr.Validation("telegram_id is required")
	}
	if p := strings.TrimSpace(phone); p != "" && !phoneRe.MatchString(p) {
		return nil, apperr.Validation("phone must match +79991234567 format")
	}

	c, err := s.clients.GetOrCreate(ctx, telegramID, name, phone)
	if err != nil {
		return nil, apperr.Internal("get or create client", err)
	}
	return c, nil
}
