package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/salonbot/booking-core/internal/config"
	"github.com/salonbot/booking-core/internal/logger"
	"github.com/salonbot/booking-core/internal/metrics"
	"github.com/salonbot/booking-core/internal/service"
)

// Server — HTTP-обвязка над ядром бронирования. Диалоговый слой (бот)
// ходит сюда же; сам сервер бизнес-правил не содержит.
type Server struct {
	router   *httprouter.Router
	validate *validator.Validate

	bookings *service.BookingService
	schedule *service.ScheduleService
	catalog  *service.CatalogService
	identity *service.IdentityService

	adminToken string
	log        *logger.Logger
}

func New(
	cfg *config.ServerConfig,
	bookings *service.BookingService,
	schedule *service.ScheduleService,
	catalog *service.CatalogService,
	identity *service.IdentityService,
	log *logger.Logger,
) *Server {
	s := &Server{
		router:     httprouter.New(),
		validate:   validator.New(),
		bookings:   bookings,
		schedule:   schedule,
		catalog:    catalog,
		identity:   identity,
		adminToken: cfg.AdminToken,
		log:        log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.HandlerFunc(http.MethodGet, "/healthz", s.handleHealth)
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// Каталог.
	r.GET("/api/v1/masters", s.handleListMasters)
	r.GET("/api/v1/masters/:id", s.handleGetMaster)
	r.POST("/api/v1/masters", s.admin(s.handleCreateMaster))
	r.PATCH("/api/v1/masters/:id", s.admin(s.handleUpdateMaster))
	r.DELETE("/api/v1/masters/:id", s.admin(s.handleDeleteMaster))

	r.GET("/api/v1/services", s.handleListServices)
	r.GET("/api/v1/services/:id", s.handleGetService)
	r.POST("/api/v1/services", s.admin(s.handleCreateService))
	r.PATCH("/api/v1/services/:id", s.admin(s.handleUpdateService))
	r.DELETE("/api/v1/services/:id", s.admin(s.handleDeleteService))

	// Расписание и слоты.
	r.PUT("/api/v1/masters/:id/schedule", s.admin(s.handleSetWeeklyRule))
	r.GET("/api/v1/masters/:id/schedule/:weekday", s.handleGetWeeklyRule)
	r.PUT("/api/v1/masters/:id/exceptions", s.admin(s.handleSetException))
	r.GET("/api/v1/masters/:id/exceptions", s.handleListExceptions)
	r.GET("/api/v1/masters/:id/slots", s.handleAvailableSlots)

	// Клиенты и записи.
	r.POST("/api/v1/clients", s.handleGetOrCreateClient)
	r.POST("/api/v1/bookings", s.handleCreateBooking)
	r.GET("/api/v1/bookings", s.admin(s.handleListBookings))
	r.PATCH("/api/v1/bookings/:id/status", s.admin(s.handleSetBookingStatus))
	r.GET("/api/v1/export/bookings", s.admin(s.handleExportBookings))
}

// Handler возвращает корневой обработчик с метриками.
func (s *Server) Handler() http.Handler {
	return metrics.Middleware(s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
