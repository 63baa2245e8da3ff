package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"gorm.io/datatypes"

	"github.com/salonbot/booking-core/internal/apperr"
	"github.com/salonbot/booking-core/internal/export"
	"github.com/salonbot/booking-core/internal/model"
	"github.com/salonbot/booking-core/internal/repository"
	"github.com/salonbot/booking-core/internal/schedule"
)

func parseID(ps httprouter.Params, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ps.ByName(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("bad " + name)
	}
	return id, nil
}

// ===== Каталог: мастера =====

type masterRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Bio     string `json:"bio"`
	Contact string `json:"contact" validate:"max=255"`
}

func (s *Server) handleListMasters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	masters, err := s.catalog.ListMasters(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, masters)
}

func (s *Server) handleGetMaster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	m, err := s.catalog.GetMaster(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCreateMaster(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req masterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	m, err := s.catalog.CreateMaster(r.Context(), req.Name, req.Bio, req.Contact)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMaster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req masterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	m, err := s.catalog.UpdateMaster(r.Context(), id, req.Name, req.Bio, req.Contact)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMaster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.catalog.DeleteMaster(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Каталог: услуги =====

type serviceRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=1,lte=1440"`
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := s.catalog.ListServices(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	svc, err := s.catalog.GetService(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	svc, err := s.catalog.CreateService(r.Context(), req.Name, req.Description, req.Price, req.DurationMinutes)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req serviceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	svc, err := s.catalog.UpdateService(r.Context(), id, req.Name, req.Description, req.Price, req.DurationMinutes)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.catalog.DeleteService(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Расписание =====

type weeklyRuleRequest struct {
	Weekday         int    `json:"weekday" validate:"gte=0,lte=6"`
	Start           string `json:"start" validate:"required"`
	End             string `json:"end" validate:"required"`
	IntervalMinutes int    `json:"interval_minutes" validate:"gte=0"`
}

func (s *Server) handleSetWeeklyRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req weeklyRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	rule, err := s.schedule.SetWeeklyRule(r.Context(), id, req.Weekday, req.Start, req.End, req.IntervalMinutes)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleGetWeeklyRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	weekday, err := strconv.Atoi(ps.ByName("weekday"))
	if err != nil {
		s.writeErr(w, apperr.Validation("bad weekday"))
		return
	}
	rule, err := s.schedule.GetWeeklyRule(r.Context(), id, weekday)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if rule == nil {
		s.writeErr(w, apperr.NotFound("weekly rule"))
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

type exceptionRequest struct {
	Date      string  `json:"date" validate:"required"`
	Available bool    `json:"available"`
	Start     *string `json:"start"`
	End       *string `json:"end"`
	Note      string  `json:"note"`
}

func (s *Server) handleSetException(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req exceptionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	exc, err := s.schedule.SetException(r.Context(), id, req.Date, req.Available, req.Start, req.End, req.Note)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exc)
}

func (s *Server) handleListExceptions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	excs, err := s.schedule.ListExceptions(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, excs)
}

// handleAvailableSlots отдаёт свободные старты на дату. Длительность берётся
// из услуги (?service_id=) либо явно (?duration=). Пагинация опциональна.
func (s *Server) handleAvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	q := r.URL.Query()

	date := q.Get("date")
	if date == "" {
		s.writeErr(w, apperr.Validation("date query parameter is required"))
		return
	}

	var duration int
	switch {
	case q.Get("service_id") != "":
		serviceID, err := uuid.Parse(q.Get("service_id"))
		if err != nil {
			s.writeErr(w, apperr.Validation("bad service_id"))
			return
		}
		svc, err := s.catalog.GetService(r.Context(), serviceID)
		if err != nil {
			s.writeErr(w, err)
			return
		}
		duration = svc.DurationMinutes
	case q.Get("duration") != "":
		duration, err = strconv.Atoi(q.Get("duration"))
		if err != nil {
			s.writeErr(w, apperr.Validation("bad duration"))
			return
		}
	default:
		s.writeErr(w, apperr.Validation("service_id or duration query parameter is required"))
		return
	}

	slots, err := s.schedule.AvailableSlots(r.Context(), id, date, duration)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page > 0 || pageSize > 0 {
		p := schedule.Paginate(slots, page, pageSize)
		writeJSON(w, http.StatusOK, map[string]any{
			"slots":     p.Items,
			"page":      p.Page,
			"page_size": p.PageSize,
			"has_next":  p.HasNext,
			"has_prev":  p.HasPrev,
			"total":     p.Total,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// ===== Клиенты и записи =====

type clientRequest struct {
	TelegramID int64  `json:"telegram_id" validate:"gt=0"`
	Name       string `json:"name" validate:"max=255"`
	Phone      string `json:"phone" validate:"max=32"`
}

func (s *Server) handleGetOrCreateClient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	c, err := s.identity.GetOrCreateClient(r.Context(), req.TelegramID, req.Name, req.Phone)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type bookingRequest struct {
	ClientID  uuid.UUID  `json:"client_id" validate:"required"`
	ServiceID uuid.UUID  `json:"service_id" validate:"required"`
	MasterID  *uuid.UUID `json:"master_id"` // nil — «без выбора мастера»
	Date      string     `json:"date" validate:"required"`
	Time      string     `json:"time" validate:"required"`
	Name      string     `json:"name" validate:"required,max=255"`
	Phone     string     `json:"phone" validate:"required,max=32"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	id, err := s.bookings.Create(r.Context(), req.ClientID, req.ServiceID, req.MasterID, req.Date, req.Time, req.Name, req.Phone)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"booking_id": id.String()})
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	f, err := bookingFilterFromQuery(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	bookings, total, err := s.bookings.List(r.Context(), f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "total": total})
}

func bookingFilterFromQuery(r *http.Request) (repository.BookingFilter, error) {
	var f repository.BookingFilter
	q := r.URL.Query()

	if v := q.Get("master_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, apperr.Validation("bad master_id")
		}
		f.MasterID = &id
	}
	if v := q.Get("date"); v != "" {
		day, err := schedule.ParseDate(v)
		if err != nil {
			return f, apperr.Validation(err.Error())
		}
		d := datatypes.Date(day)
		f.Date = &d
	}
	if v := q.Get("status"); v != "" {
		st := model.BookingStatus(v)
		if !model.ValidBookingStatus(st) {
			return f, apperr.Validation("unknown booking status")
		}
		f.Status = &st
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	return f, nil
}

type bookingStatusRequest struct {
	Status model.BookingStatus `json:"status" validate:"required"`
}

func (s *Server) handleSetBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseID(ps, "id")
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req bookingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeErr(w, apperr.Validation(err.Error()))
		return
	}
	if err := s.bookings.SetStatus(r.Context(), id, req.Status); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, _, err := s.bookings.List(r.Context(), repository.BookingFilter{})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	data, err := export.BookingsCSV(bookings)
	if err != nil {
		s.writeErr(w, apperr.Internal("export bookings", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
