package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/salonbot/booking-core/internal/apperr"
)

// admin пропускает запрос только с верным админским токеном.
// Пустой настроенный токен отключает проверку: аутентификацию тогда
// обеспечивает вышестоящее развёртывание (ядру приходит готовый факт
// «вызывающий — администратор»).
func (s *Server) admin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if s.adminToken != "" {
			got := r.Header.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) != 1 {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"code":    "FORBIDDEN",
					"message": "admin access required",
				})
				return
			}
		}
		next(w, r, ps)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr отдаёт типизированный отказ ядра; всё остальное — 500.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		writeJSON(w, ae.HTTPStatus, ae)
		return
	}
	s.log.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    apperr.CodeInternal,
		"message": "internal error",
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("malformed JSON body")
	}
	return nil
}
