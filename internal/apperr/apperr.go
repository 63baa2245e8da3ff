package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Коды ошибок ядра. Бизнес-отказы (занятый слот, повторная запись)
// отличимы от системных сбоев — UI формулирует их по-разному.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeSlotTaken     = "SLOT_TAKEN"
	CodeDoubleBooking = "DOUBLE_BOOKING"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибки по коду через errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

func SlotTaken() *AppError {
	return &AppError{
		Code:       CodeSlotTaken,
		Message:    "slot is already booked",
		HTTPStatus: http.StatusConflict,
	}
}

func DoubleBooking() *AppError {
	return &AppError{
		Code:       CodeDoubleBooking,
		Message:    "client already has an active booking",
		HTTPStatus: http.StatusConflict,
	}
}

func NotFound(entity string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf возвращает код AppError либо CodeInternal для прочих ошибок.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
