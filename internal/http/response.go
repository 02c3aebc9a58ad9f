package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fitness-directory/backend/internal/apperr"
)

type APIError struct {
	Message   string   `json:"message"`
	Fields    []string `json:"fields,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, APIError{Message: msg})
}

// FailErr writes err with the status its kind maps to.
func FailErr(w http.ResponseWriter, log *zap.Logger, err error) {
	status, body := mapError(err)
	if status >= 500 {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	WriteJSON(w, status, body)
}

func mapError(err error) (int, APIError) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, APIError{Message: apperr.ErrValidation.Error(), Fields: apperr.Fields(err)}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, APIError{Message: err.Error(), Retryable: apperr.Retryable(err)}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, APIError{Message: err.Error()}
	case errors.Is(err, apperr.ErrBadRequest):
		return http.StatusBadRequest, APIError{Message: err.Error()}
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden, APIError{Message: err.Error()}
	default:
		return http.StatusInternalServerError, APIError{Message: "internal error"}
	}
}
