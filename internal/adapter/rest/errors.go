package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status and a message safe to
// show the caller.
func statusFor(err error) (int, string) {
	var fe *domain.ForbiddenError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.As(err, &fe):
		return http.StatusForbidden, fe.PublicMessage()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrStorage):
		return http.StatusBadGateway, "image storage is unavailable"
	case errors.Is(err, domain.ErrDatabase):
		return http.StatusServiceUnavailable, "listing store is unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// errorKind is the metrics label for a response status.
func errorKind(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return "validation"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadGateway:
		return "storage"
	case http.StatusServiceUnavailable:
		return "database"
	}
	if status >= 500 {
		return "unknown"
	}
	return "ok"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	status, msg := statusFor(err)
	if status >= 500 {
		log.Error(op+": request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Info(op+": request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
