package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"iftarmatch/internal/delivery/http/helpers"
	"iftarmatch/internal/domain"
)

// writeDomainError maps service-layer sentinel errors onto the API envelope.
// Anything unmapped is a 500 and gets logged with request context.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrSlotUnavailable):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "the group is already booked or unavailable on this date")
	case errors.Is(err, domain.ErrDuplicateHostBooking):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "you already have a booking on this date")
	case errors.Is(err, domain.ErrConstraintViolation):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidState, "the invitation is not in a state that allows this action")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
