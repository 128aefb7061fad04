package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"agsavn-data/internal/domain"
)

// statusForError maps the domain error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError writes err as a Fail envelope. Internal failures are logged and
// their detail is not echoed to the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	var ite *domain.InvalidTransitionError
	if errors.As(err, &ite) {
		msg = ite.Error()
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, Fail(msg))
}
