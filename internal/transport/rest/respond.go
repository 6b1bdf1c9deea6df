package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type errorResponse struct {
	Class   domain.ErrorClass `json:"class"`
	Message string            `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// statusOf maps an error class to its HTTP status.
func statusOf(class domain.ErrorClass) int {
	switch class {
	case domain.ClassValidation, domain.ClassTooManyIDs:
		return http.StatusBadRequest
	case domain.ClassUnauthorized:
		return http.StatusUnauthorized
	case domain.ClassForbidden:
		return http.StatusForbidden
	case domain.ClassNotFound:
		return http.StatusNotFound
	case domain.ClassConflict:
		return http.StatusConflict
	case domain.ClassStateInvalid:
		return http.StatusUnprocessableEntity
	case domain.ClassRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError responds with the class and public message of err. Internal
// errors are logged with their detail, which never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	class := domain.ClassOf(err)
	if class == domain.ClassInternal {
		log.ErrorContext(r.Context(), "internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, statusOf(class), errorResponse{
		Class:   class,
		Message: domain.PublicMessage(err),
	})
}
