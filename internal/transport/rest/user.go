package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type userService interface {
	List(ctx context.Context, role string) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateMe(ctx context.Context, name *string) (*domain.User, error)
}

// UserHandler serves the user directory and the caller's profile.
type UserHandler struct {
	svc     userService
	present *Presenter
	log     *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc userService, present *Presenter, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, present: present, log: logger.With("handler", "user")}
}

type profileRequest struct {
	Name *string `json:"name"`
}

// List handles GET /api/users, optionally filtered by ?role=.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("role"))
}

// ListByRole handles GET /api/users/role/{role}.
func (h *UserHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.PathValue("role"))
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request, role string) {
	users, err := h.svc.List(r.Context(), role)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present.profiles(users))
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present.profile(u))
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present.profile(u))
}

// UpdateMe handles PATCH /api/users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	u, err := h.svc.UpdateMe(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Profile updated", Result: h.present.profile(u)})
}
