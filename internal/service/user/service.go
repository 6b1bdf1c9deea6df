// Package user exposes the user directory to reviewers and the caller's own
// profile. Accounts are provisioned by the identity provider and the
// bootstrap commands; this service never creates users or changes roles.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

// MaxNameLength caps a display name in characters.
const MaxNameLength = 100

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, role *domain.UserRole) ([]domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.User, error)
}

// Service reads and updates user accounts.
type Service struct {
	users userRepo
	log   *slog.Logger
}

// NewService creates a new User service.
func NewService(log *slog.Logger, users userRepo) *Service {
	return &Service{users: users, log: log.With("service", "user")}
}

var errUserNotFound = domain.NewRuleError(domain.ErrNotFound, "User not found")

// List returns every user, or only those holding role when it is not empty.
func (s *Service) List(ctx context.Context, role string) ([]domain.User, error) {
	if err := requirePrivileged(ctx); err != nil {
		return nil, err
	}

	var filter *domain.UserRole
	if role != "" {
		r := domain.UserRole(role)
		if !r.IsValid() {
			return nil, domain.NewValidationError("role", "Invalid role")
		}
		filter = &r
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	if err := requirePrivileged(ctx); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Me returns the caller's profile.
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.get(ctx, userID)
}

// UpdateMe renames the caller. An absent or blank name keeps the current one.
func (s *Service) UpdateMe(ctx context.Context, name *string) (*domain.User, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if name == nil || strings.TrimSpace(*name) == "" {
		return s.get(ctx, userID)
	}
	trimmed := strings.TrimSpace(*name)
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return nil, domain.NewValidationError("name", fmt.Sprintf("Name should be at most %d characters", MaxNameLength))
	}

	updated, err := s.users.UpdateName(ctx, userID, trimmed)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("update user name: %w", err)
	}

	s.log.InfoContext(ctx, "profile updated", slog.Int64("user_id", userID))
	return updated, nil
}

func (s *Service) get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func requirePrivileged(ctx context.Context) error {
	actor, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if !actor.Role.IsPrivileged() {
		return domain.NewRuleError(domain.ErrForbidden, "Only managers and admins can browse users")
	}
	return nil
}
