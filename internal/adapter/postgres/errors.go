package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// SQLSTATE codes the ledger schema can raise.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
	codeStringTooLong       = "22001"
)

var codeToDomain = map[string]error{
	codeUniqueViolation:     domain.ErrAlreadyExists,
	codeForeignKeyViolation: domain.ErrNotFound,
	codeCheckViolation:      domain.ErrValidation,
	codeNumericOutOfRange:   domain.ErrValidation,
	codeStringTooLong:       domain.ErrValidation,
}

// MapError converts a pgx error on the entity row id into a domain error.
// Context cancellation passes through unmapped; unknown database errors are
// wrapped as they are and end up internal.
func MapError(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}
	wrap := func(target error) error {
		return fmt.Errorf("%s %d: %w", entity, id, target)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return wrap(err)
	case errors.Is(err, pgx.ErrNoRows):
		return wrap(domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if target, ok := codeToDomain[pgErr.Code]; ok {
			return wrap(target)
		}
	}
	return wrap(err)
}
