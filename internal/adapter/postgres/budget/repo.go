// Package budget implements the Budget repository using PostgreSQL.
package budget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

const entity = "budget"

var columns = []string{
	"b.id", "b.title", "b.amount", "b.description", "b.status",
	"b.settled_at", "b.user_id", "b.created_at", "b.updated_at",
}

// Repo provides budget persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new budget repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new budget and returns the persisted row.
func (r *Repo) Create(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	insert := postgres.Builder().
		Insert("budgets AS b").
		Columns("title", "amount", "description", "status", "user_id").
		Values(b.Title, b.Amount, b.Description, string(b.Status), b.UserID).
		Suffix("RETURNING " + columnList())

	return r.queryOne(ctx, insert, 0)
}

// Update writes the edited columns and the new status.
func (r *Repo) Update(ctx context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error) {
	update := postgres.Builder().
		Update("budgets AS b").
		Set("status", string(params.Status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"b.id": id}).
		Suffix("RETURNING " + columnList())

	if params.Title != nil {
		update = update.Set("title", *params.Title)
	}
	if params.Amount != nil {
		update = update.Set("amount", *params.Amount)
	}
	if params.Description != nil {
		update = update.Set("description", *params.Description)
	}

	return r.queryOne(ctx, update, id)
}

// SetStatus moves the budget to status. settledAt is written as given,
// so callers clear it by passing nil.
func (r *Repo) SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error) {
	update := postgres.Builder().
		Update("budgets AS b").
		Set("status", string(status)).
		Set("settled_at", settledAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"b.id": id}).
		Suffix("RETURNING " + columnList())

	return r.queryOne(ctx, update, id)
}

// Delete removes the budget. Reimbursements drawn against it keep their
// rows with the link cleared.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	sql, args, err := postgres.Builder().
		Delete("budgets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete budget: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, entity, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a budget by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Budget, error) {
	return r.queryOne(ctx, r.selectByID(id), id)
}

// GetByIDForUpdate returns a budget and locks its row until the surrounding
// transaction ends.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Budget, error) {
	return r.queryOne(ctx, r.selectByID(id).Suffix("FOR UPDATE"), id)
}

// List returns the budgets matching where, newest first. When withOwner is
// set the owner's public identity is joined in.
func (r *Repo) List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error) {
	sel := postgres.Builder().
		Select(columns...).
		From("budgets b").
		Where(where).
		OrderBy("b.created_at DESC", "b.id DESC")
	if withOwner {
		sel = sel.Columns(postgres.OwnerColumns...).LeftJoin(postgres.OwnerJoin("b"))
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list budgets: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		var (
			owner postgres.OwnerRow
			extra []any
		)
		if withOwner {
			extra = owner.Dest()
		}
		b, err := scanBudget(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.User = owner.Identity()
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) selectByID(id int64) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(columns...).
		From("budgets b").
		Where(squirrel.Eq{"b.id": id})
}

func (r *Repo) queryOne(ctx context.Context, q squirrel.Sqlizer, id int64) (*domain.Budget, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build budget query: %w", err)
	}

	b, err := scanBudget(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanBudget scans the columns list followed by extra destinations.
func scanBudget(row scanner, extra ...any) (domain.Budget, error) {
	var (
		b      domain.Budget
		status string
	)
	dest := append([]any{
		&b.ID, &b.Title, &b.Amount, &b.Description, &status,
		&b.SettledAt, &b.UserID, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Budget{}, err
	}
	b.Status = domain.Status(status)
	return b, nil
}

func columnList() string {
	return strings.Join(columns, ", ")
}
