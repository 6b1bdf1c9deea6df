// Package reimbursement implements the Reimbursement repository using PostgreSQL.
package reimbursement

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

const entity = "reimbursement"

var columns = []string{
	"r.id", "r.title", "r.amount", "r.description", "r.receipt_handle", "r.status",
	"r.settled_at", "r.source_type", "r.budget_id", "r.user_id", "r.created_at", "r.updated_at",
}

// Repo provides reimbursement persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new reimbursement repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new reimbursement and returns the persisted row.
func (r *Repo) Create(ctx context.Context, rb *domain.Reimbursement) (*domain.Reimbursement, error) {
	insert := postgres.Builder().
		Insert("reimbursements AS r").
		Columns("title", "amount", "description", "receipt_handle", "status", "source_type", "budget_id", "user_id").
		Values(rb.Title, rb.Amount, rb.Description, rb.ReceiptHandle, string(rb.Status),
			string(rb.SourceType), rb.BudgetID, rb.UserID).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	return r.queryOne(ctx, insert, 0)
}

// Update writes the edited columns and the new status.
func (r *Repo) Update(ctx context.Context, id int64, params domain.ReimbursementUpdateParams) (*domain.Reimbursement, error) {
	update := postgres.Builder().
		Update("reimbursements AS r").
		Set("status", string(params.Status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"r.id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	if params.Title != nil {
		update = update.Set("title", *params.Title)
	}
	if params.Amount != nil {
		update = update.Set("amount", *params.Amount)
	}
	if params.Description != nil {
		update = update.Set("description", *params.Description)
	}
	if params.ReceiptHandle != nil {
		update = update.Set("receipt_handle", *params.ReceiptHandle)
	}

	return r.queryOne(ctx, update, id)
}

// SetStatus moves the reimbursement to status and writes settledAt as given.
func (r *Repo) SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error) {
	update := postgres.Builder().
		Update("reimbursements AS r").
		Set("status", string(status)).
		Set("settled_at", settledAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"r.id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	return r.queryOne(ctx, update, id)
}

// Delete removes the reimbursement together with its disbursement, if any.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	sql, args, err := postgres.Builder().
		Delete("reimbursements").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete reimbursement: %w", err)
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

// GetByID returns a reimbursement by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	return r.queryOne(ctx, selectByID(id), id)
}

// GetByIDForUpdate returns a reimbursement and locks its row until the
// surrounding transaction ends. Concurrent settlements of the same id queue
// on this lock and observe the status written by the winner.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	return r.queryOne(ctx, selectByID(id).Suffix("FOR UPDATE"), id)
}

// GetByIDs returns the reimbursements with the given ids keyed by id.
// Missing ids are absent from the map.
func (r *Repo) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Reimbursement, error) {
	result := make(map[int64]domain.Reimbursement, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	list, err := r.List(ctx, squirrel.Eq{"r.id": ids}, false)
	if err != nil {
		return nil, err
	}
	for _, rb := range list {
		result[rb.ID] = rb
	}
	return result, nil
}

// List returns the reimbursements matching where, newest first. When
// withOwner is set the owner's public identity is joined in.
func (r *Repo) List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Reimbursement, error) {
	sel := postgres.Builder().
		Select(columns...).
		From("reimbursements r").
		Where(where).
		OrderBy("r.created_at DESC", "r.id DESC")
	if withOwner {
		sel = sel.Columns(postgres.OwnerColumns...).LeftJoin(postgres.OwnerJoin("r"))
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reimbursements: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list reimbursements: %w", err)
	}
	defer rows.Close()

	var list []domain.Reimbursement
	for rows.Next() {
		var (
			owner postgres.OwnerRow
			extra []any
		)
		if withOwner {
			extra = owner.Dest()
		}
		rb, err := scanReimbursement(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("scan reimbursement: %w", err)
		}
		rb.User = owner.Identity()
		list = append(list, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reimbursements: %w", err)
	}
	return list, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func selectByID(id int64) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(columns...).
		From("reimbursements r").
		Where(squirrel.Eq{"r.id": id})
}

func (r *Repo) queryOne(ctx context.Context, q squirrel.Sqlizer, id int64) (*domain.Reimbursement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reimbursement query: %w", err)
	}

	rb, err := scanReimbursement(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &rb, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReimbursement(row scanner, extra ...any) (domain.Reimbursement, error) {
	var (
		rb         domain.Reimbursement
		status     string
		sourceType string
	)
	dest := append([]any{
		&rb.ID, &rb.Title, &rb.Amount, &rb.Description, &rb.ReceiptHandle, &status,
		&rb.SettledAt, &sourceType, &rb.BudgetID, &rb.UserID, &rb.CreatedAt, &rb.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Reimbursement{}, err
	}
	rb.Status = domain.Status(status)
	rb.SourceType = domain.SourceType(sourceType)
	return rb, nil
}
