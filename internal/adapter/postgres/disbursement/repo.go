// Package disbursement implements the append-only Disbursement repository
// using PostgreSQL.
package disbursement

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	postgres "github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

const entity = "disbursement"

var columns = []string{
	"d.id", "d.title", "d.amount", "d.description", "d.receipt_handle",
	"d.user_id", "d.reimbursement_id", "d.settled_at", "d.created_at", "d.updated_at",
}

// Repo provides disbursement persistence backed by PostgreSQL. Rows are
// never updated; they are removed only by cascade from their reimbursement.
type Repo struct {
	db postgres.Querier
}

// New creates a new disbursement repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a ledger entry. A second entry for the same reimbursement
// fails with domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
	sql, args, err := postgres.Builder().
		Insert("disbursements AS d").
		Columns("title", "amount", "description", "receipt_handle", "user_id", "reimbursement_id", "settled_at").
		Values(d.Title, d.Amount, d.Description, d.ReceiptHandle, d.UserID, d.ReimbursementID, d.SettledAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert disbursement: %w", err)
	}

	created, err := scanDisbursement(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, d.ReimbursementID)
	}
	return &created, nil
}

// List returns the disbursements matching where, most recently settled
// first. When withOwner is set the owner's public identity is joined in.
func (r *Repo) List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Disbursement, error) {
	sel := postgres.Builder().
		Select(columns...).
		From("disbursements d").
		Where(where).
		OrderBy("d.settled_at DESC", "d.id DESC")
	if withOwner {
		sel = sel.Columns(postgres.OwnerColumns...).LeftJoin(postgres.OwnerJoin("d"))
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list disbursements: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list disbursements: %w", err)
	}
	defer rows.Close()

	var list []domain.Disbursement
	for rows.Next() {
		var (
			owner postgres.OwnerRow
			extra []any
		)
		if withOwner {
			extra = owner.Dest()
		}
		d, err := scanDisbursement(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("scan disbursement: %w", err)
		}
		d.User = owner.Identity()
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list disbursements: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDisbursement(row scanner, extra ...any) (domain.Disbursement, error) {
	var d domain.Disbursement
	dest := append([]any{
		&d.ID, &d.Title, &d.Amount, &d.Description, &d.ReceiptHandle,
		&d.UserID, &d.ReimbursementID, &d.SettledAt, &d.CreatedAt, &d.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Disbursement{}, err
	}
	return d, nil
}
