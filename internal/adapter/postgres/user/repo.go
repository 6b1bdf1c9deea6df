// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

var columns = []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new user repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.queryOne(ctx, postgres.Builder().
		Select(columns...).
		From("users").
		Where(squirrel.Eq{"id": id}), id)
}

// GetByEmail returns a user by email address.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryOne(ctx, postgres.Builder().
		Select(columns...).
		From("users").
		Where(squirrel.Eq{"email": email}), 0)
}

// List returns users ordered by id. A non-nil role restricts the result to
// that role.
func (r *Repo) List(ctx context.Context, role *domain.UserRole) ([]domain.User, error) {
	sel := postgres.Builder().
		Select(columns...).
		From("users").
		OrderBy("id")
	if role != nil {
		sel = sel.Where(squirrel.Eq{"role": string(*role)})
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateName renames the user and returns the updated row.
func (r *Repo) UpdateName(ctx context.Context, id int64, name string) (*domain.User, error) {
	return r.queryOne(ctx, postgres.Builder().
		Update("users").
		Set("name", name).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, email, password_hash, role, created_at, updated_at"), id)
}

// Create inserts a new user and returns the persisted domain.User.
// A duplicate email fails with domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.queryOne(ctx, postgres.Builder().
		Insert("users").
		Columns("name", "email", "password_hash", "role").
		Values(u.Name, u.Email, u.PasswordHash, string(u.Role)).
		Suffix("RETURNING id, name, email, password_hash, role, created_at, updated_at"), 0)
}

// SetRole changes the role of the user with the given email.
func (r *Repo) SetRole(ctx context.Context, email string, role domain.UserRole) (*domain.User, error) {
	return r.queryOne(ctx, postgres.Builder().
		Update("users").
		Set("role", string(role)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"email": email}).
		Suffix("RETURNING id, name, email, password_hash, role, created_at, updated_at"), 0)
}

func (r *Repo) queryOne(ctx context.Context, q squirrel.Sqlizer, id int64) (*domain.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	u, err := scanUser(postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
