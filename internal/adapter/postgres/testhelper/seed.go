package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with the given role.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.UserRole) domain.User {
	t.Helper()

	suffix := uniqueSuffix()
	u := domain.User{
		Name:         "Test User " + suffix,
		Email:        "testuser-" + suffix + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, string(u.Role),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedUser: %v", err)
	}
	return u
}

// SeedBudget creates a budget owned by userID in the given status.
func SeedBudget(t *testing.T, pool *pgxpool.Pool, userID int64, status domain.Status) domain.Budget {
	t.Helper()

	b := domain.Budget{
		Title:  "Budget " + uniqueSuffix(),
		Amount: decimal.NewFromInt(1000),
		Status: status,
		UserID: &userID,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO budgets (title, amount, status, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		b.Title, b.Amount, string(b.Status), userID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedBudget: %v", err)
	}
	return b
}

// SeedReimbursement creates a direct reimbursement owned by userID in the
// given status.
func SeedReimbursement(t *testing.T, pool *pgxpool.Pool, userID int64, status domain.Status) domain.Reimbursement {
	t.Helper()

	r := domain.Reimbursement{
		Title:         "Claim " + uniqueSuffix(),
		Amount:        decimal.RequireFromString("250.75"),
		Description:   "seeded",
		ReceiptHandle: "uploads/receipt-" + uniqueSuffix() + ".png",
		Status:        status,
		SourceType:    domain.SourceTypeDirect,
		UserID:        &userID,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO reimbursements (title, amount, description, receipt_handle, status, source_type, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		r.Title, r.Amount, r.Description, r.ReceiptHandle, string(r.Status), string(r.SourceType), userID,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedReimbursement: %v", err)
	}
	return r
}
