package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/pkg/ctxutil"
)

var (
	member  = domain.Actor{ID: 10, Role: domain.UserRoleMember}
	manager = domain.Actor{ID: 20, Role: domain.UserRoleManager}
	admin   = domain.Actor{ID: 30, Role: domain.UserRoleAdmin}
)

func newTestService(repo *budgetRepoMock, audit *auditLoggerMock) *Service {
	svc := NewService(slog.New(slog.DiscardHandler), repo, audit, &txManagerMock{}, query.NewBuilder(time.UTC, 0))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc
}

func as(actor domain.Actor) context.Context {
	return ctxutil.WithActor(context.Background(), actor)
}

func sp(s string) *string { return &s }

func ownedBudget(id int64, owner int64, status domain.Status) *domain.Budget {
	return &domain.Budget{
		ID:     id,
		Title:  "Team lunch",
		Amount: decimal.RequireFromString("500"),
		Status: status,
		UserID: &owner,
	}
}

func lockReturning(b *domain.Budget) func(context.Context, int64) (*domain.Budget, error) {
	return func(_ context.Context, id int64) (*domain.Budget, error) {
		if b == nil {
			return nil, fmt.Errorf("budget %d: %w", id, domain.ErrNotFound)
		}
		cp := *b
		return &cp, nil
	}
}

func assertRule(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.Error(t, err)
	var re *domain.RuleError
	require.True(t, errors.As(err, &re), "expected RuleError, got %T: %v", err, err)
	assert.ErrorIs(t, err, kind)
	assert.Equal(t, reason, re.Reason)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate_Success(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		CreateFunc: func(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
			out := *b
			out.ID = 1
			return &out, nil
		},
	}
	audit := &auditLoggerMock{}
	svc := newTestService(repo, audit)

	got, err := svc.Create(as(member), CreateInput{
		Title:       sp("  Offsite  "),
		Amount:      sp("1200.50"),
		Description: sp(" venue "),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Offsite", got.Title)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1200.50")))
	assert.Equal(t, "venue", got.Description)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.UserID)
	assert.Equal(t, member.ID, *got.UserID)

	calls := audit.LogCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.AuditActionCreate, calls[0].Action)
	assert.Equal(t, domain.EntityBudget, calls[0].EntityType)
	assert.Equal(t, member.ID, calls[0].ActorID)
}

func TestCreate_ValidationOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   CreateInput
		wantMsg string
	}{
		{"missing title", CreateInput{Amount: sp("abc")}, "Title is required"},
		{"blank title", CreateInput{Title: sp("   "), Amount: sp("abc")}, "Title should not be empty"},
		{"missing amount", CreateInput{Title: sp("x")}, "Amount is required"},
		{"non numeric amount", CreateInput{Title: sp("x"), Amount: sp("abc")}, "Amount should be a number"},
		{"zero amount", CreateInput{Title: sp("x"), Amount: sp("0")}, "Amount should be greater than 0"},
		{"negative amount", CreateInput{Title: sp("x"), Amount: sp("-3")}, "Amount should be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(&budgetRepoMock{}, &auditLoggerMock{})

			_, err := svc.Create(as(member), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantMsg, domain.PublicMessage(err))
		})
	}
}

func TestCreate_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := newTestService(&budgetRepoMock{}, &auditLoggerMock{})

	_, err := svc.Create(context.Background(), CreateInput{Title: sp("x"), Amount: sp("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreate_AuditFailureRollsBack(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		CreateFunc: func(_ context.Context, b *domain.Budget) (*domain.Budget, error) {
			out := *b
			out.ID = 1
			return &out, nil
		},
	}
	audit := &auditLoggerMock{LogFunc: func(context.Context, domain.AuditRecord) error {
		return errors.New("audit down")
	}}
	svc := newTestService(repo, audit)

	_, err := svc.Create(as(member), CreateInput{Title: sp("x"), Amount: sp("1")})
	require.Error(t, err)
	assert.Equal(t, domain.ClassInternal, domain.ClassOf(err))
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestListAll_RequiresPrivilegedRole(t *testing.T) {
	t.Parallel()
	svc := newTestService(&budgetRepoMock{}, &auditLoggerMock{})

	_, err := svc.ListAll(as(member), domain.Filter{})
	assertRule(t, err, domain.ErrForbidden, "Only managers and admins can list all budgets")
}

func TestListAll_LoadsOwners(t *testing.T) {
	t.Parallel()

	var gotOwner bool
	repo := &budgetRepoMock{
		ListFunc: func(_ context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error) {
			gotOwner = withOwner
			sql, _, err := where.ToSql()
			require.NoError(t, err)
			assert.NotContains(t, sql, "user_id")
			return []domain.Budget{*ownedBudget(1, 10, domain.StatusPending)}, nil
		},
	}
	svc := newTestService(repo, &auditLoggerMock{})

	got, err := svc.ListAll(as(manager), domain.Filter{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.True(t, gotOwner)
}

func TestListMine_RestrictsToCaller(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		ListFunc: func(_ context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error) {
			assert.False(t, withOwner)
			sql, args, err := where.ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "b.user_id = ?")
			assert.Contains(t, args, member.ID)
			return nil, nil
		},
	}
	svc := newTestService(repo, &auditLoggerMock{})

	got, err := svc.ListMine(as(member), domain.Filter{Keyword: "lunch"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestList_IDModeWithoutRowsIsNotFound(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		ListFunc: func(context.Context, squirrel.Sqlizer, bool) ([]domain.Budget, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo, &auditLoggerMock{})

	_, err := svc.ListMine(as(member), domain.Filter{IDs: []int64{99}})
	assertRule(t, err, domain.ErrNotFound, "Budget not found")
}

func TestList_InvalidFilterNeverQueries(t *testing.T) {
	t.Parallel()

	ids := make([]int64, 65)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	repo := &budgetRepoMock{}
	svc := newTestService(repo, &auditLoggerMock{})

	_, err := svc.ListAll(as(admin), domain.Filter{IDs: ids})
	assert.ErrorIs(t, err, domain.ErrTooManyIDs)

	_, err = svc.ListMine(as(member), domain.Filter{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, repo.calls.List)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUpdate_NothingToUpdate(t *testing.T) {
	t.Parallel()
	svc := newTestService(&budgetRepoMock{}, &auditLoggerMock{})

	_, err := svc.Update(as(member), UpdateInput{ID: 1})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Nothing to update", domain.PublicMessage(err))
}

func TestUpdate_RejectedReentersPending(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusRejected)),
		UpdateFunc: func(_ context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error) {
			b := ownedBudget(id, member.ID, params.Status)
			b.Title = *params.Title
			return b, nil
		},
	}
	audit := &auditLoggerMock{}
	svc := newTestService(repo, audit)

	got, err := svc.Update(as(member), UpdateInput{ID: 1, Title: sp(" Dinner ")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "Dinner", got.Title)

	require.Len(t, repo.calls.Update, 1)
	assert.Nil(t, repo.calls.Update[0].Amount)
	assert.Equal(t, domain.StatusPending, repo.calls.Update[0].Status)

	calls := audit.LogCalls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Changes, "title")
	assert.Contains(t, calls[0].Changes, "status")
	assert.NotContains(t, calls[0].Changes, "amount")
}

func TestUpdate_PermissionDenials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		actor   domain.Actor
		status  domain.Status
		kind    error
		reason  string
		ownerID int64
	}{
		{"owner approved", member, domain.StatusApproved, domain.ErrStateInvalid, "Cannot edit approved budget", member.ID},
		{"owner settled", member, domain.StatusSettled, domain.ErrStateInvalid, "Cannot edit settled budget", member.ID},
		{"manager settled", manager, domain.StatusSettled, domain.ErrStateInvalid, "Cannot edit settled budget", member.ID},
		{"admin settled", admin, domain.StatusSettled, domain.ErrStateInvalid, "Cannot edit settled budget", member.ID},
		{"other member", domain.Actor{ID: 99, Role: domain.UserRoleMember}, domain.StatusPending, domain.ErrForbidden, "Unauthorized to edit this budget", member.ID},
		{"manager owning approved", manager, domain.StatusApproved, domain.ErrStateInvalid, "Cannot edit approved budget", manager.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &budgetRepoMock{GetByIDForUpdateFunc: lockReturning(ownedBudget(1, tt.ownerID, tt.status))}
			svc := newTestService(repo, &auditLoggerMock{})

			_, err := svc.Update(as(tt.actor), UpdateInput{ID: 1, Amount: sp("10")})
			assertRule(t, err, tt.kind, tt.reason)
			assert.Empty(t, repo.calls.Update)
		})
	}
}

func TestUpdate_ManagerEditsApprovedBudget(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusApproved)),
		UpdateFunc: func(_ context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error) {
			b := ownedBudget(id, member.ID, params.Status)
			b.Amount = *params.Amount
			return b, nil
		},
	}
	svc := newTestService(repo, &auditLoggerMock{})

	got, err := svc.Update(as(manager), UpdateInput{ID: 1, Amount: sp("42")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(42)))
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()
	repo := &budgetRepoMock{GetByIDForUpdateFunc: lockReturning(nil)}
	svc := newTestService(repo, &auditLoggerMock{})

	_, err := svc.Update(as(member), UpdateInput{ID: 5, Title: sp("x")})
	assertRule(t, err, domain.ErrNotFound, "Budget not found")
}

// ---------------------------------------------------------------------------
// Verify
// ---------------------------------------------------------------------------

func TestVerify_InvalidTarget(t *testing.T) {
	t.Parallel()
	svc := newTestService(&budgetRepoMock{}, &auditLoggerMock{})

	_, err := svc.Verify(as(manager), VerifyInput{ID: 1})
	assert.Equal(t, "Status is required", domain.PublicMessage(err))

	_, err = svc.Verify(as(manager), VerifyInput{ID: 1, Status: "settled"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Invalid verify status value", domain.PublicMessage(err))
}

func TestVerify_Decisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		actor  domain.Actor
		status domain.Status
		kind   error
		reason string
	}{
		{"member", member, domain.StatusPending, domain.ErrForbidden, "Only managers and admins can verify budgets"},
		{"already approved", manager, domain.StatusApproved, domain.ErrStateInvalid, "Budget is already approved"},
		{"already settled", admin, domain.StatusSettled, domain.ErrStateInvalid, "Budget is already settled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &budgetRepoMock{GetByIDForUpdateFunc: lockReturning(ownedBudget(1, 77, tt.status))}
			svc := newTestService(repo, &auditLoggerMock{})

			_, err := svc.Verify(as(tt.actor), VerifyInput{ID: 1, Status: "approved"})
			assertRule(t, err, tt.kind, tt.reason)
			assert.Empty(t, repo.calls.SetStatus)
		})
	}
}

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusRejected)),
		SetStatusFunc: func(_ context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error) {
			assert.Nil(t, settledAt)
			return ownedBudget(id, member.ID, status), nil
		},
	}
	audit := &auditLoggerMock{}
	svc := newTestService(repo, audit)

	got, err := svc.Verify(as(manager), VerifyInput{ID: 1, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	require.Len(t, audit.LogCalls(), 1)
	assert.Equal(t, domain.AuditActionVerify, audit.LogCalls()[0].Action)
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete_OwnerApprovedDeniedAdminSettledAllowed(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusApproved)),
		DeleteFunc:           func(context.Context, int64) error { return nil },
	}
	svc := newTestService(repo, &auditLoggerMock{})

	err := svc.Delete(as(member), 1)
	assertRule(t, err, domain.ErrStateInvalid, "Cannot delete approved budget")

	repo.GetByIDForUpdateFunc = lockReturning(ownedBudget(1, member.ID, domain.StatusSettled))
	require.NoError(t, svc.Delete(as(admin), 1))
	assert.Equal(t, []int64{1}, repo.calls.Delete)
}

func TestDelete_PrivilegedNonOwnerUnsettled(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusPending))}
	svc := newTestService(repo, &auditLoggerMock{})

	err := svc.Delete(as(manager), 1)
	assertRule(t, err, domain.ErrStateInvalid, "Cannot delete unsettled budget")
}

func TestDelete_OrphanedRecordOnlyPrivilegedWhenSettled(t *testing.T) {
	t.Parallel()

	orphan := &domain.Budget{ID: 3, Status: domain.StatusSettled}
	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(orphan),
		DeleteFunc:           func(context.Context, int64) error { return nil },
	}
	svc := newTestService(repo, &auditLoggerMock{})

	err := svc.Delete(as(member), 3)
	assertRule(t, err, domain.ErrForbidden, "Unauthorized to delete this budget")

	require.NoError(t, svc.Delete(as(manager), 3))
}

// ---------------------------------------------------------------------------
// Settle
// ---------------------------------------------------------------------------

func TestSettle_Success(t *testing.T) {
	t.Parallel()

	repo := &budgetRepoMock{
		GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, domain.StatusApproved)),
		SetStatusFunc: func(_ context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error) {
			require.NotNil(t, settledAt)
			b := ownedBudget(id, member.ID, status)
			b.SettledAt = settledAt
			return b, nil
		},
	}
	svc := newTestService(repo, &auditLoggerMock{})

	got, err := svc.Settle(as(admin), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSettled, got.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), *got.SettledAt)
}

func TestSettle_Denials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		actor  domain.Actor
		status domain.Status
		kind   error
		reason string
	}{
		{"not approved", manager, domain.StatusPending, domain.ErrStateInvalid, "Budget is not approved yet"},
		{"rejected", manager, domain.StatusRejected, domain.ErrStateInvalid, "Budget is not approved yet"},
		{"already settled", admin, domain.StatusSettled, domain.ErrStateInvalid, "Budget is already settled"},
		{"owner member", member, domain.StatusApproved, domain.ErrForbidden, "Only managers and admins can settle budgets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := &budgetRepoMock{GetByIDForUpdateFunc: lockReturning(ownedBudget(1, member.ID, tt.status))}
			svc := newTestService(repo, &auditLoggerMock{})

			_, err := svc.Settle(as(tt.actor), 1)
			assertRule(t, err, tt.kind, tt.reason)
		})
	}
}
