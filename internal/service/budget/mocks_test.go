package budget

import (
	"context"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

var (
	_ budgetRepo  = &budgetRepoMock{}
	_ auditLogger = &auditLoggerMock{}
	_ txManager   = &txManagerMock{}
)

type budgetRepoMock struct {
	CreateFunc           func(ctx context.Context, b *domain.Budget) (*domain.Budget, error)
	UpdateFunc           func(ctx context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error)
	SetStatusFunc        func(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	GetByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Budget, error)
	ListFunc             func(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error)

	mu    sync.Mutex
	calls struct {
		Create    []*domain.Budget
		Update    []domain.BudgetUpdateParams
		SetStatus []domain.Status
		Delete    []int64
		List      []squirrel.Sqlizer
	}
}

func (m *budgetRepoMock) Create(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	if m.CreateFunc == nil {
		panic("budgetRepoMock.CreateFunc: method is nil but budgetRepo.Create was just called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, b)
	m.mu.Unlock()
	return m.CreateFunc(ctx, b)
}

func (m *budgetRepoMock) Update(ctx context.Context, id int64, params domain.BudgetUpdateParams) (*domain.Budget, error) {
	if m.UpdateFunc == nil {
		panic("budgetRepoMock.UpdateFunc: method is nil but budgetRepo.Update was just called")
	}
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, params)
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, params)
}

func (m *budgetRepoMock) SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Budget, error) {
	if m.SetStatusFunc == nil {
		panic("budgetRepoMock.SetStatusFunc: method is nil but budgetRepo.SetStatus was just called")
	}
	m.mu.Lock()
	m.calls.SetStatus = append(m.calls.SetStatus, status)
	m.mu.Unlock()
	return m.SetStatusFunc(ctx, id, status, settledAt)
}

func (m *budgetRepoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		panic("budgetRepoMock.DeleteFunc: method is nil but budgetRepo.Delete was just called")
	}
	m.mu.Lock()
	m.calls.Delete = append(m.calls.Delete, id)
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

func (m *budgetRepoMock) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Budget, error) {
	if m.GetByIDForUpdateFunc == nil {
		panic("budgetRepoMock.GetByIDForUpdateFunc: method is nil but budgetRepo.GetByIDForUpdate was just called")
	}
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *budgetRepoMock) List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Budget, error) {
	if m.ListFunc == nil {
		panic("budgetRepoMock.ListFunc: method is nil but budgetRepo.List was just called")
	}
	m.mu.Lock()
	m.calls.List = append(m.calls.List, where)
	m.mu.Unlock()
	return m.ListFunc(ctx, where, withOwner)
}

type auditLoggerMock struct {
	LogFunc func(ctx context.Context, record domain.AuditRecord) error

	mu    sync.Mutex
	calls []domain.AuditRecord
}

func (m *auditLoggerMock) Log(ctx context.Context, record domain.AuditRecord) error {
	m.mu.Lock()
	m.calls = append(m.calls, record)
	m.mu.Unlock()
	if m.LogFunc == nil {
		return nil
	}
	return m.LogFunc(ctx, record)
}

func (m *auditLoggerMock) LogCalls() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	if m.RunInTxFunc == nil {
		return fn(ctx)
	}
	return m.RunInTxFunc(ctx, fn)
}
