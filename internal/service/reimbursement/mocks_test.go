package reimbursement

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

var (
	_ reimbursementRepo = &reimbursementRepoMock{}
	_ budgetReader      = &budgetReaderMock{}
	_ receiptStore      = &receiptStoreMock{}
	_ receiptDiscarder  = &discarderMock{}
	_ auditLogger       = &auditLoggerMock{}
	_ txManager         = &txManagerMock{}
)

type reimbursementRepoMock struct {
	CreateFunc           func(ctx context.Context, r *domain.Reimbursement) (*domain.Reimbursement, error)
	UpdateFunc           func(ctx context.Context, id int64, params domain.ReimbursementUpdateParams) (*domain.Reimbursement, error)
	SetStatusFunc        func(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	GetByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Reimbursement, error)
	ListFunc             func(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Reimbursement, error)

	mu    sync.Mutex
	calls struct {
		Create []*domain.Reimbursement
		Update []domain.ReimbursementUpdateParams
		Delete []int64
		List   []squirrel.Sqlizer
	}
}

func (m *reimbursementRepoMock) Create(ctx context.Context, r *domain.Reimbursement) (*domain.Reimbursement, error) {
	if m.CreateFunc == nil {
		panic("reimbursementRepoMock.CreateFunc: method is nil but reimbursementRepo.Create was just called")
	}
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, r)
	m.mu.Unlock()
	return m.CreateFunc(ctx, r)
}

func (m *reimbursementRepoMock) Update(ctx context.Context, id int64, params domain.ReimbursementUpdateParams) (*domain.Reimbursement, error) {
	if m.UpdateFunc == nil {
		panic("reimbursementRepoMock.UpdateFunc: method is nil but reimbursementRepo.Update was just called")
	}
	m.mu.Lock()
	m.calls.Update = append(m.calls.Update, params)
	m.mu.Unlock()
	return m.UpdateFunc(ctx, id, params)
}

func (m *reimbursementRepoMock) SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error) {
	if m.SetStatusFunc == nil {
		panic("reimbursementRepoMock.SetStatusFunc: method is nil but reimbursementRepo.SetStatus was just called")
	}
	return m.SetStatusFunc(ctx, id, status, settledAt)
}

func (m *reimbursementRepoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		panic("reimbursementRepoMock.DeleteFunc: method is nil but reimbursementRepo.Delete was just called")
	}
	m.mu.Lock()
	m.calls.Delete = append(m.calls.Delete, id)
	m.mu.Unlock()
	return m.DeleteFunc(ctx, id)
}

func (m *reimbursementRepoMock) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	if m.GetByIDForUpdateFunc == nil {
		panic("reimbursementRepoMock.GetByIDForUpdateFunc: method is nil but reimbursementRepo.GetByIDForUpdate was just called")
	}
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *reimbursementRepoMock) List(ctx context.Context, where squirrel.Sqlizer, withOwner bool) ([]domain.Reimbursement, error) {
	if m.ListFunc == nil {
		panic("reimbursementRepoMock.ListFunc: method is nil but reimbursementRepo.List was just called")
	}
	m.mu.Lock()
	m.calls.List = append(m.calls.List, where)
	m.mu.Unlock()
	return m.ListFunc(ctx, where, withOwner)
}

type budgetReaderMock struct {
	GetByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Budget, error)
}

func (m *budgetReaderMock) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Budget, error) {
	if m.GetByIDForUpdateFunc == nil {
		panic("budgetReaderMock.GetByIDForUpdateFunc: method is nil but budgetReader.GetByIDForUpdate was just called")
	}
	return m.GetByIDForUpdateFunc(ctx, id)
}

type receiptStoreMock struct {
	SaveFunc func(ctx context.Context, r io.Reader, contentType string) (string, error)

	mu    sync.Mutex
	saved []string
}

func (m *receiptStoreMock) Save(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if m.SaveFunc == nil {
		panic("receiptStoreMock.SaveFunc: method is nil but receiptStore.Save was just called")
	}
	m.mu.Lock()
	m.saved = append(m.saved, contentType)
	m.mu.Unlock()
	return m.SaveFunc(ctx, r, contentType)
}

func (m *receiptStoreMock) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type discarderMock struct {
	mu      sync.Mutex
	handles []string
}

func (m *discarderMock) Discard(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles = append(m.handles, handle)
}

func (m *discarderMock) Discarded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handles
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
