package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

var (
	_ reimbursementRepo = &reimbursementRepoMock{}
	_ disbursementRepo  = &disbursementRepoMock{}
	_ auditLogger       = &auditLoggerMock{}
	_ txManager         = &txManagerMock{}
)

type setStatusCall struct {
	ID        int64
	Status    domain.Status
	SettledAt *time.Time
}

type reimbursementRepoMock struct {
	GetByIDForUpdateFunc func(ctx context.Context, id int64) (*domain.Reimbursement, error)
	GetByIDsFunc         func(ctx context.Context, ids []int64) (map[int64]domain.Reimbursement, error)
	SetStatusFunc        func(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error)

	mu    sync.Mutex
	calls struct {
		GetByIDs  [][]int64
		SetStatus []setStatusCall
	}
}

func (m *reimbursementRepoMock) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reimbursement, error) {
	if m.GetByIDForUpdateFunc == nil {
		panic("reimbursementRepoMock.GetByIDForUpdateFunc: method is nil but reimbursementRepo.GetByIDForUpdate was just called")
	}
	return m.GetByIDForUpdateFunc(ctx, id)
}

func (m *reimbursementRepoMock) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Reimbursement, error) {
	if m.GetByIDsFunc == nil {
		panic("reimbursementRepoMock.GetByIDsFunc: method is nil but reimbursementRepo.GetByIDs was just called")
	}
	m.mu.Lock()
	m.calls.GetByIDs = append(m.calls.GetByIDs, ids)
	m.mu.Unlock()
	return m.GetByIDsFunc(ctx, ids)
}

func (m *reimbursementRepoMock) SetStatus(ctx context.Context, id int64, status domain.Status, settledAt *time.Time) (*domain.Reimbursement, error) {
	m.mu.Lock()
	m.calls.SetStatus = append(m.calls.SetStatus, setStatusCall{ID: id, Status: status, SettledAt: settledAt})
	m.mu.Unlock()
	if m.SetStatusFunc == nil {
		return &domain.Reimbursement{ID: id, Status: status, SettledAt: settledAt}, nil
	}
	return m.SetStatusFunc(ctx, id, status, settledAt)
}

func (m *reimbursementRepoMock) SetStatusCalls() []setStatusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SetStatus
}

type disbursementRepoMock struct {
	CreateFunc func(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)

	mu    sync.Mutex
	calls []domain.Disbursement
}

func (m *disbursementRepoMock) Create(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *d)
	n := int64(len(m.calls))
	m.mu.Unlock()
	if m.CreateFunc == nil {
		out := *d
		out.ID = 100 + n
		return &out, nil
	}
	return m.CreateFunc(ctx, d)
}

func (m *disbursementRepoMock) CreateCalls() []domain.Disbursement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
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

	mu    sync.Mutex
	count int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	if m.RunInTxFunc == nil {
		return fn(ctx)
	}
	return m.RunInTxFunc(ctx, fn)
}
