package rest

import (
	"context"
	"io"

	"github.com/heartmarshall/expense-ledger/internal/adapter/report"
	"github.com/heartmarshall/expense-ledger/internal/domain"
	"github.com/heartmarshall/expense-ledger/internal/service/budget"
	"github.com/heartmarshall/expense-ledger/internal/service/reimbursement"
)

var (
	_ budgetService        = &budgetServiceMock{}
	_ reimbursementService = &reimbursementServiceMock{}
	_ settlementService    = &settlementServiceMock{}
	_ disbursementService  = &disbursementServiceMock{}
	_ reportRenderer       = &rendererMock{}
	_ userService          = &userServiceMock{}
	_ historyService       = &historyServiceMock{}
)

type budgetServiceMock struct {
	CreateFunc   func(ctx context.Context, input budget.CreateInput) (*domain.Budget, error)
	ListAllFunc  func(ctx context.Context, f domain.Filter) ([]domain.Budget, error)
	ListMineFunc func(ctx context.Context, f domain.Filter) ([]domain.Budget, error)
	UpdateFunc   func(ctx context.Context, input budget.UpdateInput) (*domain.Budget, error)
	VerifyFunc   func(ctx context.Context, input budget.VerifyInput) (*domain.Budget, error)
	SettleFunc   func(ctx context.Context, id int64) (*domain.Budget, error)
	DeleteFunc   func(ctx context.Context, id int64) error
}

func (m *budgetServiceMock) Create(ctx context.Context, input budget.CreateInput) (*domain.Budget, error) {
	if m.CreateFunc == nil {
		panic("budgetServiceMock.CreateFunc: method is nil but budgetService.Create was just called")
	}
	return m.CreateFunc(ctx, input)
}

func (m *budgetServiceMock) ListAll(ctx context.Context, f domain.Filter) ([]domain.Budget, error) {
	if m.ListAllFunc == nil {
		panic("budgetServiceMock.ListAllFunc: method is nil but budgetService.ListAll was just called")
	}
	return m.ListAllFunc(ctx, f)
}

func (m *budgetServiceMock) ListMine(ctx context.Context, f domain.Filter) ([]domain.Budget, error) {
	if m.ListMineFunc == nil {
		panic("budgetServiceMock.ListMineFunc: method is nil but budgetService.ListMine was just called")
	}
	return m.ListMineFunc(ctx, f)
}

func (m *budgetServiceMock) Update(ctx context.Context, input budget.UpdateInput) (*domain.Budget, error) {
	if m.UpdateFunc == nil {
		panic("budgetServiceMock.UpdateFunc: method is nil but budgetService.Update was just called")
	}
	return m.UpdateFunc(ctx, input)
}

func (m *budgetServiceMock) Verify(ctx context.Context, input budget.VerifyInput) (*domain.Budget, error) {
	if m.VerifyFunc == nil {
		panic("budgetServiceMock.VerifyFunc: method is nil but budgetService.Verify was just called")
	}
	return m.VerifyFunc(ctx, input)
}

func (m *budgetServiceMock) Settle(ctx context.Context, id int64) (*domain.Budget, error) {
	if m.SettleFunc == nil {
		panic("budgetServiceMock.SettleFunc: method is nil but budgetService.Settle was just called")
	}
	return m.SettleFunc(ctx, id)
}

func (m *budgetServiceMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		panic("budgetServiceMock.DeleteFunc: method is nil but budgetService.Delete was just called")
	}
	return m.DeleteFunc(ctx, id)
}

type reimbursementServiceMock struct {
	CreateFunc   func(ctx context.Context, input reimbursement.CreateInput) (*domain.Reimbursement, error)
	ListAllFunc  func(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	ListMineFunc func(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	ExportFunc   func(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error)
	UpdateFunc   func(ctx context.Context, input reimbursement.UpdateInput) (*domain.Reimbursement, error)
	VerifyFunc   func(ctx context.Context, input reimbursement.VerifyInput) (*domain.Reimbursement, error)
	DeleteFunc   func(ctx context.Context, id int64) error
}

func (m *reimbursementServiceMock) Create(ctx context.Context, input reimbursement.CreateInput) (*domain.Reimbursement, error) {
	if m.CreateFunc == nil {
		panic("reimbursementServiceMock.CreateFunc: method is nil but reimbursementService.Create was just called")
	}
	return m.CreateFunc(ctx, input)
}

func (m *reimbursementServiceMock) ListAll(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	if m.ListAllFunc == nil {
		panic("reimbursementServiceMock.ListAllFunc: method is nil but reimbursementService.ListAll was just called")
	}
	return m.ListAllFunc(ctx, f)
}

func (m *reimbursementServiceMock) ListMine(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	if m.ListMineFunc == nil {
		panic("reimbursementServiceMock.ListMineFunc: method is nil but reimbursementService.ListMine was just called")
	}
	return m.ListMineFunc(ctx, f)
}

func (m *reimbursementServiceMock) Export(ctx context.Context, f domain.Filter) ([]domain.Reimbursement, error) {
	if m.ExportFunc == nil {
		panic("reimbursementServiceMock.ExportFunc: method is nil but reimbursementService.Export was just called")
	}
	return m.ExportFunc(ctx, f)
}

func (m *reimbursementServiceMock) Update(ctx context.Context, input reimbursement.UpdateInput) (*domain.Reimbursement, error) {
	if m.UpdateFunc == nil {
		panic("reimbursementServiceMock.UpdateFunc: method is nil but reimbursementService.Update was just called")
	}
	return m.UpdateFunc(ctx, input)
}

func (m *reimbursementServiceMock) Verify(ctx context.Context, input reimbursement.VerifyInput) (*domain.Reimbursement, error) {
	if m.VerifyFunc == nil {
		panic("reimbursementServiceMock.VerifyFunc: method is nil but reimbursementService.Verify was just called")
	}
	return m.VerifyFunc(ctx, input)
}

func (m *reimbursementServiceMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		panic("reimbursementServiceMock.DeleteFunc: method is nil but reimbursementService.Delete was just called")
	}
	return m.DeleteFunc(ctx, id)
}

type settlementServiceMock struct {
	SettleOneFunc  func(ctx context.Context, id int64) (*domain.Disbursement, error)
	SettleManyFunc func(ctx context.Context, ids []int64) (*domain.SettleOutcome, error)
}

func (m *settlementServiceMock) SettleOne(ctx context.Context, id int64) (*domain.Disbursement, error) {
	if m.SettleOneFunc == nil {
		panic("settlementServiceMock.SettleOneFunc: method is nil but settlementService.SettleOne was just called")
	}
	return m.SettleOneFunc(ctx, id)
}

func (m *settlementServiceMock) SettleMany(ctx context.Context, ids []int64) (*domain.SettleOutcome, error) {
	if m.SettleManyFunc == nil {
		panic("settlementServiceMock.SettleManyFunc: method is nil but settlementService.SettleMany was just called")
	}
	return m.SettleManyFunc(ctx, ids)
}

type disbursementServiceMock struct {
	ListAllFunc  func(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
	ListMineFunc func(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
	ExportFunc   func(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error)
}

func (m *disbursementServiceMock) ListAll(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	if m.ListAllFunc == nil {
		panic("disbursementServiceMock.ListAllFunc: method is nil but disbursementService.ListAll was just called")
	}
	return m.ListAllFunc(ctx, f)
}

func (m *disbursementServiceMock) ListMine(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	if m.ListMineFunc == nil {
		panic("disbursementServiceMock.ListMineFunc: method is nil but disbursementService.ListMine was just called")
	}
	return m.ListMineFunc(ctx, f)
}

func (m *disbursementServiceMock) Export(ctx context.Context, f domain.Filter) ([]domain.Disbursement, error) {
	if m.ExportFunc == nil {
		panic("disbursementServiceMock.ExportFunc: method is nil but disbursementService.Export was just called")
	}
	return m.ExportFunc(ctx, f)
}

// rendererMock records the sheet it was asked to render.
type rendererMock struct {
	RenderFunc func(w io.Writer, sheet report.Sheet) error
	sheets     []report.Sheet
}

func (m *rendererMock) ContentType() string { return "application/test-sheet" }

func (m *rendererMock) Render(w io.Writer, sheet report.Sheet) error {
	m.sheets = append(m.sheets, sheet)
	if m.RenderFunc == nil {
		_, err := io.WriteString(w, "sheet")
		return err
	}
	return m.RenderFunc(w, sheet)
}

type userServiceMock struct {
	ListFunc     func(ctx context.Context, role string) ([]domain.User, error)
	GetFunc      func(ctx context.Context, id int64) (*domain.User, error)
	MeFunc       func(ctx context.Context) (*domain.User, error)
	UpdateMeFunc func(ctx context.Context, name *string) (*domain.User, error)
}

func (m *userServiceMock) List(ctx context.Context, role string) ([]domain.User, error) {
	if m.ListFunc == nil {
		panic("userServiceMock.ListFunc: method is nil but userService.List was just called")
	}
	return m.ListFunc(ctx, role)
}

func (m *userServiceMock) Get(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetFunc == nil {
		panic("userServiceMock.GetFunc: method is nil but userService.Get was just called")
	}
	return m.GetFunc(ctx, id)
}

func (m *userServiceMock) Me(ctx context.Context) (*domain.User, error) {
	if m.MeFunc == nil {
		panic("userServiceMock.MeFunc: method is nil but userService.Me was just called")
	}
	return m.MeFunc(ctx)
}

func (m *userServiceMock) UpdateMe(ctx context.Context, name *string) (*domain.User, error) {
	if m.UpdateMeFunc == nil {
		panic("userServiceMock.UpdateMeFunc: method is nil but userService.UpdateMe was just called")
	}
	return m.UpdateMeFunc(ctx, name)
}

type historyServiceMock struct {
	BudgetFunc        func(ctx context.Context, id int64) ([]domain.AuditRecord, error)
	ReimbursementFunc func(ctx context.Context, id int64) ([]domain.AuditRecord, error)
}

func (m *historyServiceMock) Budget(ctx context.Context, id int64) ([]domain.AuditRecord, error) {
	if m.BudgetFunc == nil {
		panic("historyServiceMock.BudgetFunc: method is nil but historyService.Budget was just called")
	}
	return m.BudgetFunc(ctx, id)
}

func (m *historyServiceMock) Reimbursement(ctx context.Context, id int64) ([]domain.AuditRecord, error) {
	if m.ReimbursementFunc == nil {
		panic("historyServiceMock.ReimbursementFunc: method is nil but historyService.Reimbursement was just called")
	}
	return m.ReimbursementFunc(ctx, id)
}
