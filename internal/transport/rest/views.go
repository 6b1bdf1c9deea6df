package rest

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/heartmarshall/expense-ledger/internal/adapter/storage"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

const timeLayout = time.DateTime

// Presenter renders domain records as JSON views. Timestamps are shown in
// the reporting timezone and receipt handles as public URLs.
type Presenter struct {
	loc     *time.Location
	baseURL string
}

// NewPresenter creates a Presenter. A nil loc means UTC.
func NewPresenter(loc *time.Location, publicBaseURL string) *Presenter {
	if loc == nil {
		loc = time.UTC
	}
	return &Presenter{loc: loc, baseURL: publicBaseURL}
}

func (p *Presenter) time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(p.loc).Format(timeLayout)
}

func (p *Presenter) timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := p.time(*t)
	return &s
}

func (p *Presenter) receiptURL(handle string) *string {
	if handle == "" {
		return nil
	}
	u := storage.URL(p.baseURL, handle)
	return &u
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.AmountScale))
}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserView(u *domain.UserIdentity) *userView {
	if u == nil {
		return nil
	}
	return &userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

type budgetView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	SettledAt   *string     `json:"settledAt"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
	User        *userView   `json:"user,omitempty"`
}

func (p *Presenter) budget(b *domain.Budget) budgetView {
	return budgetView{
		ID:          b.ID,
		Title:       b.Title,
		Amount:      amount(b.Amount),
		Description: b.Description,
		Status:      b.Status.String(),
		SettledAt:   p.timePtr(b.SettledAt),
		CreatedAt:   p.time(b.CreatedAt),
		UpdatedAt:   p.time(b.UpdatedAt),
		User:        toUserView(b.User),
	}
}

func (p *Presenter) budgets(bs []domain.Budget) []budgetView {
	out := make([]budgetView, len(bs))
	for i := range bs {
		out[i] = p.budget(&bs[i])
	}
	return out
}

type reimbursementView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	SourceType  string      `json:"sourceType"`
	BudgetID    *int64      `json:"budgetId"`
	ReceiptURL  *string     `json:"receiptUrl"`
	SettledAt   *string     `json:"settledAt"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
	User        *userView   `json:"user,omitempty"`
}

func (p *Presenter) reimbursement(r *domain.Reimbursement) reimbursementView {
	return reimbursementView{
		ID:          r.ID,
		Title:       r.Title,
		Amount:      amount(r.Amount),
		Description: r.Description,
		Status:      r.Status.String(),
		SourceType:  r.SourceType.String(),
		BudgetID:    r.BudgetID,
		ReceiptURL:  p.receiptURL(r.ReceiptHandle),
		SettledAt:   p.timePtr(r.SettledAt),
		CreatedAt:   p.time(r.CreatedAt),
		UpdatedAt:   p.time(r.UpdatedAt),
		User:        toUserView(r.User),
	}
}

func (p *Presenter) reimbursements(rs []domain.Reimbursement) []reimbursementView {
	out := make([]reimbursementView, len(rs))
	for i := range rs {
		out[i] = p.reimbursement(&rs[i])
	}
	return out
}

type disbursementView struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Amount          json.Number `json:"amount"`
	Description     string      `json:"description"`
	ReceiptURL      *string     `json:"receiptUrl"`
	ReimbursementID int64       `json:"reimbursementId"`
	SettledAt       string      `json:"settledAt"`
	CreatedAt       string      `json:"createdAt"`
	User            *userView   `json:"user,omitempty"`
}

func (p *Presenter) disbursement(d *domain.Disbursement) disbursementView {
	return disbursementView{
		ID:              d.ID,
		Title:           d.Title,
		Amount:          amount(d.Amount),
		Description:     d.Description,
		ReceiptURL:      p.receiptURL(d.ReceiptHandle),
		ReimbursementID: d.ReimbursementID,
		SettledAt:       p.time(d.SettledAt),
		CreatedAt:       p.time(d.CreatedAt),
		User:            toUserView(d.User),
	}
}

func (p *Presenter) disbursements(ds []domain.Disbursement) []disbursementView {
	out := make([]disbursementView, len(ds))
	for i := range ds {
		out[i] = p.disbursement(&ds[i])
	}
	return out
}

type skippedView struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type settleManyResponse struct {
	Message string        `json:"message"`
	Updated []int64       `json:"updated"`
	Skipped []skippedView `json:"skipped"`
}

func toSettleManyResponse(o *domain.SettleOutcome) settleManyResponse {
	resp := settleManyResponse{
		Message: "Reimbursements processed",
		Updated: o.Updated,
		Skipped: make([]skippedView, len(o.Skipped)),
	}
	if resp.Updated == nil {
		resp.Updated = []int64{}
	}
	for i, s := range o.Skipped {
		resp.Skipped[i] = skippedView{ID: s.ID, Reason: s.Reason}
	}
	return resp
}

type profileView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (p *Presenter) profile(u *domain.User) profileView {
	return profileView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: p.time(u.CreatedAt),
		UpdatedAt: p.time(u.UpdatedAt),
	}
}

func (p *Presenter) profiles(us []domain.User) []profileView {
	out := make([]profileView, len(us))
	for i := range us {
		out[i] = p.profile(&us[i])
	}
	return out
}

type auditView struct {
	ID        int64          `json:"id"`
	ActorID   int64          `json:"actorId"`
	Action    string         `json:"action"`
	Changes   map[string]any `json:"changes"`
	CreatedAt string         `json:"createdAt"`
}

func (p *Presenter) auditTrail(rs []domain.AuditRecord) []auditView {
	out := make([]auditView, len(rs))
	for i, r := range rs {
		changes := r.Changes
		if changes == nil {
			changes = map[string]any{}
		}
		out[i] = auditView{
			ID:        r.ID,
			ActorID:   r.ActorID,
			Action:    r.Action.String(),
			Changes:   changes,
			CreatedAt: p.time(r.CreatedAt),
		}
	}
	return out
}
