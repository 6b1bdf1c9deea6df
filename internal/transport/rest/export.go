package rest

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/heartmarshall/expense-ledger/internal/adapter/report"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type reportRenderer interface {
	ContentType() string
	Render(w io.Writer, sheet report.Sheet) error
}

const (
	exportAmountColumn = 4
	exportTotalLabel   = "Total"
)

func exportHeaders(dateHeader string) []string {
	return []string{"Claimant", "Email", "Title", "Amount", "Description", dateHeader}
}

func ownerCells(u *domain.UserIdentity) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Name, u.Email
}

func (p *Presenter) reimbursementSheet(rs []domain.Reimbursement) report.Sheet {
	rows := make([][]any, len(rs))
	for i, r := range rs {
		name, email := ownerCells(r.User)
		rows[i] = []any{name, email, r.Title, r.Amount, r.Description, p.time(r.CreatedAt)}
	}
	return report.Sheet{
		Name:        "Reimbursements Request",
		Headers:     exportHeaders("Submitted At"),
		Rows:        rows,
		TotalLabel:  exportTotalLabel,
		TotalColumn: exportAmountColumn,
	}
}

func (p *Presenter) disbursementSheet(ds []domain.Disbursement) report.Sheet {
	rows := make([][]any, len(ds))
	for i, d := range ds {
		name, email := ownerCells(d.User)
		rows[i] = []any{name, email, d.Title, d.Amount, d.Description, p.time(d.SettledAt)}
	}
	return report.Sheet{
		Name:        "Disbursements Record",
		Headers:     exportHeaders("Settled At"),
		Rows:        rows,
		TotalLabel:  exportTotalLabel,
		TotalColumn: exportAmountColumn,
	}
}

// writeReport renders sheet fully before writing, so a render failure can
// still be reported as a JSON error.
func writeReport(w http.ResponseWriter, r *http.Request, log *slog.Logger, rend reportRenderer, filename string, sheet report.Sheet) {
	var buf bytes.Buffer
	if err := rend.Render(&buf, sheet); err != nil {
		writeError(w, r, log, err)
		return
	}

	w.Header().Set("Content-Type", rend.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.WarnContext(r.Context(), "write report", slog.String("error", err.Error()))
	}
}
