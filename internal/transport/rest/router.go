package rest

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/expense-ledger/internal/transport/middleware"
)

// Routes holds the handlers mounted by NewRouter.
type Routes struct {
	Health         *HealthHandler
	Budgets        *BudgetHandler
	Reimbursements *ReimbursementHandler
	Disbursements  *DisbursementHandler
	Users          *UserHandler
	History        *HistoryHandler
	// UploadDir is served read-only under /uploads/.
	UploadDir string
	Metrics   http.Handler
}

// Guards holds the per-route middleware.
type Guards struct {
	Auth        middleware.Middleware
	UploadLimit middleware.Middleware
}

// NewRouter registers every endpoint on a new ServeMux. Everything under
// /api requires a valid token; privileged routes additionally require the
// manager or admin role.
func NewRouter(routes Routes, guards Guards) *http.ServeMux {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return guards.Auth(h)
	}
	privileged := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(guards.Auth, middleware.RequirePrivileged())(h)
	}
	upload := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(guards.Auth, guards.UploadLimit)(h)
	}

	b := routes.Budgets
	mux.Handle("POST /api/budgets", authed(b.Create))
	mux.Handle("GET /api/budgets", privileged(b.ListAll))
	mux.Handle("GET /api/budgets/me", authed(b.ListMine))
	mux.Handle("PATCH /api/budgets/{id}", authed(b.Update))
	mux.Handle("PATCH /api/budgets/{id}/status", privileged(b.Verify))
	mux.Handle("PATCH /api/budgets/{id}/settle", privileged(b.Settle))
	mux.Handle("DELETE /api/budgets/{id}", authed(b.Delete))
	mux.Handle("GET /api/budgets/{id}/history", authed(routes.History.Budget))

	rb := routes.Reimbursements
	mux.Handle("POST /api/reimbursements", upload(rb.Create))
	mux.Handle("GET /api/reimbursements", privileged(rb.ListAll))
	mux.Handle("GET /api/reimbursements/me", authed(rb.ListMine))
	mux.Handle("GET /api/reimbursements/export", privileged(rb.Export))
	mux.Handle("PATCH /api/reimbursements/settle", privileged(rb.SettleMany))
	mux.Handle("PATCH /api/reimbursements/{id}", upload(rb.Update))
	mux.Handle("PATCH /api/reimbursements/{id}/status", privileged(rb.Verify))
	mux.Handle("PATCH /api/reimbursements/{id}/settle", privileged(rb.SettleOne))
	mux.Handle("DELETE /api/reimbursements/{id}", authed(rb.Delete))
	mux.Handle("GET /api/reimbursements/{id}/history", authed(routes.History.Reimbursement))

	d := routes.Disbursements
	mux.Handle("GET /api/disbursements", privileged(d.ListAll))
	mux.Handle("GET /api/disbursements/me", authed(d.ListMine))
	mux.Handle("GET /api/disbursements/export", privileged(d.Export))

	u := routes.Users
	mux.Handle("GET /api/users", privileged(u.List))
	mux.Handle("GET /api/users/role/{role}", privileged(u.ListByRole))
	mux.Handle("GET /api/users/me", authed(u.Me))
	mux.Handle("PATCH /api/users/me", authed(u.UpdateMe))
	mux.Handle("GET /api/users/{id}", privileged(u.Get))

	mux.Handle("GET /uploads/{name}", receiptFiles(routes.UploadDir))

	mux.HandleFunc("GET /live", routes.Health.Live)
	mux.HandleFunc("GET /ready", routes.Health.Ready)
	mux.HandleFunc("GET /health", routes.Health.Health)
	if routes.Metrics != nil {
		mux.Handle("GET /metrics", routes.Metrics)
	}

	return mux
}

// receiptFiles serves single files from dir. Names with path elements and
// hidden files are not served.
func receiptFiles(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, filepath.Join(dir, name))
	})
}
