package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/expense-ledger/internal/adapter/postgres"
	auditrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/audit"
	budgetrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/budget"
	disbursementrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/disbursement"
	reimbursementrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/reimbursement"
	userrepo "github.com/heartmarshall/expense-ledger/internal/adapter/postgres/user"
	"github.com/heartmarshall/expense-ledger/internal/adapter/report"
	"github.com/heartmarshall/expense-ledger/internal/adapter/storage"
	"github.com/heartmarshall/expense-ledger/internal/auth"
	"github.com/heartmarshall/expense-ledger/internal/config"
	"github.com/heartmarshall/expense-ledger/internal/query"
	"github.com/heartmarshall/expense-ledger/internal/service/budget"
	"github.com/heartmarshall/expense-ledger/internal/service/disbursement"
	"github.com/heartmarshall/expense-ledger/internal/service/history"
	"github.com/heartmarshall/expense-ledger/internal/service/reimbursement"
	"github.com/heartmarshall/expense-ledger/internal/service/settlement"
	"github.com/heartmarshall/expense-ledger/internal/service/user"
	"github.com/heartmarshall/expense-ledger/internal/transport/middleware"
	"github.com/heartmarshall/expense-ledger/internal/transport/rest"
)

const rateLimitCleanup = 5 * time.Minute

// Server is the fully wired HTTP application.
type Server struct {
	Handler   http.Handler
	Registry  *prometheus.Registry
	discarder *storage.Discarder
	limiter   *middleware.RateLimiter
}

// NewServer wires repositories, services and transport on top of pool.
// Close must be called to release background workers.
func NewServer(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Server, error) {
	store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.MaxBytes)
	if err != nil {
		return nil, err
	}
	discarder := storage.NewDiscarder(store, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Repositories
	txm := postgres.NewTxManager(pool)
	budgets := budgetrepo.New(pool)
	reimbursements := reimbursementrepo.New(pool)
	disbursements := disbursementrepo.New(pool)
	audit := auditrepo.New(pool)
	users := userrepo.New(pool)

	// Services
	filters := query.NewBuilder(cfg.Workflow.Location, cfg.Workflow.MaxFilterIDs)
	budgetSvc := budget.NewService(logger, budgets, audit, txm, filters)
	reimbursementSvc := reimbursement.NewService(logger, reimbursements, budgets, store, discarder, audit, txm, filters)
	settlementSvc := settlement.NewService(logger, reimbursements, disbursements, audit, txm,
		settlement.NewMetrics(registry), cfg.Workflow.MaxSettleIDs)
	disbursementSvc := disbursement.NewService(logger, disbursements, filters)
	userSvc := user.NewService(logger, users)
	historySvc := history.NewService(budgets, reimbursements, audit)

	// Transport
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTTL)
	limiter := middleware.NewRateLimiter(rateLimitCleanup)

	present := rest.NewPresenter(cfg.Workflow.Location, cfg.Storage.PublicBaseURL)
	sheets := report.XLSX{}

	router := rest.NewRouter(rest.Routes{
		Health: rest.NewHealthHandler(BuildVersion(),
			rest.Check{Name: "database", Ping: pool.Ping},
			rest.Check{Name: "storage", Ping: store.Ping},
		),
		Budgets:        rest.NewBudgetHandler(budgetSvc, present, logger),
		Reimbursements: rest.NewReimbursementHandler(reimbursementSvc, settlementSvc, sheets, present, cfg.Storage.MaxBytes, logger),
		Disbursements:  rest.NewDisbursementHandler(disbursementSvc, sheets, present, logger),
		Users:          rest.NewUserHandler(userSvc, present, logger),
		History:        rest.NewHistoryHandler(historySvc, present, logger),
		UploadDir:      store.Dir(),
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, rest.Guards{
		Auth:        middleware.Auth(tokens),
		UploadLimit: limiter.Limit(cfg.RateLimit.UploadsPerMinute, cfg.RateLimit.Burst),
	})

	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.NewHTTPMetrics(registry).Middleware(),
		middleware.CORS(cfg.CORS),
	)(router)

	return &Server{
		Handler:   handler,
		Registry:  registry,
		discarder: discarder,
		limiter:   limiter,
	}, nil
}

// Close stops the rate limiter and waits for pending receipt removals.
func (s *Server) Close(ctx context.Context) error {
	s.limiter.Stop()
	return s.discarder.Wait(ctx)
}

// Run is the application entry point. It loads configuration, connects to
// the database and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("timezone", cfg.Workflow.Timezone),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	app, err := NewServer(cfg, pool, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, app, logger)
}

// serve runs srv until ctx is done, then shuts it down and releases app.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, app *Server, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := app.Close(shutdownCtx); err != nil {
			logger.Warn("receipt removals still pending", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
