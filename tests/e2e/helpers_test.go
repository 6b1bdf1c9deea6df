//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/expense-ledger/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/expense-ledger/internal/app"
	authpkg "github.com/heartmarshall/expense-ledger/internal/auth"
	"github.com/heartmarshall/expense-ledger/internal/config"
	"github.com/heartmarshall/expense-ledger/internal/domain"
)

const jwtSecret = "test-secret-at-least-32-chars-long!!"

// pngReceipt is the smallest byte sequence that sniffs as image/png.
var pngReceipt = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// setupTestServer bootstraps the application stack backed by a real
// PostgreSQL container (shared via testhelper).
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))

	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: jwtSecret, JWTIssuer: "test-issuer", AccessTTL: 15 * time.Minute},
		CORS: config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PATCH,DELETE", AllowedHeaders: "Authorization,Content-Type"},
		Storage: config.StorageConfig{
			UploadDir:     t.TempDir(),
			PublicBaseURL: "http://files.test",
			MaxBytes:      1 << 20,
		},
		Workflow: config.WorkflowConfig{
			MaxFilterIDs: 64,
			MaxSettleIDs: 50,
			Timezone:     "Asia/Taipei",
			Location:     taipei,
		},
		RateLimit: config.RateLimitConfig{UploadsPerMinute: 600, Burst: 100},
	}

	srv, err := app.NewServer(cfg, pool, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Close(ctx)
	})

	return &testServer{
		URL:    ts.URL,
		Client: ts.Client(),
		Pool:   pool,
		jwt:    authpkg.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTTL),
	}
}

// userToken seeds a user with role and returns it with a valid access token.
func (ts *testServer) userToken(t *testing.T, role domain.UserRole) (domain.User, string) {
	t.Helper()
	u := testhelper.SeedUser(t, ts.Pool, role)
	token, err := ts.jwt.GenerateAccessToken(u.ID, u.Role)
	require.NoError(t, err)
	return u, token
}

// do sends a request and decodes a JSON response into out when non-nil.
func (ts *testServer) do(t *testing.T, req *http.Request, token string, out any) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp
}

func (ts *testServer) jsonCall(t *testing.T, method, path, body, token string, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req, token, out)
}

// submitClaim posts a multipart reimbursement with a PNG receipt.
func (ts *testServer) submitClaim(t *testing.T, token string, fields map[string]string, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="receipt"; filename="receipt.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(pngReceipt)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/reimbursements", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(t, req, token, out)
}

type envelope[T any] struct {
	Message string `json:"message"`
	Result  T      `json:"result"`
}

type errorBody struct {
	Class   string `json:"class"`
	Message string `json:"message"`
}

type record struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	SourceType string  `json:"sourceType"`
	BudgetID   *int64  `json:"budgetId"`
	ReceiptURL *string `json:"receiptUrl"`
	SettledAt  *string `json:"settledAt"`
}
