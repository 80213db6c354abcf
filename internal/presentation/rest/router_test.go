package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/kafka"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/infrastructure/persistence/memory"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/presentation/rest"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/auth"
)

const clientBody = `{
	"name": "Ayesha Khan",
	"national_id": "35202-1234567-1",
	"phone": "0300-1234567",
	"address": "Lahore",
	"monthly_income": 30000,
	"employment_status": "Employed",
	"existing_loans": 0,
	"credit_history": "Good"
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine() *usecase.Engine {
	store := memory.NewStore()
	logger := discardLogger()
	return usecase.NewEngine(usecase.Dependencies{
		Clients:   store.Clients(),
		Loans:     store.Loans(),
		Snapshots: store,
		Publisher: kafka.NewLoggingPublisher(logger),
		Logger:    logger,
	})
}

type apiClient struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c apiClient) do(method, path, body string) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestRouter_LoanLifecycle(t *testing.T) {
	api := apiClient{t: t, h: rest.NewRouter(rest.RouterConfig{Engine: newEngine(), Logger: discardLogger()})}

	code, client := api.do(http.MethodPost, "/api/clients", clientBody)
	require.Equal(t, http.StatusCreated, code, client)
	assert.Equal(t, "Low", client["risk_category"])
	clientID := client["id"].(string)

	code, body := api.do(http.MethodPost, "/api/clients", clientBody)
	assert.Equal(t, http.StatusBadRequest, code, "duplicate national id")
	assert.Equal(t, "validation_error", body["code"])

	code, suggestion := api.do(http.MethodPost, "/api/loans/suggest", `{"client_id":"`+clientID+`","loan_amount":120000}`)
	require.Equal(t, http.StatusOK, code, suggestion)
	assert.NotEmpty(t, suggestion["approval_recommendation"])

	code, created := api.do(http.MethodPost, "/api/loans", `{
		"client_id": "`+clientID+`",
		"loan_amount": 120000,
		"loan_type": "Business",
		"interest_rate": 12,
		"duration_months": 12,
		"start_date": "2025-01-31"
	}`)
	require.Equal(t, http.StatusCreated, code, created)
	loan := created["loan"].(map[string]any)
	loanID := loan["id"].(string)
	assert.Equal(t, "10661.85", loan["monthly_installment"])
	assert.Equal(t, "2025-01-31", loan["start_date"])

	code, schedule := api.do(http.MethodGet, "/api/loans/"+loanID+"/installments", "")
	require.Equal(t, http.StatusOK, code)
	installments := schedule["installments"].([]any)
	require.Len(t, installments, 12)
	first := installments[0].(map[string]any)
	assert.Equal(t, "2025-02-28", first["due_date"])
	firstID := first["id"].(string)

	code, paid := api.do(http.MethodPut, "/api/installments/"+firstID+"/pay", "")
	require.Equal(t, http.StatusOK, code, paid)
	assert.Equal(t, "Active", paid["loan_status"])

	code, body = api.do(http.MethodPut, "/api/installments/"+firstID+"/pay", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_paid", body["code"])
	assert.Nil(t, body["retryable"])

	code, _ = api.do(http.MethodGet, "/api/loans/"+loanID+"/alerts", "")
	assert.Equal(t, http.StatusOK, code)

	code, settled := api.do(http.MethodPut, "/api/loans/"+loanID+"/mark-all-paid", "")
	require.Equal(t, http.StatusOK, code, settled)
	assert.Equal(t, float64(11), settled["installments_settled"])
	assert.Equal(t, "Completed", settled["loan_status"])

	code, triage := api.do(http.MethodGet, "/api/alerts/all", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, triage["alerts"], "completed loans never appear")

	code, stats := api.do(http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), stats["total_clients"])
	assert.Equal(t, float64(1), stats["total_loans"])

	code, refreshed := api.do(http.MethodPut, "/api/installments/update-overdue", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), refreshed["updated_count"])

	code, evaluated := api.do(http.MethodPut, "/api/loans/"+loanID+"/evaluate-default", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, evaluated["defaulted"])

	code, updated := api.do(http.MethodPut, "/api/clients/"+clientID, `{"monthly_income": 45000}`)
	require.Equal(t, http.StatusOK, code, updated)
	assert.Equal(t, "45000", updated["monthly_income"])
}

func TestRouter_Errors(t *testing.T) {
	api := apiClient{t: t, h: rest.NewRouter(rest.RouterConfig{Engine: newEngine(), Logger: discardLogger()})}

	code, body := api.do(http.MethodGet, "/api/loans/nope/installments", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body["code"])

	code, body = api.do(http.MethodPost, "/api/clients", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])

	code, body = api.do(http.MethodPost, "/api/loans", `{"unexpected": true}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation_error", body["code"])

	code, _ = api.do(http.MethodDelete, "/api/loans/x", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestRouter_Auth(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "test", Expiration: time.Hour})
	require.NoError(t, err)
	operator, err := jwtSvc.GenerateToken("officer-1", []string{auth.RoleOperator})
	require.NoError(t, err)
	auditor, err := jwtSvc.GenerateToken("auditor-1", []string{auth.RoleAuditor})
	require.NoError(t, err)

	health := rest.NewHealthHandler("mlms-engine", nil, discardLogger())
	h := rest.NewRouter(rest.RouterConfig{
		Engine:  newEngine(),
		Health:  health,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{}")) }),
		JWT:     jwtSvc,
		Logger:  discardLogger(),
	})

	anon := apiClient{t: t, h: h}
	code, body := anon.do(http.MethodGet, "/api/dashboard/stats", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "unauthenticated", body["code"])

	code, _ = anon.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = anon.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = anon.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)

	reader := apiClient{t: t, h: h, token: auditor}
	code, _ = reader.do(http.MethodGet, "/api/dashboard/stats", "")
	assert.Equal(t, http.StatusOK, code)
	code, body = reader.do(http.MethodPost, "/api/clients", clientBody)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["code"])

	writer := apiClient{t: t, h: h, token: operator}
	code, _ = writer.do(http.MethodPost, "/api/clients", clientBody)
	assert.Equal(t, http.StatusCreated, code)

	bad := apiClient{t: t, h: h, token: "not-a-token"}
	code, _ = bad.do(http.MethodGet, "/api/alerts/all", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_ReadinessFailure(t *testing.T) {
	health := rest.NewHealthHandler("mlms-engine", map[string]rest.ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	}, discardLogger())
	api := apiClient{t: t, h: rest.NewRouter(rest.RouterConfig{Engine: newEngine(), Health: health, Logger: discardLogger()})}

	code, body := api.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, map[string]any{"postgres": "connection refused"}, body["failed"])
}

func TestRouter_RateLimit(t *testing.T) {
	api := apiClient{t: t, h: rest.NewRouter(rest.RouterConfig{Engine: newEngine(), RateLimitRPS: 2, Logger: discardLogger()})}

	for i := 0; i < 2; i++ {
		code, _ := api.do(http.MethodGet, "/api/alerts/all", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, body := api.do(http.MethodGet, "/api/alerts/all", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, true, body["retryable"])
}
