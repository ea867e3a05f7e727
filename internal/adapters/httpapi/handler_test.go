package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type stubAPIKeys struct {
	issueFn func(ctx context.Context, fields domain.FieldSet) (domain.APIKey, error)
}

func (s *stubAPIKeys) Issue(ctx context.Context, fields domain.FieldSet) (domain.APIKey, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, fields)
	}
	return domain.APIKey{Key: "k-1"}, nil
}

type stubCurrencies struct {
	createFn func(ctx context.Context, fields domain.FieldSet) (domain.Currency, error)
	listFn   func(ctx context.Context, fields domain.FieldSet) ([]domain.Currency, error)
}

func (s *stubCurrencies) Create(ctx context.Context, fields domain.FieldSet) (domain.Currency, error) {
	if s.createFn != nil {
		return s.createFn(ctx, fields)
	}
	return domain.Currency{ID: 1}, nil
}

func (s *stubCurrencies) List(ctx context.Context, fields domain.FieldSet) ([]domain.Currency, error) {
	if s.listFn != nil {
		return s.listFn(ctx, fields)
	}
	return nil, nil
}

type stubAccounts struct {
	createFn func(ctx context.Context, fields domain.FieldSet) (domain.Account, error)
	listFn   func(ctx context.Context, fields domain.FieldSet) ([]domain.Account, error)
}

func (s *stubAccounts) Create(ctx context.Context, fields domain.FieldSet) (domain.Account, error) {
	if s.createFn != nil {
		return s.createFn(ctx, fields)
	}
	return domain.Account{ID: 1}, nil
}

func (s *stubAccounts) List(ctx context.Context, fields domain.FieldSet) ([]domain.Account, error) {
	if s.listFn != nil {
		return s.listFn(ctx, fields)
	}
	return nil, nil
}

type stubTransactions struct {
	createFn func(ctx context.Context, fields domain.FieldSet) (domain.Transaction, error)
	listFn   func(ctx context.Context, fields domain.FieldSet) ([]domain.Transaction, error)
}

func (s *stubTransactions) Create(ctx context.Context, fields domain.FieldSet) (domain.Transaction, error) {
	if s.createFn != nil {
		return s.createFn(ctx, fields)
	}
	return domain.Transaction{ID: 1}, nil
}

func (s *stubTransactions) List(ctx context.Context, fields domain.FieldSet) ([]domain.Transaction, error) {
	if s.listFn != nil {
		return s.listFn(ctx, fields)
	}
	return nil, nil
}

type testEnv struct {
	apikeys      *stubAPIKeys
	currencies   *stubCurrencies
	accounts     *stubAccounts
	transactions *stubTransactions
	router       http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		apikeys:      &stubAPIKeys{},
		currencies:   &stubCurrencies{},
		accounts:     &stubAccounts{},
		transactions: &stubTransactions{},
	}
	h := NewHandler(Services{
		APIKeys:      env.apikeys,
		Currencies:   env.currencies,
		Accounts:     env.accounts,
		Transactions: env.transactions,
	}, zerolog.Nop(), prometheus.NewRegistry())
	env.router = h.Router()
	return env
}

func (e *testEnv) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestIssueAPIKeyReturnsToken(t *testing.T) {
	env := newTestEnv()

	rr := env.post("/apikeys", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"apikey":"k-1"}`, rr.Body.String())
}

func TestCreatePassesFormFieldsAndReturnsID(t *testing.T) {
	env := newTestEnv()
	var got domain.FieldSet
	env.currencies.createFn = func(_ context.Context, fields domain.FieldSet) (domain.Currency, error) {
		got = fields
		return domain.Currency{ID: 42}, nil
	}

	rr := env.post("/currencies?ignored=1", "apikey=k&symbol=XAU&title=Gold")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":42}`, rr.Body.String())
	assert.Equal(t, []string{"apikey", "symbol", "title"}, got.Names())
	assert.Equal(t, "XAU", got.Value("symbol"))
}

func TestListUsesQueryString(t *testing.T) {
	env := newTestEnv()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	env.accounts.listFn = func(_ context.Context, fields domain.FieldSet) ([]domain.Account, error) {
		assert.Equal(t, "k", fields.Value("apikey"))
		return []domain.Account{{ID: 3, CurrencyID: 1, Title: "Cash", CreatedAt: created}}, nil
	}

	rr := env.get("/accounts?apikey=k")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":3,"currency_id":1,"title":"Cash","created_at":"2026-01-02T03:04:05Z"}]`, rr.Body.String())
}

func TestEmptyListIsJSONArray(t *testing.T) {
	env := newTestEnv()

	rr := env.get("/transactions?apikey=k")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestDomainErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"shape", &domain.SchemaError{Kind: domain.KindTransaction, Violations: []string{"missing notes"}}, http.StatusUnprocessableEntity},
		{"too long", &domain.ValueError{Field: "notes", Kind: domain.TooLong, Limit: 255}, http.StatusBadRequest},
		{"blank", &domain.ValueError{Field: "notes", Kind: domain.Blank}, http.StatusBadRequest},
		{"not numeric", &domain.ValueError{Field: "currency_id", Kind: domain.NotNumeric}, http.StatusUnprocessableEntity},
		{"unknown apikey", domain.ErrUnknownAPIKey, http.StatusBadRequest},
		{"reference", &domain.ReferenceError{Field: "currency_id", ID: 9}, http.StatusBadRequest},
		{"duplicate", &domain.DuplicateError{Field: "symbol", Value: "XAU"}, http.StatusBadRequest},
		{"storage", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.transactions.createFn = func(context.Context, domain.FieldSet) (domain.Transaction, error) {
				return domain.Transaction{}, tt.err
			}

			rr := env.post("/transactions", "apikey=k&notes=n")
			require.Equal(t, tt.status, rr.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Error, "disk")
			}
		})
	}
}

func TestSchemaErrorIncludesDetails(t *testing.T) {
	env := newTestEnv()
	env.apikeys.issueFn = func(context.Context, domain.FieldSet) (domain.APIKey, error) {
		return domain.APIKey{}, &domain.SchemaError{Kind: domain.KindAPIKey, Violations: []string{"additionalProperties 'name' not allowed"}}
	}

	rr := env.post("/apikeys", "name=x")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"additionalProperties 'name' not allowed"}, body.Details)
}

func TestMalformedFormBodyIsUnprocessable(t *testing.T) {
	env := newTestEnv()
	called := false
	env.currencies.createFn = func(context.Context, domain.FieldSet) (domain.Currency, error) {
		called = true
		return domain.Currency{}, nil
	}

	rr := env.post("/currencies", "apikey=%zz")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.False(t, called)
}

func TestMetricsExposeRejections(t *testing.T) {
	env := newTestEnv()
	env.currencies.createFn = func(context.Context, domain.FieldSet) (domain.Currency, error) {
		return domain.Currency{}, &domain.DuplicateError{Field: "symbol", Value: "XAU"}
	}
	require.Equal(t, http.StatusBadRequest, env.post("/currencies", "apikey=k&symbol=XAU&title=Gold").Code)

	rr := env.get("/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookwerx_rejections_total{reason="duplicate",resource="currency"} 1`)
	assert.Contains(t, string(body), `bookwerx_http_requests_total{method="POST",path="/currencies",status="400"} 1`)
}

func TestHealthzAndOpenAPI(t *testing.T) {
	env := newTestEnv()

	rr := env.get("/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	rr = env.get("/openapi.json")
	require.Equal(t, http.StatusOK, rr.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/currencies")
	assert.Contains(t, paths, "/apikeys")
}
