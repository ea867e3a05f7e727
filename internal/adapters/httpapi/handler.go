package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/usecase"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxFormBodySize = 1 << 20
)

type APIKeyIssuer interface {
	Issue(ctx context.Context, fields domain.FieldSet) (domain.APIKey, error)
}

type CurrencyService interface {
	Create(ctx context.Context, fields domain.FieldSet) (domain.Currency, error)
	List(ctx context.Context, fields domain.FieldSet) ([]domain.Currency, error)
}

type AccountService interface {
	Create(ctx context.Context, fields domain.FieldSet) (domain.Account, error)
	List(ctx context.Context, fields domain.FieldSet) ([]domain.Account, error)
}

type TransactionService interface {
	Create(ctx context.Context, fields domain.FieldSet) (domain.Transaction, error)
	List(ctx context.Context, fields domain.FieldSet) ([]domain.Transaction, error)
}

var (
	_ APIKeyIssuer       = (*usecase.APIKeyService)(nil)
	_ CurrencyService    = (*usecase.CurrencyService)(nil)
	_ AccountService     = (*usecase.AccountService)(nil)
	_ TransactionService = (*usecase.TransactionService)(nil)
)

type Services struct {
	APIKeys      APIKeyIssuer
	Currencies   CurrencyService
	Accounts     AccountService
	Transactions TransactionService
}

type Handler struct {
	svc      Services
	logger   zerolog.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

// NewHandler registers the HTTP collectors on reg and serves them, together
// with everything else reg holds, on /metrics.
func NewHandler(svc Services, logger zerolog.Logger, reg *prometheus.Registry) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		metrics:  NewMetrics(reg),
		gatherer: reg,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.middleware)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Post("/apikeys", h.issueAPIKey)

	r.Get("/currencies", h.listCurrencies)
	r.Post("/currencies", h.createCurrency)
	r.Get("/accounts", h.listAccounts)
	r.Post("/accounts", h.createAccount)
	r.Get("/transactions", h.listTransactions)
	r.Post("/transactions", h.createTransaction)

	return r
}

type apiKeyResponse struct {
	APIKey string `json:"apikey"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type currencyResponse struct {
	ID        int64  `json:"id"`
	Symbol    string `json:"symbol"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type accountResponse struct {
	ID         int64  `json:"id"`
	CurrencyID int64  `json:"currency_id"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
}

type transactionResponse struct {
	ID        int64  `json:"id"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (h *Handler) issueAPIKey(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.postFields(w, r, domain.KindAPIKey)
	if !ok {
		return
	}
	key, err := h.svc.APIKeys.Issue(r.Context(), fields)
	if err != nil {
		h.handleDomainError(w, r, domain.KindAPIKey, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyResponse{APIKey: key.Key})
}

func (h *Handler) createCurrency(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.postFields(w, r, domain.KindCurrency)
	if !ok {
		return
	}
	cur, err := h.svc.Currencies.Create(r.Context(), fields)
	if err != nil {
		h.handleDomainError(w, r, domain.KindCurrency, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{ID: cur.ID})
}

func (h *Handler) listCurrencies(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Currencies.List(r.Context(), queryFields(r))
	if err != nil {
		h.handleDomainError(w, r, domain.KindCurrency, err)
		return
	}
	result := make([]currencyResponse, 0, len(items))
	for _, c := range items {
		result = append(result, currencyResponse{
			ID:        c.ID,
			Symbol:    c.Symbol,
			Title:     c.Title,
			CreatedAt: c.CreatedAt.UTC().Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.postFields(w, r, domain.KindAccount)
	if !ok {
		return
	}
	acct, err := h.svc.Accounts.Create(r.Context(), fields)
	if err != nil {
		h.handleDomainError(w, r, domain.KindAccount, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{ID: acct.ID})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Accounts.List(r.Context(), queryFields(r))
	if err != nil {
		h.handleDomainError(w, r, domain.KindAccount, err)
		return
	}
	result := make([]accountResponse, 0, len(items))
	for _, a := range items {
		result = append(result, accountResponse{
			ID:         a.ID,
			CurrencyID: a.CurrencyID,
			Title:      a.Title,
			CreatedAt:  a.CreatedAt.UTC().Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.postFields(w, r, domain.KindTransaction)
	if !ok {
		return
	}
	tx, err := h.svc.Transactions.Create(r.Context(), fields)
	if err != nil {
		h.handleDomainError(w, r, domain.KindTransaction, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{ID: tx.ID})
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Transactions.List(r.Context(), queryFields(r))
	if err != nil {
		h.handleDomainError(w, r, domain.KindTransaction, err)
		return
	}
	result := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		result = append(result, transactionResponse{
			ID:        t.ID,
			Notes:     t.Notes,
			CreatedAt: t.CreatedAt.UTC().Format(timeFormat),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

// postFields reads a form-encoded body. A body that cannot be parsed is a
// shape defect like any other malformed request.
func (h *Handler) postFields(w http.ResponseWriter, r *http.Request, kind domain.Kind) (domain.FieldSet, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodySize)
	if err := r.ParseForm(); err != nil {
		h.handleDomainError(w, r, kind, &domain.SchemaError{
			Kind:       kind,
			Violations: []string{"unreadable form body: " + err.Error()},
		})
		return domain.FieldSet{}, false
	}
	return domain.NewFieldSet(r.PostForm), true
}

func queryFields(r *http.Request) domain.FieldSet {
	return domain.NewFieldSet(r.URL.Query())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func (h *Handler) handleDomainError(w http.ResponseWriter, r *http.Request, kind domain.Kind, err error) {
	log := zerolog.Ctx(r.Context())

	var (
		schemaErr *domain.SchemaError
		valueErr  *domain.ValueError
		refErr    *domain.ReferenceError
		dupErr    *domain.DuplicateError
	)
	switch {
	case errors.As(err, &schemaErr):
		h.rejected(log, kind, "shape", err)
		writeError(w, http.StatusUnprocessableEntity, "malformed request", schemaErr.Violations...)
	case errors.As(err, &valueErr):
		h.rejected(log, kind, "value", err)
		status := http.StatusBadRequest
		if valueErr.Structural() {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, valueErr.Error())
	case errors.Is(err, domain.ErrUnknownAPIKey):
		h.rejected(log, kind, "apikey", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &refErr):
		h.rejected(log, kind, "reference", err)
		writeError(w, http.StatusBadRequest, refErr.Error())
	case errors.As(err, &dupErr):
		h.rejected(log, kind, "duplicate", err)
		writeError(w, http.StatusBadRequest, dupErr.Error())
	default:
		log.Error().Err(err).Str("resource", string(kind)).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) rejected(log *zerolog.Logger, kind domain.Kind, reason string, err error) {
	h.metrics.reject(string(kind), reason)
	log.Debug().Err(err).Str("resource", string(kind)).Str("reason", reason).Msg("request rejected")
}

func openapiSpec() map[string]any {
	form := func(fields ...string) map[string]any {
		props := make(map[string]any, len(fields))
		for _, f := range fields {
			props[f] = map[string]any{"type": "string"}
		}
		return map[string]any{
			"required": true,
			"content": map[string]any{
				"application/x-www-form-urlencoded": map[string]any{
					"schema": map[string]any{
						"type":                 "object",
						"properties":           props,
						"required":             fields,
						"additionalProperties": false,
					},
				},
			},
		}
	}
	apikeyQuery := []any{map[string]any{
		"name": "apikey", "in": "query", "required": true,
		"schema": map[string]any{"type": "string", "maxLength": domain.MaxAPIKeyLen},
	}}
	responses := map[string]any{
		"200": map[string]any{"description": "OK"},
		"400": map[string]any{"description": "Invalid value, unknown apikey, reference or duplicate"},
		"422": map[string]any{"description": "Malformed request"},
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "bookwerx",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/apikeys": map[string]any{
				"post": map[string]any{"summary": "Issue API key", "responses": responses},
			},
			"/currencies": map[string]any{
				"get":  map[string]any{"summary": "List currencies", "parameters": apikeyQuery, "responses": responses},
				"post": map[string]any{"summary": "Create currency", "requestBody": form("apikey", "symbol", "title"), "responses": responses},
			},
			"/accounts": map[string]any{
				"get":  map[string]any{"summary": "List accounts", "parameters": apikeyQuery, "responses": responses},
				"post": map[string]any{"summary": "Create account", "requestBody": form("apikey", "currency_id", "title"), "responses": responses},
			},
			"/transactions": map[string]any{
				"get":  map[string]any{"summary": "List transactions", "parameters": apikeyQuery, "responses": responses},
				"post": map[string]any{"summary": "Create transaction", "requestBody": form("apikey", "notes"), "responses": responses},
			},
		},
	}
}
