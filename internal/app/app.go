package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/events"
	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/httpapi"
	sqliteadapter "github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/usecase"
	"github.com/atvirokodosprendimai/bookwerx/migrations"
)

type Config struct {
	Addr           string
	DBPath         string
	WebhookURL     string
	WebhookSecret  string
	OutboxInterval time.Duration
}

type resourceCloser struct {
	closers []io.Closer
}

// Close closes in order; the dispatcher comes first so it stops touching
// the database before the pools go away.
func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config, logger zerolog.Logger) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	applied, err := migrations.Up(migrateCtx, writeSQLDB)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if len(applied) > 0 {
		logger.Info().Ints64("versions", applied).Msg("migrations applied")
	}

	tenantRepo := sqliteadapter.NewTenantRepository(db)
	currencyRepo := sqliteadapter.NewCurrencyRepository(db)
	accountRepo := sqliteadapter.NewAccountRepository(db)
	transactionRepo := sqliteadapter.NewTransactionRepository(db)
	outboxRepo := sqliteadapter.NewOutboxRepository(db)

	shapes := usecase.NewShapeValidator()
	tenants := usecase.NewTenantService(tenantRepo)
	admission := usecase.NewAdmission(shapes, usecase.NewValueValidator(), tenants)

	services := httpapi.Services{
		APIKeys:      usecase.NewAPIKeyService(shapes, tenants),
		Currencies:   usecase.NewCurrencyService(admission, usecase.NewUniquenessGuard(), currencyRepo),
		Accounts:     usecase.NewAccountService(admission, usecase.NewReferenceResolver(currencyRepo), accountRepo),
		Transactions: usecase.NewTransactionService(admission, transactionRepo),
	}

	dispatcher := usecase.NewOutboxDispatcher(outboxRepo, newPublisher(cfg, logger), logger, cfg.OutboxInterval, 100)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registerOutboxMetrics(reg, dispatcher)

	handler := httpapi.NewHandler(services, logger, reg)

	dispatcher.Start(context.Background())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{dispatcher, db}}, nil
}

func newPublisher(cfg Config, logger zerolog.Logger) ports.EventPublisher {
	if cfg.WebhookURL == "" {
		return events.NewLogPublisher(logger)
	}
	if cfg.WebhookSecret == "" {
		logger.Warn().Msg("webhook secret is empty; deliveries are signed with an empty key")
	}
	return events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 0)
}

func registerOutboxMetrics(reg prometheus.Registerer, d *usecase.OutboxDispatcher) {
	counter := func(name, help string, value func(usecase.OutboxDispatcherMetrics) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, func() float64 {
			return float64(value(d.Metrics()))
		})
	}
	reg.MustRegister(
		counter("bookwerx_outbox_dispatched_total", "Outbox events delivered",
			func(m usecase.OutboxDispatcherMetrics) int64 { return m.DispatchSuccessTotal }),
		counter("bookwerx_outbox_failures_total", "Outbox delivery attempts that failed",
			func(m usecase.OutboxDispatcherMetrics) int64 { return m.DispatchFailureTotal }),
		counter("bookwerx_outbox_dead_total", "Outbox events dead-lettered after exhausting retries",
			func(m usecase.OutboxDispatcherMetrics) int64 { return m.DispatchDeadTotal }),
	)
}
