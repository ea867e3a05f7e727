package usecase

import (
	"context"
	"sync"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// memTenants is an in-memory ports.TenantRepository.
type memTenants struct {
	mu   sync.Mutex
	keys map[string]domain.APIKey
	err  error
}

func newMemTenants() *memTenants {
	return &memTenants{keys: map[string]domain.APIKey{}}
}

func (m *memTenants) Insert(_ context.Context, key domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.keys[key.TenantID]; ok {
		return domain.ErrUniqueViolation
	}
	m.keys[key.TenantID] = key
	return nil
}

func (m *memTenants) Exists(_ context.Context, tenantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.keys[tenantID]
	return ok, nil
}

// memLedger implements the three resource repositories over slices, with
// the same tenant-scoped symbol constraint the database carries.
type memLedger struct {
	mu           sync.Mutex
	nextID       int64
	currencies   []domain.Currency
	accounts     []domain.Account
	transactions []domain.Transaction
	creates      int
}

func (m *memLedger) id() int64 {
	m.nextID++
	return m.nextID
}

type memCurrencies struct{ *memLedger }
type memAccounts struct{ *memLedger }
type memTransactions struct{ *memLedger }

func (m memCurrencies) Create(_ context.Context, c domain.Currency) (domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	for _, existing := range m.currencies {
		if existing.TenantID == c.TenantID && existing.Symbol == c.Symbol {
			return domain.Currency{}, domain.ErrUniqueViolation
		}
	}
	c.ID = m.id()
	m.currencies = append(m.currencies, c)
	return c, nil
}

func (m memCurrencies) FindByID(_ context.Context, tenantID string, id int64) (domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.currencies {
		if c.ID == id && c.TenantID == tenantID {
			return c, nil
		}
	}
	return domain.Currency{}, domain.ErrNotFound
}

func (m memCurrencies) List(_ context.Context, tenantID string) ([]domain.Currency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Currency{}
	for _, c := range m.currencies {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memAccounts) Create(_ context.Context, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	a.ID = m.id()
	m.accounts = append(m.accounts, a)
	return a, nil
}

func (m memAccounts) List(_ context.Context, tenantID string) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Account{}
	for _, a := range m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memTransactions) Create(_ context.Context, t domain.Transaction) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	t.ID = m.id()
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m memTransactions) List(_ context.Context, tenantID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Transaction{}
	for _, t := range m.transactions {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fixture struct {
	tenants      *TenantService
	ledger       *memLedger
	apikeys      *APIKeyService
	currencies   *CurrencyService
	accounts     *AccountService
	transactions *TransactionService
}

func newFixture() *fixture {
	tenants := NewTenantService(newMemTenants())
	ledger := &memLedger{}
	shapes := NewShapeValidator()
	admission := NewAdmission(shapes, NewValueValidator(), tenants)
	curRepo := memCurrencies{ledger}
	return &fixture{
		tenants:      tenants,
		ledger:       ledger,
		apikeys:      NewAPIKeyService(shapes, tenants),
		currencies:   NewCurrencyService(admission, NewUniquenessGuard(), curRepo),
		accounts:     NewAccountService(admission, NewReferenceResolver(curRepo), memAccounts{ledger}),
		transactions: NewTransactionService(admission, memTransactions{ledger}),
	}
}

func form(kv ...string) domain.FieldSet {
	values := map[string][]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = append(values[kv[i]], kv[i+1])
	}
	return domain.NewFieldSet(values)
}
