package ports

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// Every method takes the owning tenant; implementations must filter on it.

type CurrencyRepository interface {
	Create(ctx context.Context, c domain.Currency) (domain.Currency, error)
	FindByID(ctx context.Context, tenantID string, id int64) (domain.Currency, error)
	List(ctx context.Context, tenantID string) ([]domain.Currency, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	List(ctx context.Context, tenantID string) ([]domain.Account, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	List(ctx context.Context, tenantID string) ([]domain.Transaction, error)
}
