package ports

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type TenantRepository interface {
	Insert(ctx context.Context, key domain.APIKey) error
	Exists(ctx context.Context, tenantID string) (bool, error)
}
