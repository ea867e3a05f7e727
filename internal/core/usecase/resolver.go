package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
)

// ReferenceResolver confirms that a reference names a row owned by the
// requesting tenant.
type ReferenceResolver struct {
	currencies ports.CurrencyRepository
}

func NewReferenceResolver(currencies ports.CurrencyRepository) *ReferenceResolver {
	return &ReferenceResolver{currencies: currencies}
}

func (r *ReferenceResolver) Currency(ctx context.Context, tenantID string, id int64) (domain.Currency, error) {
	cur, err := r.currencies.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Currency{}, &domain.ReferenceError{Field: domain.FieldCurrencyID, ID: id}
		}
		return domain.Currency{}, fmt.Errorf("resolve currency: %w", err)
	}
	return cur, nil
}
