package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
)

type CurrencyService struct {
	admission *Admission
	guard     *UniquenessGuard
	repo      ports.CurrencyRepository
}

func NewCurrencyService(admission *Admission, guard *UniquenessGuard, repo ports.CurrencyRepository) *CurrencyService {
	return &CurrencyService{admission: admission, guard: guard, repo: repo}
}

func (s *CurrencyService) Create(ctx context.Context, fields domain.FieldSet) (domain.Currency, error) {
	tenantID, err := s.admission.Admit(ctx, domain.CurrencySpec, fields)
	if err != nil {
		return domain.Currency{}, err
	}

	cur := domain.Currency{
		TenantID: tenantID,
		Symbol:   fields.Value(domain.FieldSymbol),
		Title:    fields.Value(domain.FieldTitle),
	}
	var created domain.Currency
	err = s.guard.Insert(domain.FieldSymbol, cur.Symbol, func() error {
		var err error
		created, err = s.repo.Create(ctx, cur)
		return err
	})
	if err != nil {
		return domain.Currency{}, err
	}
	return created, nil
}

func (s *CurrencyService) List(ctx context.Context, fields domain.FieldSet) ([]domain.Currency, error) {
	tenantID, err := s.admission.Admit(ctx, domain.TenantSpec, fields)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID)
}
