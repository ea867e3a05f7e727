package usecase

import (
	"context"
	"errors"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
)

type AccountService struct {
	admission *Admission
	resolver  *ReferenceResolver
	repo      ports.AccountRepository
}

func NewAccountService(admission *Admission, resolver *ReferenceResolver, repo ports.AccountRepository) *AccountService {
	return &AccountService{admission: admission, resolver: resolver, repo: repo}
}

func (s *AccountService) Create(ctx context.Context, fields domain.FieldSet) (domain.Account, error) {
	tenantID, err := s.admission.Admit(ctx, domain.AccountSpec, fields)
	if err != nil {
		return domain.Account{}, err
	}

	// Numeric shape was confirmed by the value checks.
	currencyID, _ := fields.Int(domain.FieldCurrencyID)
	cur, err := s.resolver.Currency(ctx, tenantID, currencyID)
	if err != nil {
		return domain.Account{}, err
	}

	created, err := s.repo.Create(ctx, domain.Account{
		TenantID:   tenantID,
		CurrencyID: cur.ID,
		Title:      fields.Value(domain.FieldTitle),
	})
	if errors.Is(err, domain.ErrForeignKeyViolation) {
		return domain.Account{}, &domain.ReferenceError{Field: domain.FieldCurrencyID, ID: currencyID}
	}
	if err != nil {
		return domain.Account{}, err
	}
	return created, nil
}

func (s *AccountService) List(ctx context.Context, fields domain.FieldSet) ([]domain.Account, error) {
	tenantID, err := s.admission.Admit(ctx, domain.TenantSpec, fields)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID)
}
