package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
	"github.com/atvirokodosprendimai/bookwerx/internal/core/ports"
)

type TransactionService struct {
	admission *Admission
	repo      ports.TransactionRepository
}

func NewTransactionService(admission *Admission, repo ports.TransactionRepository) *TransactionService {
	return &TransactionService{admission: admission, repo: repo}
}

func (s *TransactionService) Create(ctx context.Context, fields domain.FieldSet) (domain.Transaction, error) {
	tenantID, err := s.admission.Admit(ctx, domain.TransactionSpec, fields)
	if err != nil {
		return domain.Transaction{}, err
	}
	return s.repo.Create(ctx, domain.Transaction{
		TenantID: tenantID,
		Notes:    fields.Value(domain.FieldNotes),
	})
}

func (s *TransactionService) List(ctx context.Context, fields domain.FieldSet) ([]domain.Transaction, error) {
	tenantID, err := s.admission.Admit(ctx, domain.TenantSpec, fields)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID)
}
