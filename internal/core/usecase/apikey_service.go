package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// APIKeyService handles the unauthenticated "issue key" request, which
// accepts no fields.
type APIKeyService struct {
	shapes  *ShapeValidator
	tenants *TenantService
}

func NewAPIKeyService(shapes *ShapeValidator, tenants *TenantService) *APIKeyService {
	return &APIKeyService{shapes: shapes, tenants: tenants}
}

func (s *APIKeyService) Issue(ctx context.Context, fields domain.FieldSet) (domain.APIKey, error) {
	if err := s.shapes.Validate(domain.APIKeySpec, fields); err != nil {
		return domain.APIKey{}, err
	}
	return s.tenants.Issue(ctx)
}
