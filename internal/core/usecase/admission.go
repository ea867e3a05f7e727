package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

type fieldCheck func(spec domain.ResourceSpec, fields domain.FieldSet) error

// Admission is the gate every tenant-scoped request passes before storage is
// touched: shape, then values, then the apikey must name a known tenant.
type Admission struct {
	checks  []fieldCheck
	tenants *TenantService
}

func NewAdmission(shapes *ShapeValidator, values *ValueValidator, tenants *TenantService) *Admission {
	return &Admission{
		checks:  []fieldCheck{shapes.Validate, values.Validate},
		tenants: tenants,
	}
}

// Admit returns the id of the tenant owning the request. The apikey's own
// presence and length are judged by the field checks, so an absent key is a
// shape defect and an overlong one a value defect, while a well-formed key
// nobody issued is domain.ErrUnknownAPIKey.
func (a *Admission) Admit(ctx context.Context, spec domain.ResourceSpec, fields domain.FieldSet) (string, error) {
	for _, check := range a.checks {
		if err := check(spec, fields); err != nil {
			return "", err
		}
	}
	return a.tenants.Authenticate(ctx, fields.Value(domain.FieldAPIKey))
}
