package usecase

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// ValueValidator applies per-field content rules once the shape is known to be
// right. Fields are checked in declared order and the first failure wins.
type ValueValidator struct {
	validate *validator.Validate
}

func NewValueValidator() *ValueValidator {
	return &ValueValidator{validate: validator.New()}
}

func (v *ValueValidator) Validate(spec domain.ResourceSpec, fields domain.FieldSet) error {
	for _, f := range spec.Fields {
		if !fields.Has(f.Name) {
			continue
		}
		if err := v.validateField(f, fields); err != nil {
			return err
		}
	}
	return nil
}

func (v *ValueValidator) validateField(f domain.FieldSpec, fields domain.FieldSet) error {
	value := fields.Value(f.Name)
	err := v.validate.Var(value, fieldTag(f))
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("validate %s: %w", f.Name, err)
		}
		return toValueError(f, verrs[0].Tag())
	}
	if f.Reference {
		// "number" admits digit strings too large for an int64 id.
		if _, err := fields.Int(f.Name); err != nil {
			return &domain.ValueError{Field: f.Name, Kind: domain.NotNumeric}
		}
	}
	return nil
}

func fieldTag(f domain.FieldSpec) string {
	if f.Reference {
		return "number"
	}
	presence := "required"
	if f.Optional {
		presence = "omitempty"
	}
	if f.MaxLen > 0 {
		return fmt.Sprintf("%s,max=%d", presence, f.MaxLen)
	}
	return presence
}

func toValueError(f domain.FieldSpec, tag string) *domain.ValueError {
	switch tag {
	case "max":
		return &domain.ValueError{Field: f.Name, Kind: domain.TooLong, Limit: f.MaxLen}
	case "number":
		return &domain.ValueError{Field: f.Name, Kind: domain.NotNumeric}
	default:
		return &domain.ValueError{Field: f.Name, Kind: domain.Blank}
	}
}
