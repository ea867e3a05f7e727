package usecase

import (
	"errors"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// UniquenessGuard turns a storage uniqueness violation raised by insert into
// a DuplicateError for field. The check and the insert are one storage
// statement, so concurrent identical creates cannot both succeed.
type UniquenessGuard struct{}

func NewUniquenessGuard() *UniquenessGuard {
	return &UniquenessGuard{}
}

func (g *UniquenessGuard) Insert(field, value string, insert func() error) error {
	err := insert()
	if errors.Is(err, domain.ErrUniqueViolation) {
		return &domain.DuplicateError{Field: field, Value: value}
	}
	return err
}
