package sqlite

import (
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// translateError maps constraint failures raised by the driver onto the
// domain's storage sentinels and leaves every other error as is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", domain.ErrUniqueViolation, err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %v", domain.ErrForeignKeyViolation, err)
	}

	// Connections without extended result codes only report the primary code.
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return fmt.Errorf("%w: %v", domain.ErrUniqueViolation, err)
		case strings.Contains(msg, "FOREIGN KEY"):
			return fmt.Errorf("%w: %v", domain.ErrForeignKeyViolation, err)
		}
	}
	return err
}
