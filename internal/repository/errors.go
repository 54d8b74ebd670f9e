package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nretrorsum/work-test/internal/apperr"
)

// classify translates a GORM error into the apperr taxonomy. Errors that are
// already classified pass through unchanged.
func classify(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.Conflict, err, msg)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(apperr.Conflict, err, msg)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.NotFound, err, msg)
	default:
		return apperr.Wrap(apperr.Store, err, msg)
	}
}
