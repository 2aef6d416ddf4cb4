package persistence

import (
	"errors"

	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique constraint violation.
// It relies on gorm.Config.TranslateError being enabled.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFoundOr maps gorm.ErrRecordNotFound to a named NOT_FOUND domain error
func notFoundOr(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// versionConflict builds the error returned when an optimistic update matched no row
func versionConflict(entity string) error {
	return shared.NewDomainError("CONCURRENCY_CONFLICT", entity+" was modified by another request, please retry")
}
