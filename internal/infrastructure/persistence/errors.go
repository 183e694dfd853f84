package persistence

import (
	"errors"

	"github.com/erp/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps driver-level errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists.WithCause(err)
	default:
		return err
	}
}
