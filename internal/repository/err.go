package repository

import (
	"errors"

	"github.com/yz4230/retrigger/internal/entity"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// translate maps gorm errors onto entity errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return entity.ErrNotFound
	case errors.Is(err, ErrDuplicate):
		return entity.ErrConflict
	}
	return err
}
