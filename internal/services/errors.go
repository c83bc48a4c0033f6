package services

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned for rows that do not exist or are not visible to
// the requester.
var ErrNotFound = errors.New("not found")

// notFound maps gorm's missing record error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
