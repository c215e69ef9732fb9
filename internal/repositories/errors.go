package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional write matched no row
	ErrConflict = errors.New("conditional update matched no rows")

	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
)

// Translate maps gorm errors onto the repository sentinels, keeping the
// original error in the chain.
func Translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsNotFound reports whether err means the row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
