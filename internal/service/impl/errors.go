package impl

import (
	"errors"

	"byod/internal/store"
)

var (
	ErrEmptyPassword = errors.New("empty password")
	ErrNilStore      = errors.New("nil store")
	// ErrUnauthenticated covers missing, malformed, expired and orphaned
	// tokens alike.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// notFound turns a missing row into the given domain error and passes
// everything else through.
func notFound(err, as error) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return as
	}
	return err
}
