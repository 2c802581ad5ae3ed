// Package store provides the persisted side of an agent configuration. A
// Store reads and writes string values at schema locations; the Windows
// registry is the production backend, the others serve offline images and
// tests.
package store

import (
	"errors"

	"github.com/sardine-ai/ctmagent-config/schema"
)

// ErrUnsupported is returned when a backend is not available on this platform.
var ErrUnsupported = errors.New("store backend not supported on this platform")

// Store abstracts the storage of agent settings.
type Store interface {
	// Get returns the stored value. A missing value is reported with
	// found == false and a nil error.
	Get(loc schema.Location) (value string, found bool, err error)

	// Set writes the value, creating its parent path when needed.
	Set(loc schema.Location, value string) error

	// Delete removes the value. Deleting a missing value is not an error.
	Delete(loc schema.Location) error

	// Name identifies the store in logs.
	Name() string
}
