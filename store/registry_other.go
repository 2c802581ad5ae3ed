//go:build !windows

package store

// NewRegistryStore is only available on Windows.
func NewRegistryStore(agent string) (Store, error) {
	return nil, ErrUnsupported
}
