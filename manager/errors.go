package manager

import "fmt"

// ReadError reports a setting whose storage location could not be read, or
// whose stored value could not be decoded.
type ReadError struct {
	Key      string
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s (%s): %v", e.Key, e.Location, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ApplyError reports a setting whose write failed. Settings written before it
// in the same apply are left in place.
type ApplyError struct {
	Key      string
	Location string
	Err      error
	// Applied lists the keys written before the failure.
	Applied []string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("writing %s (%s): %v", e.Key, e.Location, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
