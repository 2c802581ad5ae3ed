package source

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// document is the last good copy of a desired-state document. Repositories
// embed it and hand every fetched body to load.
type document struct {
	mu      sync.RWMutex
	data    map[string]interface{}
	rawData []byte
}

// GetData returns the top-level entry named key.
func (d *document) GetData(key string) (data interface{}, isPresent bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	data, isPresent = d.data[key]
	return data, isPresent
}

// GetRawData returns the document as last fetched.
func (d *document) GetRawData() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rawData
}

// load parses raw and replaces the held copy. The held copy survives a
// body that does not parse.
func (d *document) load(raw []byte) error {
	parsed, err := parse(raw)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.data = parsed
	d.rawData = raw
	d.mu.Unlock()
	return nil
}

// failed logs err against the named repository and returns it.
func failed(repository, msg string, err error) error {
	logrus.WithError(err).WithField("repository", repository).Debug(msg)
	return err
}
