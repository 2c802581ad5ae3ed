package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// YAMLFileStore implements Store on a YAML file holding a flat map of
// `path\name` to value. It stands in for the registry of an agent that is not
// reachable, and lets a configuration be prepared before installation.
type YAMLFileStore struct {
	sync.Mutex
	Path string // File path of the YAML image
}

// NewYAMLFileStore creates a YAMLFileStore for path, made absolute.
func NewYAMLFileStore(path string) (*YAMLFileStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		logrus.WithError(err).Error("error getting absolute path")
		return nil, err
	}
	return &YAMLFileStore{Path: abs}, nil
}

func (f *YAMLFileStore) Name() string {
	return "file:" + f.Path
}

// load reads the image. A missing file is an empty image.
func (f *YAMLFileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		logrus.WithField("path", f.Path).Debug("error reading file")
		return nil, err
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		logrus.WithField("path", f.Path).Debug("error unmarshalling file")
		return nil, err
	}
	return values, nil
}

// save rewrites the image through a temporary file so readers never see a
// partial document.
func (f *YAMLFileStore) save(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f *YAMLFileStore) Get(loc schema.Location) (string, bool, error) {
	f.Lock()
	defer f.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[loc.String()]
	return v, ok, nil
}

func (f *YAMLFileStore) Set(loc schema.Location, value string) error {
	f.Lock()
	defer f.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[loc.String()] = value
	return f.save(values)
}

func (f *YAMLFileStore) Delete(loc schema.Location) error {
	f.Lock()
	defer f.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[loc.String()]; !ok {
		return nil
	}
	delete(values, loc.String())
	return f.save(values)
}
