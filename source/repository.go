// Package source holds desired-state documents for an agent configuration.
//
// A desired-state document is YAML:
//
//	state: present
//	config:
//	  diagnostic_level: 3
//	  ssl: yes
//
// Repositories fetch the document from a file, an HTTP endpoint, a git
// repository, an S3 bucket or a GCS bucket and keep the last good copy.
package source

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sardine-ai/ctmagent-config/model"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Repository is a named source of a desired-state document.
type Repository interface {
	// GetName returns the name of the repository.
	GetName() string
	// GetData returns the top-level entry of the document named key.
	GetData(key string) (data interface{}, isPresent bool)
	// GetRawData returns the document as fetched.
	GetRawData() []byte
	// Refresh fetches the document again.
	Refresh() error
}

// Desired decodes the document held by repo.
func Desired(repo Repository) (model.DesiredState, error) {
	desired := model.DesiredState{State: model.StatePresent, Config: map[string]interface{}{}}

	if raw, ok := repo.GetData("state"); ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return model.DesiredState{}, fmt.Errorf("%s: state must be a string, got %T", repo.GetName(), raw)
		}
		state, err := model.ParseState(s)
		if err != nil {
			return model.DesiredState{}, fmt.Errorf("%s: %w", repo.GetName(), err)
		}
		desired.State = state
	}

	raw, ok := repo.GetData("config")
	if !ok || raw == nil {
		logrus.WithField("repository", repo.GetName()).Warn("desired state has no config section")
		return desired, nil
	}
	config, ok := raw.(map[string]interface{})
	if !ok {
		return model.DesiredState{}, fmt.Errorf("%s: config must be a mapping, got %T", repo.GetName(), raw)
	}
	for k, v := range config {
		desired.Config[k] = v
	}
	return desired, nil
}

// parse unmarshals a document. An empty document is an empty map.
func parse(data []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}

// Options configures NewRepository.
type Options struct {
	Name     string
	Path     string // file path, path inside a git repository, or object name
	URL      string // HTTP or git URL
	Branch   string
	Bucket   string
	Region   string
	Endpoint string
	APIKey   string
	Username string
	Password string

	AccessKeyID     string
	SecretAccessKey string
}

// NewRepository creates a repository of the given kind: fs, http, git, s3 or gcs.
func NewRepository(kind string, o Options) (Repository, error) {
	name := o.Name
	if name == "" {
		name = "desired"
	}
	switch kind {
	case "fs", "file", "":
		if o.Path == "" {
			return nil, errors.New("path is required")
		}
		return &FileRepository{Name: name, Path: o.Path}, nil
	case "http":
		if o.URL == "" {
			return nil, errors.New("url is required")
		}
		u, err := url.Parse(o.URL)
		if err != nil {
			return nil, err
		}
		return &WebRepository{Name: name, URL: u, APIKey: o.APIKey}, nil
	case "git":
		if o.URL == "" {
			return nil, errors.New("url is required")
		}
		if o.Path == "" {
			return nil, errors.New("path is required")
		}
		g, err := NewGitRepository(name, o.URL, o.Path, o.Branch, o.Username, o.Password)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "s3":
		if o.Bucket == "" || o.Path == "" {
			return nil, errors.New("bucket and path are required")
		}
		return &AwsS3Repository{
			Name: name, BucketName: o.Bucket, ObjectName: o.Path,
			Region: o.Region, Endpoint: o.Endpoint,
			AccessKeyID: o.AccessKeyID, SecretAccessKey: o.SecretAccessKey,
		}, nil
	case "gcs":
		if o.Bucket == "" || o.Path == "" {
			return nil, errors.New("bucket and path are required")
		}
		return &GcpStorageRepository{Name: name, BucketName: o.Bucket, ObjectName: o.Path}, nil
	default:
		return nil, fmt.Errorf("unknown repository type %q", kind)
	}
}
