// Package client keeps an agent configuration in line with a desired-state
// repository by reconciling it on an interval.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sardine-ai/ctmagent-config/manager"
	"github.com/sardine-ai/ctmagent-config/model"
	"github.com/sardine-ai/ctmagent-config/source"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by the getters for a key the configuration does not have.
var ErrNotFound = errors.New("config not found")

type Client struct {
	Repository      source.Repository
	Manager         *manager.Manager
	RefreshInterval time.Duration
	CheckMode       bool
	cancel          context.CancelFunc
	done            chan struct{}

	reconcileMu sync.Mutex

	mu      sync.RWMutex
	last    model.Result
	lastErr error
	runs    int
}

// Option configures a Client.
type Option func(*Client)

// WithCheckMode makes every reconcile report what would change without
// writing.
func WithCheckMode() Option {
	return func(c *Client) {
		c.CheckMode = true
	}
}

// NewClient creates a Client and reconciles once before returning. When
// refreshInterval is positive a background goroutine reconciles again on
// every tick until Close is called. The error of the first reconcile is
// returned together with the client so the caller can decide whether a
// failing start is fatal.
func NewClient(ctx context.Context, repository source.Repository, mgr *manager.Manager, refreshInterval time.Duration, opts ...Option) (*Client, error) {
	ctx, cancel := context.WithCancel(ctx)
	client := &Client{
		Repository:      repository,
		Manager:         mgr,
		RefreshInterval: refreshInterval,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}

	_, err := client.Reconcile()
	if err != nil {
		logrus.WithError(err).Error("error reconciling agent configuration")
	}

	if refreshInterval > 0 {
		go refresh(ctx, client)
	} else {
		close(client.done)
	}
	return client, err
}

// refresh reconciles on every tick of the refresh interval and stops when
// ctx is canceled.
func refresh(ctx context.Context, client *Client) {
	defer close(client.done)
	ticker := time.NewTicker(client.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := client.Reconcile(); err != nil {
				logrus.WithError(err).Error("error reconciling agent configuration")
			}
		case <-ctx.Done():
			return
		}
	}
}

// Reconcile fetches the desired state and applies it. A repository that
// cannot be refreshed leaves the agent untouched.
func (c *Client) Reconcile() (model.Result, error) {
	c.reconcileMu.Lock()
	result, err := c.reconcile()
	c.reconcileMu.Unlock()

	c.mu.Lock()
	c.runs++
	c.lastErr = err
	if err == nil {
		c.last = result
	}
	c.mu.Unlock()
	return result, err
}

func (c *Client) reconcile() (model.Result, error) {
	log := logrus.WithField("repository", c.Repository.GetName())
	if err := c.Repository.Refresh(); err != nil {
		return model.Result{}, fmt.Errorf("refreshing %s: %w", c.Repository.GetName(), err)
	}
	desired, err := source.Desired(c.Repository)
	if err != nil {
		return model.Result{}, err
	}

	var opts []manager.Option
	if c.CheckMode {
		opts = append(opts, manager.WithCheckMode())
	}
	result, err := c.Manager.Apply(desired, opts...)
	if err != nil {
		if result.Changed {
			log.WithError(err).WithField("keys", result.ChangedKeys).Warn("agent configuration partially reconciled")
		}
		return result, err
	}
	if result.Changed {
		log.WithField("keys", result.ChangedKeys).Info("agent configuration reconciled")
	} else {
		log.Debug("agent configuration already up to date")
	}
	return result, nil
}

// LastResult returns the result of the last successful reconcile, how many
// attempts were made and the error of the last attempt.
func (c *Client) LastResult() (model.Result, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.runs, c.lastErr
}

// Close stops the background reconcile loop and waits for it to return.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

// GetConfig reads the current value of the named key from the agent and
// stores it in the provided data pointer.
func (c *Client) GetConfig(name string, data interface{}) error {
	config, err := c.value(name)
	if err != nil {
		return err
	}
	marshal, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(marshal, data)
}

// GetConfigString reads a string key from the agent.
func (c *Client) GetConfigString(name string) (string, error) {
	config, err := c.value(name)
	if err != nil {
		return "", err
	}
	configString, ok := config.(string)
	if !ok {
		return "", fmt.Errorf("config %s is not a string", name)
	}
	return configString, nil
}

// GetConfigInt reads an integer key from the agent.
func (c *Client) GetConfigInt(name string) (int, error) {
	config, err := c.value(name)
	if err != nil {
		return 0, err
	}
	configInt, ok := config.(int)
	if !ok {
		return 0, fmt.Errorf("config %s is not an int", name)
	}
	return configInt, nil
}

// GetConfigBool reads a boolean key from the agent.
func (c *Client) GetConfigBool(name string) (bool, error) {
	config, err := c.value(name)
	if err != nil {
		return false, err
	}
	configBool, ok := config.(bool)
	if !ok {
		return false, fmt.Errorf("config %s is not a bool", name)
	}
	return configBool, nil
}

func (c *Client) value(name string) (interface{}, error) {
	snapshot, err := c.Manager.Read()
	if err != nil {
		return nil, err
	}
	v, ok := snapshot[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return v, nil
}
