// Package manager reconciles the configuration of a Control-M/Agent with a
// desired state.
//
// Apply writes one value at a time and is not transactional: when a write
// fails, the values written before it stay in place. Some settings only take
// effect after the agent service restarts; Apply never restarts the service,
// it reports those keys in Result.RestartRequired and the caller decides.
package manager

import (
	"errors"

	"github.com/sardine-ai/ctmagent-config/model"
	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/sardine-ai/ctmagent-config/store"
	"github.com/sirupsen/logrus"
)

// Manager reads and applies agent settings through a Store. It assumes
// exclusive access to the store during an apply.
type Manager struct {
	Schema *schema.Schema
	Store  store.Store
}

// New creates a Manager.
func New(s *schema.Schema, st store.Store) *Manager {
	return &Manager{Schema: s, Store: st}
}

type options struct {
	checkMode bool
}

// Option configures an Apply.
type Option func(*options)

// WithCheckMode computes the result of an apply without writing anything.
func WithCheckMode() Option {
	return func(o *options) {
		o.checkMode = true
	}
}

// current returns the effective value of k and whether it is explicitly
// stored. Missing values fall back to the schema default.
func (m *Manager) current(k schema.Key) (interface{}, bool, error) {
	raw, found, err := m.Store.Get(k.Location)
	if err != nil {
		return nil, false, &ReadError{Key: k.Name, Location: k.Location.String(), Err: err}
	}
	if !found {
		return k.DefaultValue(), false, nil
	}
	v, err := m.Schema.Decode(k.Name, raw)
	if err != nil {
		return nil, true, &ReadError{Key: k.Name, Location: k.Location.String(), Err: err}
	}
	return v, true, nil
}

// Read returns the value of every schema key. It stops at the first key whose
// location cannot be read.
func (m *Manager) Read() (model.Snapshot, error) {
	keys := m.Schema.Keys()
	snapshot := make(model.Snapshot, len(keys))
	for _, k := range keys {
		v, _, err := m.current(k)
		if err != nil {
			logrus.WithError(err).WithField("store", m.Store.Name()).Error("error reading agent configuration")
			return nil, err
		}
		snapshot[k.Name] = v
	}
	return snapshot, nil
}

// validate checks every supplied key before anything is written.
func (m *Manager) validate(state model.State, config map[string]interface{}) (map[string]interface{}, error) {
	targets := make(map[string]interface{}, len(config))
	for name, raw := range config {
		if state == model.StateAbsent {
			k, ok := m.Schema.Lookup(name)
			if !ok {
				return nil, &schema.ValidationError{Key: name, Constraint: "unknown configuration key"}
			}
			if k.ReadOnly {
				return nil, &schema.ValidationError{Key: name, Constraint: "read-only key"}
			}
			continue
		}
		v, err := m.Schema.Validate(name, raw)
		if err != nil {
			return nil, err
		}
		targets[name] = v
	}
	return targets, nil
}

// Apply reconciles the supplied keys with the store and returns the
// configuration after the apply. With StatePresent (or an empty state) the
// supplied values are written when they differ from the current ones; with
// StateAbsent the stored values of the supplied keys are removed and their
// map values are ignored.
//
// A stored value that does not decode is replaced (or removed) like any
// other differing value. When the snapshot read after the writes fails, the
// returned Result still lists the changed keys, with a nil Config.
func (m *Manager) Apply(desired model.DesiredState, opts ...Option) (model.Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	state, err := model.ParseState(string(desired.State))
	if err != nil {
		return model.Result{}, err
	}
	targets, err := m.validate(state, desired.Config)
	if err != nil {
		logrus.WithError(err).Debug("desired configuration rejected")
		return model.Result{}, err
	}

	log := logrus.WithField("store", m.Store.Name())
	var changed, restart []string
	pending := map[string]interface{}{}
	for _, k := range m.Schema.Keys() {
		if _, ok := desired.Config[k.Name]; !ok {
			continue
		}
		cur, stored, err := m.current(k)
		var verr *schema.ValidationError
		switch {
		case errors.As(err, &verr):
			// An invalid stored value differs from any target.
			log.WithError(err).WithField("key", k.Name).Warn("stored value is invalid, replacing it")
			cur, stored = nil, true
		case err != nil:
			log.WithError(err).Error("error reading agent configuration")
			return model.Result{Changed: len(changed) > 0, ChangedKeys: changed, RestartRequired: restart, CheckMode: o.checkMode}, err
		}

		if state == model.StateAbsent {
			if !stored {
				continue
			}
			if !o.checkMode {
				if err := m.Store.Delete(k.Location); err != nil {
					return model.Result{}, m.applyError(k, err, changed)
				}
			}
			pending[k.Name] = k.DefaultValue()
		} else {
			target := targets[k.Name]
			if cur == target {
				log.WithField("key", k.Name).Debug("setting unchanged")
				continue
			}
			encoded, err := m.Schema.Encode(k.Name, target)
			if err != nil {
				return model.Result{}, err
			}
			if !o.checkMode {
				if err := m.Store.Set(k.Location, encoded); err != nil {
					return model.Result{}, m.applyError(k, err, changed)
				}
			}
			pending[k.Name] = target
		}

		log.WithFields(logrus.Fields{
			"key":   k.Name,
			"from":  cur,
			"to":    pending[k.Name],
			"check": o.checkMode,
		}).Info("setting changed")
		changed = append(changed, k.Name)
		if k.RequiresRestart {
			restart = append(restart, k.Name)
		}
	}

	if len(restart) > 0 && !o.checkMode {
		log.WithField("keys", restart).Warn("restart the agent service for these settings to take effect")
	}
	result := model.Result{
		Changed:         len(changed) > 0,
		ChangedKeys:     changed,
		RestartRequired: restart,
		CheckMode:       o.checkMode,
	}

	// The writes above stay reported when the final read fails.
	snapshot, err := m.Read()
	if err != nil {
		return result, err
	}
	if o.checkMode {
		for name, v := range pending {
			snapshot[name] = v
		}
	}
	result.Config = snapshot
	return result, nil
}

func (m *Manager) applyError(k schema.Key, err error, applied []string) error {
	aerr := &ApplyError{
		Key:      k.Name,
		Location: k.Location.String(),
		Err:      err,
		Applied:  append([]string(nil), applied...),
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"key":     k.Name,
		"store":   m.Store.Name(),
		"applied": aerr.Applied,
	}).Error("error writing agent configuration")
	return aerr
}
