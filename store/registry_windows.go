//go:build windows

package store

import (
	"errors"
	"strconv"

	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

// RegistryStore implements Store on the Windows registry of the local host.
type RegistryStore struct {
	root  registry.Key
	Base  string // Product key under HKEY_LOCAL_MACHINE
	Agent string // Agent instance name, empty or Default for the default agent
}

// NewRegistryStore opens the settings of the given agent instance.
func NewRegistryStore(agent string) (Store, error) {
	r := &RegistryStore{root: registry.LOCAL_MACHINE, Base: DefaultRegistryBase, Agent: agent}
	k, err := registry.OpenKey(r.root, r.Base, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return nil, err
	}
	k.Close()
	return r, nil
}

func (r *RegistryStore) Name() string {
	return `registry:HKLM\` + r.Base
}

func (r *RegistryStore) Get(loc schema.Location) (string, bool, error) {
	k, err := registry.OpenKey(r.root, resolvePath(r.Base, r.Agent, loc), registry.QUERY_VALUE|registry.WOW64_64KEY)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer k.Close()

	v, _, err := k.GetStringValue(loc.Name)
	if errors.Is(err, registry.ErrUnexpectedType) {
		// Some installers write numeric settings as REG_DWORD.
		n, _, err := k.GetIntegerValue(loc.Name)
		if err != nil {
			return "", false, err
		}
		logrus.WithField("value", loc.String()).Debug("read numeric registry value")
		return strconv.FormatUint(n, 10), true, nil
	}
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RegistryStore) Set(loc schema.Location, value string) error {
	k, _, err := registry.CreateKey(r.root, resolvePath(r.Base, r.Agent, loc), registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return err
	}
	defer k.Close()
	return k.SetStringValue(loc.Name, value)
}

func (r *RegistryStore) Delete(loc schema.Location) error {
	k, err := registry.OpenKey(r.root, resolvePath(r.Base, r.Agent, loc), registry.SET_VALUE|registry.WOW64_64KEY)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer k.Close()
	err = k.DeleteValue(loc.Name)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	return err
}
