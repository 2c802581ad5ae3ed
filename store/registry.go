package store

import (
	"strings"

	"github.com/sardine-ai/ctmagent-config/schema"
)

// DefaultRegistryBase is the product key of Control-M/Agent under
// HKEY_LOCAL_MACHINE.
const DefaultRegistryBase = `SOFTWARE\BMC Software\Control-M/Agent`

// DefaultAgent is the name of the agent created by the first installation.
const DefaultAgent = "Default"

// resolvePath maps a schema location to a registry key path. The default
// agent keeps its settings directly under the product key, other instances
// under a subkey named after them. Values without a path live on the
// product key itself.
func resolvePath(base, agent string, loc schema.Location) string {
	if loc.Path == "" {
		return base
	}
	if agent == "" || strings.EqualFold(agent, DefaultAgent) {
		return base + `\` + loc.Path
	}
	return base + `\` + agent + `\` + loc.Path
}
