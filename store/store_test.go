package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dbgLevel = schema.Location{Path: schema.ConfigPath, Name: "DBGLVL"}
	agentDir = schema.Location{Path: schema.ConfigPath, Name: "AGENT_DIR"}
	rootName = schema.Location{Name: "DefaultAgentName"}
)

// exerciseStore runs the Store contract against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, found, err := s.Get(dbgLevel)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(dbgLevel, "3"))
	require.NoError(t, s.Set(rootName, "Default"))

	v, found, err := s.Get(dbgLevel)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3", v)

	v, found, err = s.Get(rootName)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Default", v)

	require.NoError(t, s.Delete(dbgLevel))
	_, found, err = s.Get(dbgLevel)
	require.NoError(t, err)
	assert.False(t, found)

	// deleting twice is fine
	require.NoError(t, s.Delete(dbgLevel))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(nil))
}

func TestMemoryStoreZeroValue(t *testing.T) {
	var m MemoryStore
	_, ok, err := m.Get(dbgLevel)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, m.Delete(dbgLevel))

	require.NoError(t, m.Set(dbgLevel, "1"))
	v, ok, err := m.Get(dbgLevel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMemoryStoreErrorInjection(t *testing.T) {
	m := NewMemoryStore(map[string]string{`CONFIG\DBGLVL`: "1"})
	denied := errors.New("access denied")

	m.FailOn[agentDir.String()] = denied
	_, _, err := m.Get(agentDir)
	assert.ErrorIs(t, err, denied)
	v, _, err := m.Get(dbgLevel)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	m.SetErr = denied
	assert.ErrorIs(t, m.Set(dbgLevel, "2"), denied)
	assert.Equal(t, 0, m.Writes())

	m.SetErr = nil
	require.NoError(t, m.Set(dbgLevel, "2"))
	assert.Equal(t, 1, m.Writes())
	assert.Equal(t, map[string]string{`CONFIG\DBGLVL`: "2"}, m.Values())

	m.DeleteErr = denied
	assert.ErrorIs(t, m.Delete(dbgLevel), denied)
}

func TestYAMLFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent", "config.yaml")
	s, err := NewYAMLFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path, s.Name())

	exerciseStore(t, s)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DefaultAgentName: Default\n", string(data))
}

func TestYAMLFileStoreReadsExistingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	image := `CONFIG\DBGLVL: "2"
CONFIG\AGENT_DIR: 'C:\Program Files\Control-M Agent\Default\'
`
	require.NoError(t, os.WriteFile(path, []byte(image), 0o644))

	s, err := NewYAMLFileStore(path)
	require.NoError(t, err)

	v, found, err := s.Get(agentDir)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `C:\Program Files\Control-M Agent\Default\`, v)
}

func TestYAMLFileStoreCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o644))

	s, err := NewYAMLFileStore(path)
	require.NoError(t, err)

	_, _, err = s.Get(dbgLevel)
	assert.Error(t, err)
	assert.Error(t, s.Set(dbgLevel, "1"))
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		agent    string
		loc      schema.Location
		expected string
	}{
		{"", dbgLevel, DefaultRegistryBase + `\CONFIG`},
		{"Default", dbgLevel, DefaultRegistryBase + `\CONFIG`},
		{"default", dbgLevel, DefaultRegistryBase + `\CONFIG`},
		{"AGT2", dbgLevel, DefaultRegistryBase + `\AGT2\CONFIG`},
		{"AGT2", rootName, DefaultRegistryBase},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolvePath(DefaultRegistryBase, tt.agent, tt.loc))
	}
}
