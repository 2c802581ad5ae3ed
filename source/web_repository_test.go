package source

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebRepository(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(desiredYAML))
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	repo := &WebRepository{Name: "web", URL: u, APIKey: "secret"}
	require.NoError(t, repo.Refresh())

	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, desiredYAML, string(repo.GetRawData()))
	desired, err := Desired(repo)
	require.NoError(t, err)
	assert.Equal(t, 3, desired.Config["diagnostic_level"])
}

func TestWebRepositoryErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	repo := &WebRepository{Name: "web", URL: u}
	err = repo.Refresh()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Nil(t, repo.GetRawData())
}

func TestWebRepositoryLogsFailures(t *testing.T) {
	hook := captureLogs(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	repo := &WebRepository{Name: "web", URL: u}
	require.Error(t, repo.Refresh())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "web", entry.Data["repository"])
	assert.Contains(t, entry.Data[logrus.ErrorKey].(error).Error(), "500")
}
