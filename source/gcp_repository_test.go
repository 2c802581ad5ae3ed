package source

import (
	"context"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/fullstorydev/emulators/storage/gcsemu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGcpStorageRepository(t *testing.T) {
	// start an in-memory Storage test server
	svr, err := gcsemu.NewServer("127.0.0.1:9024", gcsemu.Options{})
	require.NoError(t, err)
	defer svr.Close()
	t.Setenv("STORAGE_EMULATOR_HOST", "http://127.0.0.1:9024")

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	require.NoError(t, err)
	defer client.Close()

	bucket := client.Bucket("agents")
	require.NoError(t, bucket.Create(ctx, "test-project", nil))
	w := bucket.Object("agent.yaml").NewWriter(ctx)
	_, err = w.Write([]byte(desiredYAML))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	repo := &GcpStorageRepository{Name: "gcs", BucketName: "agents", ObjectName: "agent.yaml"}
	require.NoError(t, repo.Refresh())
	assert.Equal(t, desiredYAML, string(repo.GetRawData()))

	hook := captureLogs(t)
	missing := &GcpStorageRepository{Name: "gcs-missing", BucketName: "agents", ObjectName: "nope.yaml", Client: client}
	assert.Error(t, missing.Refresh())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "error opening object", entry.Message)
	assert.Equal(t, "gcs-missing", entry.Data["repository"])
}
