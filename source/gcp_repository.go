package source

import (
	"context"
	"io"
	"sync"

	"cloud.google.com/go/storage"
)

// GcpStorageRepository reads the desired-state document from a GCS object.
type GcpStorageRepository struct {
	document
	Name       string
	BucketName string
	ObjectName string
	Client     *storage.Client // created from the environment on first refresh when nil

	clientOnce    sync.Once
	clientInitErr error
}

// GetName returns the name of the configuration source.
func (g *GcpStorageRepository) GetName() string {
	return g.Name
}

// Refresh reads the object again. A missing or malformed object keeps the
// previous copy.
func (g *GcpStorageRepository) Refresh() error {
	ctx := context.Background()
	if g.Client == nil {
		g.clientOnce.Do(func() {
			g.Client, g.clientInitErr = storage.NewClient(ctx)
		})
		if g.clientInitErr != nil {
			return failed(g.Name, "error creating storage client", g.clientInitErr)
		}
	}

	reader, err := g.Client.Bucket(g.BucketName).Object(g.ObjectName).NewReader(ctx)
	if err != nil {
		return failed(g.Name, "error opening object", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return failed(g.Name, "error reading object", err)
	}
	if err := g.load(raw); err != nil {
		return failed(g.Name, "error unmarshalling object", err)
	}
	return nil
}
