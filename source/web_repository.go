package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// WebRepository fetches the desired-state document over HTTP.
type WebRepository struct {
	document
	Name   string
	URL    *url.URL
	APIKey string       // sent as X-API-Key when set
	Client *http.Client // http.DefaultClient when nil
}

// GetName returns the name of the configuration source.
func (w *WebRepository) GetName() string {
	return w.Name
}

// Refresh fetches the document. Anything but a 200 keeps the previous copy.
func (w *WebRepository) Refresh() error {
	raw, err := w.fetch(context.Background())
	if err != nil {
		return err
	}
	if err := w.load(raw); err != nil {
		return failed(w.Name, "error unmarshalling response", err)
	}
	return nil
}

func (w *WebRepository) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL.String(), nil)
	if err != nil {
		return nil, failed(w.Name, "error creating request", err)
	}
	if w.APIKey != "" {
		req.Header.Set("X-API-Key", w.APIKey)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, failed(w.Name, "error doing request", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithError(err).WithField("repository", w.Name).Debug("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetching %s: unexpected status %s", w.URL.Redacted(), resp.Status)
		return nil, failed(w.Name, "error fetching document", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(w.Name, "error reading response", err)
	}
	return raw, nil
}
