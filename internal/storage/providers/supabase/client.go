// Package supabase implements storage.Client against the Supabase
// Storage REST API using a service role key.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/libroapp/libro/internal/config"
)

// Client talks to a Supabase Storage instance.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a Supabase storage client from configuration.
func NewClient(cfg config.Storage) *Client {
	return &Client{
		baseURL:    cfg.SupabaseURL,
		serviceKey: cfg.SupabaseServiceKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) objectURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, objectPath)
}

// Upload stores an object, overwriting any existing one at the same path.
func (c *Client) Upload(ctx context.Context, bucket, objectPath string, content io.Reader, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(bucket, objectPath), content)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	// Allows re-uploading to the same key
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("storage API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Delete removes an object. A 404 from the API is treated as success.
func (c *Client) Delete(ctx context.Context, bucket, objectPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(bucket, objectPath), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("storage API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// PublicURL returns the public object URL for buckets with public read access.
func (c *Client) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, objectPath)
}
