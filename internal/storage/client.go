// Package storage defines the interface for object storage used to
// host book cover images and borrower ID card scans.
package storage

import (
	"context"
	"io"
)

// Client defines the interface for object storage operations.
type Client interface {
	// Upload writes content to an object path inside a bucket.
	Upload(ctx context.Context, bucket, objectPath string, content io.Reader, contentType string) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, objectPath string) error

	// PublicURL returns the publicly reachable URL for an object.
	PublicURL(bucket, objectPath string) string
}
