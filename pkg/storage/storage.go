// Package storage defines the FileStore interface used to archive inbound
// media (voice clips, images) before they are handed to the transcription
// and vision collaborators. It abstracts the backend so deployments can
// choose local disk or an S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileStore is a minimal interface for blob storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Put stores data under the named path, overwriting any existing blob.
	// Parent directories are created automatically.
	Put(ctx context.Context, path string, data []byte) error

	// Read returns the blob stored under the named path.
	// If the blob does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a blob is stored under the named path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the named blob. Deleting an absent blob is a no-op.
	Delete(ctx context.Context, path string) error
}

// Open opens a FileStore from a URL:
//
//	local:///var/lib/anima/media
//	s3://bucket/prefix
//
// s3Client must be pre-configured (credentials, region, endpoint) and is
// required for s3 URLs; local URLs ignore it.
func Open(url string, s3Client *s3.Client) (FileStore, error) {
	switch {
	case strings.HasPrefix(url, "local://"):
		return NewLocal(strings.TrimPrefix(url, "local://"))
	case strings.HasPrefix(url, "s3://"):
		rest := strings.TrimPrefix(url, "s3://")
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("storage: s3 URL missing bucket: %s", url)
		}
		if s3Client == nil {
			return nil, fmt.Errorf("storage: s3 URL requires a configured client")
		}
		return NewS3(s3Client, bucket, prefix), nil
	default:
		return nil, fmt.Errorf("storage: unsupported URL scheme: %s", url)
	}
}
