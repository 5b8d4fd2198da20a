// Package storage holds uploaded audio between the API accepting an async job
// and a worker picking it up.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

// Storage is a flat object store addressed by relative key.
type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

// UploadKey is the object key for a job's source file.
func UploadKey(processID string) string {
	return "uploads/" + processID
}
