package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("file does not exist")

// FileStorage keeps the agent's state files
type FileStorage interface {
	// Write replaces the file at path atomically
	Write(ctx context.Context, path string, data io.Reader) error

	// Read opens a file; ErrNotExist when it is missing
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file; deleting a missing file is not an error
	Delete(ctx context.Context, path string) error

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
