// Package storage defines where dataset artifacts are written. A FileStore
// hides whether the bytes land on local disk or in an S3-compatible bucket,
// so the exporter streams every artifact the same way.
package storage

import (
	"context"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
type FileStore interface {
	// Write opens the named file for writing, truncating any existing file.
	// The caller must close the returned WriteCloser to flush data; the
	// error from Close reports whether the write actually succeeded.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Read opens the named file for reading. A missing file yields an error
	// wrapping os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
