package storage

import (
	"context"
	"errors"
	"io"
)

/*
The storage provider interface describes the minimal set of operations
required to persist definition blobs. These must be supported by any popular
object storage implementation. Object IDs are opaque to providers.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrObjectNotFound is returned when an object is not found.
var ErrObjectNotFound = errors.New("object not found")

// Provider is the interface for a storage provider.
type Provider interface {
	// Put stores the object, replacing any existing object with the same ID.
	Put(ctx context.Context, id string, r io.Reader) error

	// Get returns a reader over the object, or ErrObjectNotFound. The caller
	// must close the reader.
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, id string) error

	String() string
}
