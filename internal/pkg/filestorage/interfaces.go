package filestorage

import (
	"context"
	"io"
)

// Object is a stored media object
type Object struct {
	// Key identifies the object on the media host
	Key string
	// URL is the public address of the object
	URL         string
	ContentType string
	Size        int64
}

// MediaStore defines the operations of a media host
type MediaStore interface {
	// Put stores body under key and returns its public address
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*Object, error)

	// Delete removes the object stored under key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
