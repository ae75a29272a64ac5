// Package media defines the image ingestion contract. Storage of binary
// content is delegated to a pluggable backend which assigns the public URL
// and internal reference key.
package media

import (
	"context"
	"io"
)

// Object is the stable reference a successful ingest returns.
type Object struct {
	URL string `json:"url" bson:"url"`
	Key string `json:"key" bson:"key"`
}

// Upload carries one file from a multipart request into the pipeline.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Storage is the pluggable backend. Implementations must produce keys unique
// enough to avoid collisions across uploads of the same filename.
type Storage interface {
	Put(ctx context.Context, upload Upload) (Object, error)
	Remove(ctx context.Context, key string) error
}
