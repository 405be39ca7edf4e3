package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects,
// used to retain the images submitted with image-based analyses.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
