package filestorage

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectStorage abstracts where uploaded course material and exam audio
// ends up. Keys are slash-separated paths; Upload returns the public URL
// the stored object can be fetched from.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, fileURL string) error

	// DeletePrefix removes every object stored under the given key prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// UniqueKey builds a collision-free object key under prefix, keeping the
// original file extension.
func UniqueKey(prefix, filename string) string {
	return prefix + "/" + uuid.New().String() + filepath.Ext(filename)
}
