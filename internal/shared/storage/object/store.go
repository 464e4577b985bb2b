package object

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"resume-generator/internal/shared/util"
)

// ObjectStore archives uploaded source files.
type ObjectStore interface {
	Save(ctx context.Context, owner, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds a storage key namespaced by the hashed owner with a random prefix.
func NewKey(owner, fileName string) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashUserKey(owner), uuid.NewString()+"_"+sanitized), nil
}
