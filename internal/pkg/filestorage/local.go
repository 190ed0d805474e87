package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/campusvirtual/backend/internal/pkg/logger"
)

// LocalStorage keeps uploaded objects on the local filesystem. Intended
// for development; production deployments use S3Storage.
type LocalStorage struct {
	basePath string // root directory where objects are stored
	baseURL  string // prepended to keys when building public URLs
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if it does not exist.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

func (ls *LocalStorage) Upload(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, data); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := strings.TrimRight(ls.baseURL, "/") + "/" + key
	logger.Info().Str("key", key).Str("url", url).Msg("File saved successfully")
	return url, nil
}

func (ls *LocalStorage) Delete(_ context.Context, fileURL string) error {
	key := ls.keyFromURL(fileURL)
	if key == "" {
		return nil
	}

	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

func (ls *LocalStorage) DeletePrefix(_ context.Context, prefix string) error {
	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(prefix))
	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("failed to delete prefix %s: %w", prefix, err)
	}
	return nil
}

// keyFromURL strips the configured base URL so callers can pass either a
// full URL or a bare key.
func (ls *LocalStorage) keyFromURL(fileURL string) string {
	key := strings.TrimPrefix(fileURL, strings.TrimRight(ls.baseURL, "/"))
	return strings.TrimPrefix(key, "/")
}
