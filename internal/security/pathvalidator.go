package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes shard directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
)

// PathValidator confines shard import/export file operations to a single
// base directory using Go 1.24's os.Root API. Shard file names often come
// straight from command-line arguments, so traversal and symlink escapes
// are rejected before any read or write happens.
type PathValidator struct {
	baseRoot *os.Root
	basePath string
}

// New creates a PathValidator rooted at the given shard directory
func New(basePath string) (*PathValidator, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open shard directory: %w", err)
	}

	return &PathValidator{
		baseRoot: root,
		basePath: absPath,
	}, nil
}

// Close releases resources held by the PathValidator
func (pv *PathValidator) Close() error {
	if pv.baseRoot != nil {
		return pv.baseRoot.Close()
	}
	return nil
}

// ValidateAndNormalize validates a user-provided shard file path relative
// to the base directory and returns a normalized relative path. It rejects
// empty paths, absolute paths, escaping paths and reserved names.
func (pv *PathValidator) ValidateAndNormalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(userPath) {
		if filepath.IsAbs(userPath) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	cleanPath := filepath.Clean(userPath)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, cleanPath)
	}

	// Containment double-check after joining with the base.
	absPath := filepath.Join(pv.basePath, cleanPath)
	relPath, err := filepath.Rel(pv.basePath, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return filepath.ToSlash(relPath), nil
}

// Resolve validates a path and returns the platform path inside the base
// directory, suitable for read and write calls
func (pv *PathValidator) Resolve(userPath string) (string, error) {
	relPath, err := pv.ValidateAndNormalize(userPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(pv.basePath, filepath.FromSlash(relPath)), nil
}
