package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is the encoding of a catalog file, derived from its extension
type Format string

const (
	// FormatJSON is used for .json files
	FormatJSON Format = "json"
	// FormatYAML is used for .yaml and .yml files
	FormatYAML Format = "yaml"
)

// FormatOf returns the catalog format for a file name
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension: %s", path)
	}
}

// ResolveFile validates a catalog file path and returns its cleaned absolute form.
// It checks the extension, that the path is a regular file, and that its size is within maxSize.
func ResolveFile(path string, maxSize int64) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path provided")
	}

	if _, err := FormatOf(path); err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", path)
	}

	if info.Size() > maxSize {
		return "", fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxSize)
	}

	return absPath, nil
}
