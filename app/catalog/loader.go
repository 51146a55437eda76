package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Interface is implemented by Loader and CachedLoader
type Interface interface {
	Load(ctx context.Context) (*Snapshot, error)
	ItemsFile() string
	CategoriesFile() string
	Close() error
}

// Params contains parameters for creating a loader
type Params struct {
	ItemsFile      string
	CategoriesFile string
	MaxFileSize    int64
}

// Loader reads and validates the catalog from its item and category files
type Loader struct {
	itemsFile      string
	categoriesFile string
	maxFileSize    int64
}

// itemsDocument is the persisted layout of the items file
type itemsDocument struct {
	Items       []Entry `yaml:"items" json:"items"`
	LastUpdated string  `yaml:"lastUpdated" json:"lastUpdated"`
}

// categoriesDocument is the persisted layout of the categories file
type categoriesDocument struct {
	Categories  []Category `yaml:"categories" json:"categories"`
	LastUpdated string     `yaml:"lastUpdated" json:"lastUpdated"`
}

// NewLoader creates a new loader instance
func NewLoader(params Params) *Loader {
	return &Loader{
		itemsFile:      params.ItemsFile,
		categoriesFile: params.CategoriesFile,
		maxFileSize:    params.MaxFileSize,
	}
}

// ItemsFile returns the items file path
func (l *Loader) ItemsFile() string {
	return l.itemsFile
}

// CategoriesFile returns the categories file path
func (l *Loader) CategoriesFile() string {
	return l.categoriesFile
}

// Load reads both catalog files, validates them and returns a snapshot.
// Invalid data is reported as ValidationErrors wrapped with the offending file name.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	isCtxCanceled := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err() // nolint:wrapcheck // context errors should be returned as-is
		default:
			return nil
		}
	}

	if err := isCtxCanceled(); err != nil {
		return nil, err
	}

	var items itemsDocument
	if err := l.decode(l.itemsFile, ValidateItems, &items); err != nil {
		return nil, err
	}

	// check context between files
	if err := isCtxCanceled(); err != nil {
		return nil, err
	}

	var cats categoriesDocument
	if err := l.decode(l.categoriesFile, ValidateCategories, &cats); err != nil {
		return nil, err
	}

	snap := NewSnapshot(items.Items, cats.Categories)
	snap.ItemsUpdated = items.LastUpdated
	snap.CategoriesUpdated = cats.LastUpdated

	slog.Debug("catalog loaded", "items", len(snap.Entries), "categories", len(snap.Categories),
		"items_updated", snap.ItemsUpdated)
	return snap, nil
}

// Close is a no-op for Loader but required to implement Interface
func (l *Loader) Close() error {
	return nil
}

// decode reads a file, validates its generic form and only then decodes it into out
func (l *Loader) decode(path string, validate func(any) error, out any) error {
	resolved, err := ResolveFile(path, l.maxFileSize)
	if err != nil {
		return err
	}
	format, err := FormatOf(resolved)
	if err != nil {
		return err
	}

	// #nosec G304 - path is validated by ResolveFile
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw any
	if err := unmarshalRaw(format, data, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := validate(raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	// anything the validator let through but the typed decode rejects is still a bad catalog
	if err := unmarshal(format, data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w: %w", path, ErrInvalidCatalog, err)
	}
	return nil
}

// unmarshalRaw decodes data into a generic tree for validation. JSON numbers are kept
// as json.Number so the validator sees the literal, 18.0 is not an integer.
func unmarshalRaw(format Format, data []byte, out *any) error {
	if format != FormatJSON {
		return unmarshal(format, data, out)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err // nolint:wrapcheck // wrapped by caller
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// unmarshal decodes data in the given format
func unmarshal(format Format, data []byte, out any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, out) // nolint:wrapcheck // wrapped by caller
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		return dec.Decode(out) // nolint:wrapcheck // wrapped by caller
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
