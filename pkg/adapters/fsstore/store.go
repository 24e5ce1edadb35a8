// Package fsstore implements the template store over a plain directory
// layout: one directory per category, one text file per template. Anything
// beyond plain-text extraction (word-processor formats, PDF) belongs to a
// richer store implementation, not here.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plumedoc/plume/pkg/domain"
)

// Store implements ports.TemplateStore on the local filesystem.
type Store struct {
	root string
}

// New creates a store rooted at dir. The directory does not need to exist
// yet; it is created lazily on the first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

// ListCategories returns the category directories, sorted. A missing root is
// an empty catalog, not an error.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read template root: %w", err)
	}

	var categories []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			categories = append(categories, e.Name())
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// ListModels returns descriptors for the files of one category, sorted by
// name. An unknown category yields an empty slice.
func (s *Store) ListModels(ctx context.Context, category string) ([]domain.TemplateDescriptor, error) {
	dir := filepath.Join(s.root, filepath.Base(category))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read category %q: %w", category, err)
	}

	var models []domain.TemplateDescriptor
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		models = append(models, domain.TemplateDescriptor{
			Name:      name,
			Category:  category,
			SizeBytes: info.Size(),
			Path:      filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

// ReadText returns the raw file content.
func (s *Store) ReadText(ctx context.Context, desc domain.TemplateDescriptor) (string, error) {
	data, err := os.ReadFile(desc.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrTemplateNotFound
		}
		return "", fmt.Errorf("failed to read template %q: %w", desc.Name, err)
	}
	return string(data), nil
}

// WriteText persists text under the descriptor's category and name, creating
// the category directory when needed.
func (s *Store) WriteText(ctx context.Context, desc domain.TemplateDescriptor, text string) error {
	dir := filepath.Join(s.root, filepath.Base(desc.Category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create category %q: %w", desc.Category, err)
	}
	path := desc.Path
	if path == "" {
		path = filepath.Join(dir, desc.Name+".txt")
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write template %q: %w", desc.Name, err)
	}
	return nil
}
