// Package yamlclients implements the client repository over a YAML client
// book on disk. Reads serve from memory; Create appends and rewrites the
// file.
package yamlclients

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
)

type book struct {
	Clients []domain.ClientRecord `yaml:"clients"`
}

// Repository implements ports.ClientRepository backed by a YAML file.
type Repository struct {
	path       string
	normalizer ports.Normalizer

	mu      sync.RWMutex
	records []domain.ClientRecord
}

// Open loads the client book at path. A missing file is an empty book.
func Open(path string, normalizer ports.Normalizer) (*Repository, error) {
	r := &Repository{path: path, normalizer: normalizer}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read client book: %w", err)
	}

	var b book
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse client book: %w", err)
	}
	r.records = b.Clients
	return r, nil
}

// Search matches the normalized query against name, company and email.
func (r *Repository) Search(ctx context.Context, query string) ([]domain.ClientRecord, error) {
	needle := r.normalizer.Normalize(query)
	if needle == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []domain.ClientRecord
	for _, rec := range r.records {
		haystack := r.normalizer.Normalize(rec.Name) + " " +
			r.normalizer.Normalize(rec.Company) + " " +
			strings.ToLower(rec.Email)
		if strings.Contains(haystack, needle) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// Create appends the record and rewrites the book.
func (r *Repository) Create(ctx context.Context, record domain.ClientRecord) error {
	if record.Empty() {
		return errors.New("refusing to store an empty client record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records := append(append([]domain.ClientRecord(nil), r.records...), record)
	data, err := yaml.Marshal(book{Clients: records})
	if err != nil {
		return fmt.Errorf("failed to encode client book: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write client book: %w", err)
	}
	r.records = records
	return nil
}
