package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
)

// ClientBook implements ports.ClientRepository over an in-memory record
// list. Matching is substring-based over normalized text.
type ClientBook struct {
	normalizer ports.Normalizer

	mu      sync.RWMutex
	records []domain.ClientRecord
}

// NewClientBook creates a repository seeded with the given records.
func NewClientBook(normalizer ports.Normalizer, records ...domain.ClientRecord) *ClientBook {
	return &ClientBook{
		normalizer: normalizer,
		records:    append([]domain.ClientRecord(nil), records...),
	}
}

// Search returns every record whose name, company or email contains the
// normalized query.
func (b *ClientBook) Search(ctx context.Context, query string) ([]domain.ClientRecord, error) {
	needle := b.normalizer.Normalize(query)
	if needle == "" {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var matches []domain.ClientRecord
	for _, r := range b.records {
		haystack := b.normalizer.Normalize(r.Name) + " " +
			b.normalizer.Normalize(r.Company) + " " +
			strings.ToLower(r.Email)
		if strings.Contains(haystack, needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// Create appends a record.
func (b *ClientBook) Create(ctx context.Context, record domain.ClientRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, record)
	return nil
}
