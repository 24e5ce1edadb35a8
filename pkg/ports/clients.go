package ports

import (
	"context"

	"github.com/plumedoc/plume/pkg/domain"
)

// ClientRepository looks up and creates client records. Matching is
// substring-based over normalized text; ranking, if any, is the
// implementation's choice.
type ClientRepository interface {
	Search(ctx context.Context, query string) ([]domain.ClientRecord, error)
	Create(ctx context.Context, record domain.ClientRecord) error
}
