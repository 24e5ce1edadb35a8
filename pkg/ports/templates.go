package ports

import (
	"context"

	"github.com/plumedoc/plume/pkg/domain"
)

// TemplateStore is the storage collaborator behind the catalog. The on-disk
// layout and any format-specific text extraction are entirely the store's
// responsibility; the core only sees category names, descriptors, and text.
type TemplateStore interface {
	// ListCategories returns the available category names. An empty slice is
	// a valid result, not an error.
	ListCategories(ctx context.Context) ([]string, error)

	// ListModels returns descriptors for the templates of one category.
	// An unknown category yields an empty slice, not an error: the engine
	// treats "no templates" uniformly whether the category exists empty or
	// does not exist at all.
	ListModels(ctx context.Context, category string) ([]domain.TemplateDescriptor, error)

	// ReadText returns the raw text of a template.
	ReadText(ctx context.Context, desc domain.TemplateDescriptor) (string, error)

	// WriteText persists text under the descriptor's category and name.
	WriteText(ctx context.Context, desc domain.TemplateDescriptor, text string) error
}
