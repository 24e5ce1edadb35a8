package ports

import (
	"context"

	"github.com/plumedoc/plume/pkg/domain"
)

// ContextStore persists conversation contexts per session ID, enabling a
// dialogue to span many request/response turns (and many replicas, with a
// suitable backend).
type ContextStore interface {
	// Save persists the context for a given session ID.
	Save(ctx context.Context, sessionID string, conv *domain.ConversationContext) error

	// Load retrieves the context for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error)

	// Delete removes the context for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of sessions currently held by the store.
	List(ctx context.Context) ([]string, error)
}
