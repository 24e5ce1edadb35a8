package middleware

import (
	"context"
	"regexp"

	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
)

const masked = "***"

type piiMiddleware struct {
	next     ports.ContextStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks bound variables whose name
// matches one of the patterns, plus the contact fields of any client record,
// before the context reaches the backing store. Loads return the masked copy.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ContextStore) ports.ContextStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, conv *domain.ConversationContext) error {
	// Clone so the in-memory context used by the engine is untouched.
	cloned := conv.Clone()

	for name := range cloned.BoundVariables {
		if m.matches(name) {
			cloned.BoundVariables[name] = masked
		}
	}
	if cloned.Client != nil {
		record := maskRecord(*cloned.Client)
		cloned.Client = &record
	}
	for i := range cloned.Candidates {
		cloned.Candidates[i] = maskRecord(cloned.Candidates[i])
	}

	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(name string) bool {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func maskRecord(r domain.ClientRecord) domain.ClientRecord {
	if r.Address != "" {
		r.Address = masked
	}
	if r.Phone != "" {
		r.Phone = masked
	}
	if r.Email != "" {
		r.Email = masked
	}
	return r
}
