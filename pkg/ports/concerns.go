package ports

import "github.com/plumedoc/plume/pkg/domain"

// Normalizer canonicalizes raw user text into a comparable token.
// Normalize must be deterministic, total and idempotent.
type Normalizer interface {
	Normalize(raw string) string

	// CorrectTypo matches raw against candidates, returning the matched
	// candidate verbatim, or raw unchanged when no confident match exists.
	CorrectTypo(raw string, candidates []string) string
}

// Binder detects template placeholders and binds them to a client record.
type Binder interface {
	DetectPlaceholders(templateText string) []string
	Bind(placeholders []string, client domain.ClientRecord) (bound map[string]string, missing []string)
	ResolveMissing(conv *domain.ConversationContext, name, value string)
	Substitute(templateText string, values map[string]string) string
}
