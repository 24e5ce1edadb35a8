package ports

import "context"

// Responder answers an off-script user question. Implementations must be
// total for expected conditions: a failing or short-circuited backend yields
// a deterministic apologetic reply and a nil error, never a raw transport
// error surfaced to the dialogue.
type Responder interface {
	Answer(ctx context.Context, prompt string) (string, error)
}
