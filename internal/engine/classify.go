package engine

import (
	"strings"

	"github.com/plumedoc/plume/pkg/domain"
)

var greetings = map[string]struct{}{
	"bonjour": {}, "bonsoir": {}, "salut": {}, "coucou": {},
	"hello": {}, "hi": {}, "hey": {},
}

// interrogatives are first-word markers of a question, post-normalization
// (accents already folded).
var interrogatives = map[string]struct{}{
	"pourquoi": {}, "comment": {}, "combien": {}, "quand": {},
	"quel": {}, "quelle": {}, "quels": {}, "quelles": {},
	"qui": {}, "que": {}, "quoi": {}, "est": {},
	"peux": {}, "peut": {}, "pouvez": {}, "puis": {},
}

// classify sorts a turn into a command kind before the state handlers run.
// CommandNone means "let the current state's handler decide".
func classify(normalized, raw string) domain.CommandKind {
	if normalized == "" {
		return domain.CommandNone
	}
	if _, ok := greetings[normalized]; ok {
		return domain.CommandGreeting
	}
	switch normalized {
	case "aide", "help", "menu":
		return domain.CommandHelp
	case "retour":
		return domain.CommandBack
	case "annuler":
		return domain.CommandCancel
	case "oui":
		return domain.CommandAccept
	case "non":
		return domain.CommandRefuse
	case "continuer", "continue", "suite":
		return domain.CommandContinue
	case "stop", "quitter", "fin", "au revoir":
		return domain.CommandStop
	}
	if isQuestion(normalized, raw) {
		return domain.CommandQuestion
	}
	return domain.CommandNone
}

func isQuestion(normalized, raw string) bool {
	if strings.HasSuffix(strings.TrimSpace(raw), "?") {
		return true
	}
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return false
	}
	_, ok := interrogatives[fields[0]]
	return ok
}

// looksLongForm reports inputs long enough that, failing every structural
// match, they are better treated as a question than re-prompted verbatim.
func looksLongForm(normalized string) bool {
	return len(strings.Fields(normalized)) > 3
}
