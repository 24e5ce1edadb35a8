// Package normalizer canonicalizes raw user input into comparable tokens:
// lowercase, diacritics folded, common typos and synonyms rewritten,
// punctuation stripped. Normalization is deterministic, total and idempotent.
package normalizer

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// similarityCutoff is the minimum ratio below which CorrectTypo refuses to
// guess and returns the input unchanged.
const similarityCutoff = 0.55

// literal maps exact (lowercased, trimmed) inputs straight to their canonical
// token. Checked before every other rule and wins outright.
var literal = map[string]string{
	"1":        "1",
	"un":       "1",
	"premier":  "1",
	"option 1": "1",
	"2":        "2",
	"deux":     "2",
	"second":   "2",
	"option 2": "2",
	"3":        "3",
	"trois":    "3",
	"option 3": "3",
	"oui":      "oui",
	"yes":      "oui",
	"ok":       "oui",
	"d'accord": "oui",
	"daccord":  "oui",
	"non":      "non",
	"no":       "non",

	"voir un apercu du document":  "3",
	"voir un aperçu du document":  "3",
	"remplir avec un client":      "1",
	"utiliser le modele tel quel": "2",
}

// synonyms is applied as sequential substring substitution after diacritic
// folding, so embedded misspellings are corrected too. Keys must already be
// folded (no accents) since folding runs first, and no key may occur as a
// substring of any replacement, otherwise normalization stops being
// idempotent.
var synonyms = []struct{ from, to string }{
	{"modelles", "modele"},
	{"modelle", "modele"},
	{"modeles", "modele"},
	{"models", "modele"},
	{"modles", "modele"},
	{"modle", "modele"},
	{"templates", "modele"},
	{"template", "modele"},
	{"nouveaux", "nouveau"},
	{"nouvel", "nouveau"},
	{"nouvo", "nouveau"},
	{"creer", "nouveau"},
	{"contrats", "contrat"},
	{"contrart", "contrat"},
	{"lettres", "lettre"},
	{"letre", "lettre"},
	{"retours", "retour"},
	{"back", "retour"},
	{"precedent", "retour"},
	{"anuler", "annuler"},
	{"cancel", "annuler"},
	{"existants", "existant"},
	{"apercus", "apercu"},
	{"preview", "apercu"},
	{"fini", "terminer"},
	{"remplire", "remplir"},
}

// foldDiacritics removes combining marks: é→e, à→a, ç→c.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizer implements ports.Normalizer. The zero value is ready to use.
type Normalizer struct{}

func New() *Normalizer { return &Normalizer{} }

// Normalize canonicalizes raw user text. Empty or all-punctuation input
// normalizes to the empty string; callers must treat that as "no usable
// input" and re-prompt rather than interpret it as a choice.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if canonical, ok := literal[s]; ok {
		return canonical
	}

	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	if canonical, ok := literal[s]; ok {
		return canonical
	}

	for _, syn := range synonyms {
		s = strings.ReplaceAll(s, syn.from, syn.to)
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	s = strings.TrimSpace(b.String())

	// A synonym rewrite can surface a literal form, e.g. "Modèles!" → "modele".
	if canonical, ok := literal[s]; ok {
		return canonical
	}
	return s
}

// CorrectTypo matches raw against candidates. Resolution order: exact match
// on normalized forms, then a unique substring-containment match, then the
// closest candidate by similarity ratio. Anything below the cutoff returns
// raw unchanged, signaling "no confident match".
func (n *Normalizer) CorrectTypo(raw string, candidates []string) string {
	normRaw := n.Normalize(raw)
	if normRaw == "" {
		return raw
	}

	for _, c := range candidates {
		if n.Normalize(c) == normRaw {
			return c
		}
	}

	var contained []string
	for _, c := range candidates {
		nc := n.Normalize(c)
		if nc == "" {
			continue
		}
		if strings.Contains(nc, normRaw) || strings.Contains(normRaw, nc) {
			contained = append(contained, c)
		}
	}
	if len(contained) == 1 {
		return contained[0]
	}

	best, bestScore := raw, 0.0
	for _, c := range candidates {
		score := similarity(normRaw, n.Normalize(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= similarityCutoff {
		return best
	}
	return raw
}

// similarity is a [0,1] ratio derived from edit distance.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
