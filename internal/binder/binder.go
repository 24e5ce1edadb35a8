// Package binder turns a raw template plus a client record into finished
// text. Placeholders are names wrapped in doubled angle brackets, e.g.
// <<nom>>; binding to client fields is heuristic (substring checks on
// placeholder names), since templates declare no variable types. The goal
// is to minimize the questions asked, not to guarantee a correct guess: the
// assembled text is always exposed for inspection before it is treated as
// final.
package binder

import (
	"regexp"
	"strings"

	"github.com/plumedoc/plume/pkg/domain"
)

// placeholderPattern matches <<name>> markers. Names are free-form
// identifiers: letters (accented included), digits, underscores.
var placeholderPattern = regexp.MustCompile(`<<([\p{L}\p{N}_]+)>>`)

// Binder implements ports.Binder. The zero value is ready to use.
type Binder struct{}

func New() *Binder { return &Binder{} }

// DetectPlaceholders returns the distinct placeholder names of a template in
// first-occurrence order. A name repeated several times appears once.
func (b *Binder) DetectPlaceholders(templateText string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(templateText, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// fieldKeywords maps placeholder-name fragments to client field accessors,
// checked in order. Ambiguous names (e.g. "adresse_email" also matches the
// address rule) resolve to the first rule that hits; the assembled text is
// shown for review, so a wrong guess is user-correctable.
var fieldKeywords = []struct {
	keys []string
	get  func(domain.ClientRecord) string
}{
	{[]string{"nom", "client"}, func(c domain.ClientRecord) string { return c.Name }},
	{[]string{"entreprise", "societe", "company"}, func(c domain.ClientRecord) string { return c.Company }},
	{[]string{"email", "mail"}, func(c domain.ClientRecord) string { return c.Email }},
	{[]string{"telephone", "tel"}, func(c domain.ClientRecord) string { return c.Phone }},
	{[]string{"adresse"}, func(c domain.ClientRecord) string { return c.Address }},
}

// Bind maps each placeholder to a client field where a keyword rule applies
// and the field is non-empty; everything else lands in missing, preserving
// detection order.
func (b *Binder) Bind(placeholders []string, client domain.ClientRecord) (map[string]string, []string) {
	bound := make(map[string]string)
	var missing []string
	for _, name := range placeholders {
		value := lookupField(name, client)
		if value == "" {
			missing = append(missing, name)
			continue
		}
		bound[name] = value
	}
	return bound, missing
}

func lookupField(placeholder string, client domain.ClientRecord) string {
	lower := strings.ToLower(placeholder)
	for _, rule := range fieldKeywords {
		for _, key := range rule.keys {
			if strings.Contains(lower, key) {
				return strings.TrimSpace(rule.get(client))
			}
		}
	}
	return ""
}

// ResolveMissing records a supplied value for a pending placeholder: the
// name leaves MissingVariables and lands in BoundVariables. The caller
// re-checks MissingVariables afterwards to decide whether to finalize.
func (b *Binder) ResolveMissing(conv *domain.ConversationContext, name, value string) {
	if conv.BoundVariables == nil {
		conv.BoundVariables = make(map[string]string)
	}
	conv.BoundVariables[name] = value
	for i, pending := range conv.MissingVariables {
		if pending == name {
			conv.MissingVariables = append(conv.MissingVariables[:i], conv.MissingVariables[i+1:]...)
			break
		}
	}
}

// Substitute replaces every occurrence of each bound placeholder with its
// value. Markers absent from values are left untouched, not corrupted, so a
// partial map leaves exactly the unbound markers in place.
func (b *Binder) Substitute(templateText string, values map[string]string) string {
	if len(values) == 0 {
		return templateText
	}
	return placeholderPattern.ReplaceAllStringFunc(templateText, func(marker string) string {
		name := placeholderPattern.FindStringSubmatch(marker)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return marker
	})
}
