package domain

import "fmt"

// ContextField names a ConversationContext field that a transition rule can
// require to be populated.
type ContextField string

const (
	FieldCategory ContextField = "category"
	FieldTemplate ContextField = "template"
	FieldClient   ContextField = "client"
)

// TransitionRule lists the context fields that must already be populated
// before moving between two states.
type TransitionRule struct {
	From     DialogueState
	To       DialogueState
	Requires []ContextField
}

// InvalidTransitionError reports a transition attempted without its required
// context fields. The engine recovers locally: state is left unchanged and a
// clarifying reply is returned to the user.
type InvalidTransitionError struct {
	From    DialogueState
	To      DialogueState
	Missing []ContextField
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s requires missing fields %v", e.From, e.To, e.Missing)
}

// transitionRules is the closed set of guarded transitions. Pairs absent from
// the table carry no field requirements.
var transitionRules = []TransitionRule{
	{From: StateChoosingCategory, To: StateChoosingModel, Requires: []ContextField{FieldCategory}},
	{From: StateChoosingModel, To: StateModelSelected, Requires: []ContextField{FieldCategory, FieldTemplate}},
	{From: StateModelSelected, To: StateAskingClient, Requires: []ContextField{FieldTemplate}},
	{From: StateModelSelected, To: StateDocumentCompleted, Requires: []ContextField{FieldTemplate}},
	{From: StateChoosingClient, To: StateModelSelected, Requires: []ContextField{FieldClient}},
	{From: StateFillingDocument, To: StateFillingMissing, Requires: []ContextField{FieldTemplate, FieldClient}},
	{From: StateFillingMissing, To: StateDocumentCompleted, Requires: []ContextField{FieldTemplate}},
}

// CheckTransition validates a state change against the transition table.
// Returns nil when the pair is unguarded or every required field is populated;
// otherwise an *InvalidTransitionError naming the gaps.
func CheckTransition(ctx *ConversationContext, from, to DialogueState) error {
	for _, rule := range transitionRules {
		if rule.From != from || rule.To != to {
			continue
		}
		var missing []ContextField
		for _, f := range rule.Requires {
			if !fieldPopulated(ctx, f) {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return &InvalidTransitionError{From: from, To: to, Missing: missing}
		}
		return nil
	}
	return nil
}

func fieldPopulated(ctx *ConversationContext, f ContextField) bool {
	switch f {
	case FieldCategory:
		return ctx.Category != ""
	case FieldTemplate:
		return ctx.TemplateName != ""
	case FieldClient:
		return ctx.Client != nil
	}
	return false
}
