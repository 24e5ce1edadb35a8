package domain

// DialogueState identifies one discrete step of the guided conversation.
type DialogueState string

const (
	// StateInitial is the entry point of every session. DocumentCompleted
	// loops back here on the next turn, so there is no terminal state.
	StateInitial            DialogueState = "initial"
	StateAskingDocumentType DialogueState = "asking_document_type"
	StateChoosingCategory   DialogueState = "choosing_category"
	StateChoosingModel      DialogueState = "choosing_model"
	StateModelSelected      DialogueState = "model_selected"
	StateAskingClient       DialogueState = "asking_client"
	StateChoosingClient     DialogueState = "choosing_client"
	StateClientNotFound     DialogueState = "client_not_found"
	StateCreatingClient     DialogueState = "creating_client"
	StateFillingDocument    DialogueState = "filling_document"
	StateFillingMissing     DialogueState = "filling_missing_variables"
	StateCreatingNew        DialogueState = "creating_new"
	StateDocumentCompleted  DialogueState = "document_completed"
)

// ConversationContext is the per-session record of progress through the
// dialogue. It is owned exclusively by the engine for that session, mutated
// only by the engine, and discarded when the session ends or is reset.
type ConversationContext struct {
	// State is the current dialogue state.
	State DialogueState `json:"state"`

	// StateHistory is the stack of prior states, used for "retour".
	StateHistory []DialogueState `json:"state_history,omitempty"`

	// Category is the selected document category, if any.
	Category string `json:"category,omitempty"`

	// TemplateName and TemplatePath identify the selected template.
	// TemplatePath is the opaque handle handed back to the TemplateStore.
	TemplateName string `json:"template_name,omitempty"`
	TemplatePath string `json:"template_path,omitempty"`

	// TemplateText is the raw template body, loaded once on selection so the
	// filling sub-flow does not re-read storage on every turn.
	TemplateText string `json:"template_text,omitempty"`

	// Client is the bound client record, if any.
	Client *ClientRecord `json:"client,omitempty"`

	// Candidates holds the search results presented while ChoosingClient;
	// LastClientQuery is the search string that produced them.
	Candidates      []ClientRecord `json:"candidates,omitempty"`
	LastClientQuery string         `json:"last_client_query,omitempty"`

	// BoundVariables maps placeholder name to resolved value.
	BoundVariables map[string]string `json:"bound_variables,omitempty"`

	// MissingVariables lists placeholders still awaiting a value, in
	// detection order. Always a subset of the template's placeholder set.
	MissingVariables []string `json:"missing_variables,omitempty"`

	// FreeFormNotes collects raw strings supplied outside the structured
	// flow, used when assembling a document without an existing template.
	FreeFormNotes []string `json:"free_form_notes,omitempty"`

	// FinalText is the assembled document once DocumentCompleted is reached.
	// It is exposed for inspection before the caller treats it as final.
	FinalText string `json:"final_text,omitempty"`

	// Version increments each time the session is reset. In-flight work
	// started against an older version must discard its result.
	Version int `json:"version"`
}

// NewContext creates a fresh context at StateInitial.
func NewContext() *ConversationContext {
	return &ConversationContext{
		State:          StateInitial,
		BoundVariables: make(map[string]string),
	}
}

// Push records the current state on the history stack before a transition.
func (c *ConversationContext) Push(s DialogueState) {
	c.StateHistory = append(c.StateHistory, s)
}

// Pop removes and returns the most recent history entry. Returns StateInitial
// and false when the stack is empty.
func (c *ConversationContext) Pop() (DialogueState, bool) {
	if len(c.StateHistory) == 0 {
		return StateInitial, false
	}
	last := c.StateHistory[len(c.StateHistory)-1]
	c.StateHistory = c.StateHistory[:len(c.StateHistory)-1]
	return last, true
}

// Clone returns a deep copy safe for mutation by the caller.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	next := *c
	next.StateHistory = append([]DialogueState(nil), c.StateHistory...)
	next.Candidates = append([]ClientRecord(nil), c.Candidates...)
	next.MissingVariables = append([]string(nil), c.MissingVariables...)
	next.FreeFormNotes = append([]string(nil), c.FreeFormNotes...)
	next.BoundVariables = make(map[string]string, len(c.BoundVariables))
	for k, v := range c.BoundVariables {
		next.BoundVariables[k] = v
	}
	if c.Client != nil {
		client := *c.Client
		next.Client = &client
	}
	return &next
}
