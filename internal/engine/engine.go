// Package engine implements the guided document-assembly dialogue: a finite
// state machine consuming normalized user input plus a per-session context,
// producing a reply and the next context. Off-script questions are routed to
// the fallback responder without changing state; everything else flows
// through the per-state handlers and the transition table.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/plumedoc/plume/internal/catalog"
	"github.com/plumedoc/plume/internal/logging"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
	"github.com/plumedoc/plume/pkg/session"
)

// Reply is the outcome of one dialogue turn.
type Reply struct {
	// Text is the message to render to the user.
	Text string `json:"text"`
	// State is the dialogue state after the turn.
	State domain.DialogueState `json:"state"`
	// Done is true when a document was completed this turn.
	Done bool `json:"done"`
	// Document carries the assembled text when Done. It is exposed here so
	// the caller can show it for inspection before treating it as final.
	Document string `json:"document,omitempty"`
	// Category is the document category the session worked in, when Done.
	Category string `json:"category,omitempty"`
}

// errInvariant marks a programming error detected mid-turn. The turn fails
// safely: the context is not saved, the user gets a generic reply.
var errInvariant = errors.New("dialogue invariant violated")

// drafter is the optional responder capability used by the free-form flow to
// turn collected notes into a draft. ok=false means "use the notes as-is".
type drafter interface {
	Draft(ctx context.Context, notes []string) (text string, ok bool)
}

// Hooks observe engine activity for metrics. All fields are optional.
type Hooks struct {
	OnTurn      func(state domain.DialogueState)
	OnCompleted func()
}

// Engine is the dialogue state machine. All collaborators are injected at
// construction; swapping behavior means swapping an implementation, never
// patching the engine at runtime.
type Engine struct {
	sessions   *session.Manager
	catalog    *catalog.Catalog
	templates  ports.TemplateStore
	clients    ports.ClientRepository
	normalizer ports.Normalizer
	binder     ports.Binder
	responder  ports.Responder
	logger     *slog.Logger
	hooks      Hooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks registers observability hooks.
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// New assembles the engine from its collaborators.
func New(
	sessions *session.Manager,
	cat *catalog.Catalog,
	templates ports.TemplateStore,
	clients ports.ClientRepository,
	normalizer ports.Normalizer,
	binder ports.Binder,
	responder ports.Responder,
	opts ...Option,
) *Engine {
	e := &Engine{
		sessions:   sessions,
		catalog:    cat,
		templates:  templates,
		clients:    clients,
		normalizer: normalizer,
		binder:     binder,
		responder:  responder,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turnInput carries both forms of the user's text through a turn.
type turnInput struct {
	raw        string
	normalized string
}

// Handle processes one turn for a session. It is synchronous and runs to
// completion; concurrent turns for the same session are serialized by the
// session manager. Expected conditions (unrecognized input, empty catalog,
// open breaker) are replies, not errors: the returned error is reserved for
// storage failures the caller cannot recover from.
func (e *Engine) Handle(ctx context.Context, sessionID, raw string) (Reply, error) {
	in := turnInput{raw: raw, normalized: e.normalizer.Normalize(raw)}
	kind := classify(in.normalized, in.raw)

	var (
		reply         Reply
		questionState domain.DialogueState
		questionVer   int
		wantsFallback bool
		turnState     = domain.StateInitial
	)

	_, err := e.sessions.Update(ctx, sessionID, func(conv *domain.ConversationContext) error {
		if e.hooks.OnTurn != nil {
			e.hooks.OnTurn(conv.State)
		}
		// DocumentCompleted is terminal-ish only: it loops back to Initial
		// before the next turn is interpreted.
		if conv.State == domain.StateDocumentCompleted {
			resetFlow(conv)
		}
		turnState = conv.State

		if kind == domain.CommandQuestion && conv.State != domain.StateInitial {
			questionState = conv.State
			questionVer = conv.Version
			wantsFallback = true
			return nil
		}

		text, matched, err := e.dispatch(ctx, conv, kind, in)
		if err != nil {
			return err
		}
		if !matched && looksLongForm(in.normalized) && conv.State != domain.StateInitial {
			// Long free text with no structural match reads like a question.
			questionState = conv.State
			questionVer = conv.Version
			wantsFallback = true
			return nil
		}
		reply = Reply{Text: text, State: conv.State}
		if conv.State == domain.StateDocumentCompleted {
			reply.Done = true
			reply.Document = conv.FinalText
			reply.Category = conv.Category
			if e.hooks.OnCompleted != nil {
				e.hooks.OnCompleted()
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errInvariant) {
			// The context was not saved, so the session still sits in the
			// state it entered the turn with. Echo that state.
			e.logger.Error("turn failed on invariant violation", "session_id", sessionID, "err", err)
			return Reply{Text: msgTurnFailed, State: turnState}, nil
		}
		return Reply{}, err
	}

	if wantsFallback {
		return e.answerQuestion(ctx, sessionID, raw, questionState, questionVer)
	}
	return reply, nil
}

// answerQuestion forwards an off-script question to the fallback responder.
// The session lock is NOT held during the call, so the session can be reset
// meanwhile; the answer is discarded when that happened (version check, not
// just session identity).
func (e *Engine) answerQuestion(ctx context.Context, sessionID, raw string, state domain.DialogueState, version int) (Reply, error) {
	answer, err := e.responder.Answer(ctx, raw)
	if err != nil {
		// Responders are total for expected conditions; anything else is
		// logged and phrased, never propagated.
		e.logger.Warn("responder failed", "session_id", sessionID, "err", err)
		answer = msgTurnFailed
	}

	conv, loadErr := e.sessions.Load(ctx, sessionID)
	if loadErr != nil || conv.Version != version || conv.State != state {
		// The session moved on (reset or concurrent turn): discard.
		return Reply{Text: stateReminder(domain.StateInitial), State: domain.StateInitial}, nil
	}
	return Reply{
		Text:  strings.TrimSpace(answer) + "\n\n" + stateReminder(state),
		State: state,
	}, nil
}

// Reset discards the session's context; the next turn starts at Initial.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Reset(ctx, sessionID)
}

// Sessions exposes the session manager to adapters.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// dispatch routes a turn to the command handlers or the state handler.
// The boolean reports whether the input matched something structural.
func (e *Engine) dispatch(ctx context.Context, conv *domain.ConversationContext, kind domain.CommandKind, in turnInput) (string, bool, error) {
	switch kind {
	case domain.CommandGreeting:
		return msgGreeting + "\n\n" + e.rePrompt(ctx, conv), true, nil
	case domain.CommandHelp:
		return msgHelp + "\n\n" + e.rePrompt(ctx, conv), true, nil
	case domain.CommandBack:
		return e.goBack(ctx, conv), true, nil
	case domain.CommandCancel, domain.CommandStop:
		resetFlow(conv)
		if kind == domain.CommandStop {
			return msgStopped, true, nil
		}
		return msgRefuseAck + "\n\n" + promptDocumentType(), true, nil
	case domain.CommandAccept:
		// A bare "oui" answers a yes/no the flow did not ask; acknowledge and
		// re-anchor rather than guess a step.
		return msgAck + " " + e.rePrompt(ctx, conv), true, nil
	case domain.CommandRefuse:
		return msgRefuseAck + " " + e.rePrompt(ctx, conv), true, nil
	case domain.CommandContinue:
		return e.rePrompt(ctx, conv), true, nil
	case domain.CommandQuestion:
		// Questions at Initial fall through to the state handler: there is
		// no flow to derail yet.
	case domain.CommandNone:
	}
	return e.handleState(ctx, conv, in)
}

// transition applies a guarded state change. On a violated rule the state is
// left untouched and the caller gets the typed error to phrase a clarifying
// reply.
func (e *Engine) transition(conv *domain.ConversationContext, to domain.DialogueState) error {
	if err := domain.CheckTransition(conv, conv.State, to); err != nil {
		e.logger.Warn("transition rejected", "from", conv.State, "to", to, "err", err)
		return err
	}
	conv.Push(conv.State)
	conv.State = to
	return nil
}

// goBack pops the state history, or restarts at Initial when it is empty.
func (e *Engine) goBack(ctx context.Context, conv *domain.ConversationContext) string {
	prev, ok := conv.Pop()
	if !ok {
		resetFlow(conv)
		return promptDocumentType()
	}
	conv.State = prev
	clearFor(conv, prev)
	return e.rePrompt(ctx, conv)
}

// resetFlow wipes everything except the session version.
func resetFlow(conv *domain.ConversationContext) {
	version := conv.Version
	*conv = *domain.NewContext()
	conv.Version = version
}

// clearFor drops the selections a state has not made yet, so going back
// re-asks instead of silently reusing stale choices.
func clearFor(conv *domain.ConversationContext, state domain.DialogueState) {
	clearTemplate := func() {
		conv.TemplateName = ""
		conv.TemplatePath = ""
		conv.TemplateText = ""
		conv.BoundVariables = make(map[string]string)
		conv.MissingVariables = nil
	}
	clearClient := func() {
		conv.Client = nil
		conv.Candidates = nil
	}
	switch state {
	case domain.StateInitial, domain.StateAskingDocumentType:
		conv.Category = ""
		clearTemplate()
		clearClient()
	case domain.StateChoosingCategory:
		conv.Category = ""
		clearTemplate()
	case domain.StateChoosingModel:
		clearTemplate()
	case domain.StateAskingClient:
		clearClient()
	case domain.StateChoosingClient:
		// The candidate list is this state's input, not its selection.
		conv.Client = nil
	}
}

// rePrompt re-renders the prompt of the current state, unchanged. This is the
// in-state handler's answer to anything it does not recognize: re-ask rather
// than guess, so no step is silently skipped.
func (e *Engine) rePrompt(ctx context.Context, conv *domain.ConversationContext) string {
	switch conv.State {
	case domain.StateInitial, domain.StateAskingDocumentType:
		return promptDocumentType()
	case domain.StateChoosingCategory:
		cats, err := e.catalog.Categories(ctx)
		if err != nil || len(cats) == 0 {
			return msgNoCategories
		}
		return promptCategories(cats)
	case domain.StateChoosingModel:
		models, err := e.catalog.Models(ctx, conv.Category)
		if err != nil || len(models) == 0 {
			return msgNoModels
		}
		return promptModels(conv.Category, models)
	case domain.StateModelSelected:
		return promptModelMenu(conv.TemplateName)
	case domain.StateAskingClient:
		return promptClientSearch()
	case domain.StateChoosingClient:
		return promptClientCandidates(conv.Candidates)
	case domain.StateClientNotFound:
		return promptClientNotFound(conv.LastClientQuery)
	case domain.StateCreatingClient:
		return promptCreatingClient()
	case domain.StateFillingDocument, domain.StateFillingMissing:
		if len(conv.MissingVariables) > 0 {
			return promptMissingVariable(conv.MissingVariables[0])
		}
		return promptModelMenu(conv.TemplateName)
	case domain.StateCreatingNew:
		return promptCreatingNew()
	}
	return promptDocumentType()
}
