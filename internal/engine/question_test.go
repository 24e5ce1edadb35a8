package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/plumedoc/plume/internal/engine"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_QuestionMidFlowKeepsState(t *testing.T) {
	resp := &stubResponder{answer: "Un bail est un contrat de location."}
	h := newHarness(t, resp)

	h.turn(t, "je veux un document")
	h.turn(t, "1")
	h.turn(t, "Contrats")

	reply := h.turn(t, "C'est quoi un bail ?")
	assert.Equal(t, domain.StateChoosingModel, reply.State)
	assert.Contains(t, reply.Text, "Un bail est un contrat de location.")
	// The answer carries a reminder of where the flow stood.
	assert.Contains(t, reply.Text, "Pour reprendre")
	assert.Equal(t, 1, resp.calls)

	// The flow resumes as if the question never happened.
	reply = h.turn(t, "prestation")
	assert.Equal(t, domain.StateModelSelected, reply.State)
}

func TestEngine_QuestionAtInitialStaysInFlow(t *testing.T) {
	resp := &stubResponder{answer: "ne devrait pas être appelé"}
	h := newHarness(t, resp)

	// With no flow to derail yet, a question is just an opening message.
	reply := h.turn(t, "Pouvez-vous m'aider ?")
	assert.Equal(t, domain.StateAskingDocumentType, reply.State)
	assert.Equal(t, 0, resp.calls)
}

func TestEngine_LongUnmatchedInputReadsAsQuestion(t *testing.T) {
	resp := &stubResponder{answer: "Voici quelques éléments."}
	h := newHarness(t, resp)

	h.turn(t, "je veux un document")
	h.turn(t, "1")

	// No question mark, no interrogative, but too long to be a menu choice.
	reply := h.turn(t, "je me demande ce qui conviendrait pour mon dossier")
	assert.Equal(t, domain.StateChoosingCategory, reply.State)
	assert.Contains(t, reply.Text, "Voici quelques éléments.")
	assert.Equal(t, 1, resp.calls)
}

// blockingResponder parks Answer until released, to let the test reset the
// session while the question is in flight.
type blockingResponder struct {
	entered chan struct{}
	release chan struct{}
	answer  string
}

func (r *blockingResponder) Answer(ctx context.Context, prompt string) (string, error) {
	close(r.entered)
	<-r.release
	return r.answer, nil
}

func TestEngine_StaleAnswerDiscardedAfterReset(t *testing.T) {
	resp := &blockingResponder{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		answer:  "réponse tardive",
	}
	h := newHarness(t, resp)
	ctx := context.Background()

	h.turn(t, "je veux un document")
	h.turn(t, "1")

	type outcome struct {
		reply engine.Reply
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := h.engine.Handle(ctx, "s1", "Comment choisir ?")
		done <- outcome{r, err}
	}()

	// Wait until the question is in flight; the session lock is already
	// released at that point, so the reset goes through.
	select {
	case <-resp.entered:
	case <-time.After(time.Second):
		t.Fatal("responder was never called")
	}
	require.NoError(t, h.engine.Reset(ctx, "s1"))

	close(resp.release)
	out := <-done
	require.NoError(t, out.err)

	// The in-flight answer landed on a superseded session: it is discarded
	// and the user is re-anchored at the start.
	assert.Equal(t, domain.StateInitial, out.reply.State)
	assert.NotContains(t, out.reply.Text, "réponse tardive")
}
