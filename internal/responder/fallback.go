// Package responder routes off-script user questions to an external
// generative text service without letting that service's failures cascade
// into the dialogue: every call goes through a shared circuit breaker and
// every failure mode collapses into a deterministic apologetic reply.
package responder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plumedoc/plume/internal/logging"
)

// Canned replies. Deterministic on purpose so callers and tests can rely on
// them; the dialogue never surfaces a raw transport error to the user.
const (
	MsgUnavailable = "Je suis désolé, le service de réponse est momentanément indisponible. Reprenons là où nous en étions."
	MsgNoResponse  = "Je n'ai pas de réponse à vous proposer pour cette question. Reprenons là où nous en étions."
)

// Generator is the outbound side of the fallback path.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Health(ctx context.Context) error
}

// Fallback implements ports.Responder on top of a Generator and a Breaker.
type Fallback struct {
	generator Generator
	breaker   *Breaker
	logger    *slog.Logger

	// onOutcome, when set, observes each answer outcome
	// ("ok", "empty", "failure", "short_circuit") for metrics.
	onOutcome func(outcome string)
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) { f.logger = logger }
}

// WithOutcomeHook registers an observer for answer outcomes.
func WithOutcomeHook(fn func(outcome string)) FallbackOption {
	return func(f *Fallback) { f.onOutcome = fn }
}

// NewFallback wires a generator to a shared breaker. The breaker is
// process-wide: construct it once and pass the same instance to every
// Fallback that targets the same service.
func NewFallback(generator Generator, breaker *Breaker, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		generator: generator,
		breaker:   breaker,
		logger:    logging.NewNop(),
		onOutcome: func(string) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Answer forwards the prompt to the generative service. It never returns an
// error for expected conditions: an open breaker or a failing backend both
// yield a fixed apologetic message. The network call runs on its own
// goroutine with its own timeout, so a canceled caller abandons the call
// rather than blocking on it; the abandoned result is discarded.
func (f *Fallback) Answer(ctx context.Context, prompt string) (string, error) {
	if !f.breaker.Allow() {
		f.onOutcome("short_circuit")
		return MsgUnavailable, nil
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		// Detached from the caller's cancellation: the call carries its own
		// timeout and its failure must still be recorded even if the caller
		// stopped waiting.
		text, err := f.generator.Generate(context.WithoutCancel(ctx), prompt)
		if err != nil {
			f.recordFailure(err)
		} else {
			f.breaker.Success()
		}
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		f.onOutcome("failure")
		return MsgUnavailable, nil
	case r := <-done:
		if r.err != nil {
			f.onOutcome("failure")
			return MsgUnavailable, nil
		}
		if r.text == "" {
			// Content problem, not a connectivity one: no failure recorded.
			f.onOutcome("empty")
			return MsgNoResponse, nil
		}
		f.onOutcome("ok")
		return r.text, nil
	}
}

// Draft asks the service to turn free-form notes into a document draft.
// ok is false whenever the breaker is open or the call fails or comes back
// empty; the caller then assembles the notes verbatim instead.
func (f *Fallback) Draft(ctx context.Context, notes []string) (string, bool) {
	if !f.breaker.Allow() {
		f.onOutcome("short_circuit")
		return "", false
	}
	prompt := "Rédige un document professionnel en français à partir des notes suivantes, sans commentaire autour :\n- " +
		strings.Join(notes, "\n- ")
	text, err := f.generator.Generate(ctx, prompt)
	if err != nil {
		f.recordFailure(err)
		f.onOutcome("failure")
		return "", false
	}
	f.breaker.Success()
	if text == "" {
		f.onOutcome("empty")
		return "", false
	}
	f.onOutcome("ok")
	return text, true
}

// recordFailure counts the failure and, once the threshold is reached,
// probes the service's health before opening: a passing probe means the
// generation failures are load-related and the path stays closed.
func (f *Fallback) recordFailure(err error) {
	f.logger.Warn("fallback generation failed", "err", err)
	if !f.breaker.Failure() {
		return
	}
	probeCtx, cancel := context.WithTimeout(context.Background(), DefaultProbeTimeout)
	defer cancel()
	if probeErr := f.generator.Health(probeCtx); probeErr != nil {
		f.logger.Warn("health probe failed, opening breaker", "err", probeErr)
		f.breaker.Open()
	}
}
