// Package plume assembles the guided document-assembly dialogue engine from
// its parts: normalizer, template catalog, variable binder, fallback
// responder and the per-session state machine. The zero-config path runs
// fully in memory against a template directory; options swap in Redis
// sessions, a client book, metrics and custom collaborators.
package plume

import (
	"log/slog"

	"github.com/plumedoc/plume/internal/binder"
	"github.com/plumedoc/plume/internal/catalog"
	"github.com/plumedoc/plume/internal/engine"
	"github.com/plumedoc/plume/internal/logging"
	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/internal/responder"
	"github.com/plumedoc/plume/pkg/adapters/fsstore"
	"github.com/plumedoc/plume/pkg/adapters/memory"
	"github.com/plumedoc/plume/pkg/adapters/middleware"
	"github.com/plumedoc/plume/pkg/observability"
	"github.com/plumedoc/plume/pkg/ports"
	"github.com/plumedoc/plume/pkg/session"
)

// Assembly bundles the wired components. Engine is what callers talk to; the
// rest is exposed for adapters (HTTP server, CLI) that need direct access.
type Assembly struct {
	Engine    *engine.Engine
	Sessions  *session.Manager
	Templates ports.TemplateStore
	Breaker   *responder.Breaker
}

type settings struct {
	templatesDir string
	store        ports.ContextStore
	templates    ports.TemplateStore
	clients      ports.ClientRepository
	resp         ports.Responder
	normalizer   ports.Normalizer
	binder       ports.Binder
	locker       ports.DistributedLocker
	storeMws     []middleware.Middleware
	logger       *slog.Logger
	metrics      *observability.Metrics
	generatorURL string
	model        string
	breakerOpts  []responder.BreakerOption
	clientOpts   []responder.ClientOption
}

// Option configures the assembly.
type Option func(*settings)

// WithContextStore swaps the session persistence backend.
func WithContextStore(store ports.ContextStore) Option {
	return func(s *settings) { s.store = store }
}

// WithTemplateStore swaps the template backend.
func WithTemplateStore(store ports.TemplateStore) Option {
	return func(s *settings) { s.templates = store }
}

// WithClientRepository sets the client book.
func WithClientRepository(repo ports.ClientRepository) Option {
	return func(s *settings) { s.clients = repo }
}

// WithResponder swaps the fallback responder.
func WithResponder(r ports.Responder) Option {
	return func(s *settings) { s.resp = r }
}

// WithNormalizer swaps the input normalizer.
func WithNormalizer(n ports.Normalizer) Option {
	return func(s *settings) { s.normalizer = n }
}

// WithBinder swaps the variable binder.
func WithBinder(b ports.Binder) Option {
	return func(s *settings) { s.binder = b }
}

// WithStoreMiddleware wraps the context store, outermost first. Used for
// at-rest encryption and PII masking of persisted sessions.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(s *settings) { s.storeMws = append(s.storeMws, mws...) }
}

// WithLocker enables distributed session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(s *settings) { s.locker = l }
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithMetrics wires the Prometheus collectors into the engine and responder.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithGenerator points the default fallback responder at a generative
// service.
func WithGenerator(baseURL, model string, clientOpts ...responder.ClientOption) Option {
	return func(s *settings) {
		s.generatorURL = baseURL
		s.model = model
		s.clientOpts = clientOpts
	}
}

// WithBreakerOptions tunes the default circuit breaker.
func WithBreakerOptions(opts ...responder.BreakerOption) Option {
	return func(s *settings) { s.breakerOpts = opts }
}

// New assembles an engine over the given template directory.
func New(templatesDir string, opts ...Option) *Assembly {
	s := &settings{
		templatesDir: templatesDir,
		logger:       logging.NewNop(),
		generatorURL: "http://localhost:11434/api",
		model:        "mistral",
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.normalizer == nil {
		s.normalizer = normalizer.New()
	}
	if s.binder == nil {
		s.binder = binder.New()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if len(s.storeMws) > 0 {
		s.store = middleware.Chain(s.store, s.storeMws...)
	}
	if s.templates == nil {
		s.templates = fsstore.New(s.templatesDir)
	}
	if s.clients == nil {
		s.clients = memory.NewClientBook(s.normalizer)
	}

	breaker := responder.NewBreaker(s.breakerOpts...)
	if s.resp == nil {
		client := responder.NewClient(s.generatorURL, s.model, s.clientOpts...)
		fallbackOpts := []responder.FallbackOption{responder.WithLogger(s.logger)}
		if s.metrics != nil {
			fallbackOpts = append(fallbackOpts, responder.WithOutcomeHook(s.metrics.ObserveFallback))
		}
		s.resp = responder.NewFallback(client, breaker, fallbackOpts...)
	}

	sessionOpts := []session.Option{session.WithLogger(s.logger)}
	if s.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(s.locker))
	}
	sessions := session.NewManager(s.store, sessionOpts...)

	cat := catalog.New(s.templates, s.normalizer)

	engineOpts := []engine.Option{engine.WithLogger(s.logger)}
	if s.metrics != nil {
		engineOpts = append(engineOpts, engine.WithHooks(engine.Hooks{
			OnTurn:      s.metrics.ObserveTurn,
			OnCompleted: s.metrics.DocumentsCompleted.Inc,
		}))
	}

	eng := engine.New(sessions, cat, s.templates, s.clients, s.normalizer, s.binder, s.resp, engineOpts...)

	return &Assembly{
		Engine:    eng,
		Sessions:  sessions,
		Templates: s.templates,
		Breaker:   breaker,
	}
}
