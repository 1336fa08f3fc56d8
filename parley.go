package parley

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/runtime"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/answer"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Dialog is the high-level entry point for the parley library.
// It wraps the Dialog Controller and wires its Answer Service stack.
type Dialog struct {
	ctrl    *runtime.Controller
	service ports.AnswerService
	logger  *slog.Logger

	timeout   time.Duration
	copy      *domain.Copy
	hooks     []domain.LifecycleHooks
	cache     ports.AnswerCache
	cacheSkip answer.SkipFunc
	clientOps []httpAdapter.ClientOption
	now       func() time.Time
}

var _ ports.Dialog = (*Dialog)(nil)

// Option defines a functional option for configuring the Dialog.
type Option func(*Dialog)

// WithAnswerService injects the Answer Service, bypassing the default HTTP client.
func WithAnswerService(svc ports.AnswerService) Option {
	return func(d *Dialog) {
		d.service = svc
	}
}

// WithLifecycleHooks registers observability hooks. It may be given several
// times; every hook set receives every event.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dialog) {
		d.hooks = append(d.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dialog) {
		d.logger = logger
	}
}

// WithTimeout bounds every Answer Service call (default 5s).
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dialog) {
		d.timeout = timeout
	}
}

// WithCopy sets the user-facing message copy (see domain.DefaultCopy, domain.SpanishCopy).
func WithCopy(cp domain.Copy) Option {
	return func(d *Dialog) {
		d.copy = &cp
	}
}

// WithCache serves repeated questions from cache. Jokes are never cached.
func WithCache(cache ports.AnswerCache) Option {
	return func(d *Dialog) {
		d.cache = cache
	}
}

// WithCacheSkip overrides which answers are kept out of the cache.
func WithCacheSkip(fn answer.SkipFunc) Option {
	return func(d *Dialog) {
		d.cacheSkip = fn
	}
}

// WithClientOptions tunes the default HTTP Answer Service client.
func WithClientOptions(opts ...httpAdapter.ClientOption) Option {
	return func(d *Dialog) {
		d.clientOps = append(d.clientOps, opts...)
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dialog) {
		d.now = now
	}
}

// New initializes a Dialog talking to the Answer Service rooted at baseURL
// (e.g. http://localhost:3000/api). If WithAnswerService is provided, baseURL
// can be empty and no HTTP client is created.
func New(baseURL string, opts ...Option) (*Dialog, error) {
	d := &Dialog{}
	for _, opt := range opts {
		opt(d)
	}

	// Ensure logger is initialized so the runtime default is not overwritten with nil.
	if d.logger == nil {
		d.logger = logging.NewNop()
	}

	if d.service == nil {
		if baseURL == "" {
			return nil, fmt.Errorf("baseURL is required when no answer service is provided")
		}
		clientOpts := append([]httpAdapter.ClientOption{httpAdapter.WithClientLogger(d.logger)}, d.clientOps...)
		client, err := httpAdapter.NewClient(baseURL, clientOpts...)
		if err != nil {
			return nil, err
		}
		d.service = client
		d.logger = d.logger.With("service", client.BaseURL())
	}

	cp := domain.DefaultCopy()
	if d.copy != nil {
		cp = *d.copy
	}

	if d.cache != nil {
		skip := d.cacheSkip
		if skip == nil {
			skip = answer.SkipJokes(cp)
		}
		d.service = answer.NewCached(d.service, d.cache,
			answer.WithSkip(skip),
			answer.WithLogger(d.logger),
		)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithCopy(cp),
		runtime.WithLogger(d.logger),
		runtime.WithTimeout(d.timeout),
		runtime.WithClock(d.now),
	}
	if len(d.hooks) > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(domain.CombineHooks(d.hooks...)))
	}
	d.ctrl = runtime.NewController(d.service, runtimeOpts...)

	return d, nil
}

// SubmitQuestion sends a new question. Empty text returns a *domain.ValidationError.
func (d *Dialog) SubmitQuestion(ctx context.Context, text string) (domain.Snapshot, error) {
	return d.ctrl.SubmitQuestion(ctx, text)
}

// ChooseOption picks provide-answer or search-web while an option choice is pending.
func (d *Dialog) ChooseOption(ctx context.Context, opt domain.Option) (domain.Snapshot, error) {
	return d.ctrl.ChooseOption(ctx, opt)
}

// SubmitManualAnswer sends the user's own answer while one is awaited.
func (d *Dialog) SubmitManualAnswer(ctx context.Context, text string) (domain.Snapshot, error) {
	return d.ctrl.SubmitManualAnswer(ctx, text)
}

// ConfirmWebAnswer accepts or declines the web preview.
func (d *Dialog) ConfirmWebAnswer(ctx context.Context, accept bool) (domain.Snapshot, error) {
	return d.ctrl.ConfirmWebAnswer(ctx, accept)
}

// RequestAnotherJoke asks for one more joke.
func (d *Dialog) RequestAnotherJoke(ctx context.Context) (domain.Snapshot, error) {
	return d.ctrl.RequestAnotherJoke(ctx)
}

// Dismiss closes the open interaction without contacting the service.
func (d *Dialog) Dismiss(ctx context.Context) (domain.Snapshot, error) {
	return d.ctrl.Dismiss(ctx)
}

// Snapshot returns a read-only copy of the dialog.
func (d *Dialog) Snapshot() domain.Snapshot {
	return d.ctrl.Snapshot()
}

// Copy returns the message copy in use.
func (d *Dialog) Copy() domain.Copy {
	return d.ctrl.Copy()
}

// Service returns the Answer Service the dialog talks to, decorators included.
func (d *Dialog) Service() ports.AnswerService {
	return d.service
}
