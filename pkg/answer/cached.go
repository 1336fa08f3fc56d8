// Package answer provides decorators over ports.AnswerService.
package answer

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// SkipFunc reports whether a found answer must not be cached.
type SkipFunc func(question string, res domain.AskResult) bool

// Cached serves repeated questions from an AnswerCache.
// Only found answers are stored. Cache failures are logged and bypassed.
type Cached struct {
	next   ports.AnswerService
	cache  ports.AnswerCache
	skip   SkipFunc
	logger *slog.Logger
}

var _ ports.AnswerService = (*Cached)(nil)

// Option configures the Cached decorator.
type Option func(*Cached)

// WithSkip replaces the predicate deciding which answers are never cached.
func WithSkip(fn SkipFunc) Option {
	return func(c *Cached) {
		if fn != nil {
			c.skip = fn
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cached) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCached wraps next with cache. Jokes (per the default copy) are skipped
// unless WithSkip says otherwise.
func NewCached(next ports.AnswerService, cache ports.AnswerCache, opts ...Option) *Cached {
	c := &Cached{
		next:   next,
		cache:  cache,
		skip:   SkipJokes(domain.DefaultCopy()),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SkipJokes never caches the joke request nor answers carrying a joke marker.
func SkipJokes(cp domain.Copy) SkipFunc {
	request := domain.NormalizeQuestion(cp.JokeRequest)
	return func(question string, res domain.AskResult) bool {
		if request != "" && domain.NormalizeQuestion(question) == request {
			return true
		}
		return cp.IsJokeContinuation(res.Answer)
	}
}

// Ask implements ports.AnswerService.
func (c *Cached) Ask(ctx context.Context, question string) (domain.AskResult, error) {
	key := domain.NormalizeQuestion(question)

	res, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("Answer cache read failed, bypassing", "err", err)
	case ok:
		c.logger.Debug("Answer cache hit", "question", key)
		return res, nil
	}

	res, err = c.next.Ask(ctx, question)
	if err != nil || !res.Found || c.skip(question, res) {
		return res, err
	}
	if err := c.cache.Put(ctx, key, res); err != nil {
		c.logger.Warn("Answer cache write failed", "err", err)
	}
	return res, nil
}

// HandleResponse implements ports.AnswerService. A successful save drops the
// cached entry of the question so the next Ask sees the new answer.
func (c *Cached) HandleResponse(ctx context.Context, req domain.HandleRequest) (domain.HandleResult, error) {
	res, err := c.next.HandleResponse(ctx, req)
	if err != nil || !res.Success {
		return res, err
	}
	if err := c.cache.Invalidate(ctx, domain.NormalizeQuestion(req.Question)); err != nil {
		c.logger.Warn("Answer cache invalidation failed", "err", err)
	}
	return res, nil
}
