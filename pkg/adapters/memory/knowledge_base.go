package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// ErrUnknownOption is returned for a HandleRequest naming an option the
// knowledge base does not implement.
var ErrUnknownOption = errors.New("unknown option")

// ErrEmptyQuestion is returned for a HandleRequest without a question.
var ErrEmptyQuestion = errors.New("question is required")

// WebSearcher produces a short preview answer for a question.
// An empty preview means nothing was found.
type WebSearcher interface {
	Search(ctx context.Context, question string) (string, error)
}

// WebSearchFunc adapts a function to WebSearcher.
type WebSearchFunc func(ctx context.Context, question string) (string, error)

// Search implements WebSearcher.
func (f WebSearchFunc) Search(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// StaticSearcher answers web searches from a fixed table keyed by normalized question.
type StaticSearcher map[string]string

// NewStaticSearcher normalizes the questions of table.
func NewStaticSearcher(table map[string]string) StaticSearcher {
	s := make(StaticSearcher, len(table))
	for q, a := range table {
		s[domain.NormalizeQuestion(q)] = a
	}
	return s
}

// Search implements WebSearcher.
func (s StaticSearcher) Search(_ context.Context, question string) (string, error) {
	return s[domain.NormalizeQuestion(question)], nil
}

// KnowledgeBase is an in-memory Answer Service. It learns answers provided by
// users and confirmed web previews, and tells jokes.
// Safe for concurrent use.
type KnowledgeBase struct {
	mu       sync.Mutex
	answers  map[string]string
	previews map[string]string
	searcher WebSearcher

	jokes        []string
	jokeMarker   string
	jokeTriggers []string
	nextJoke     int
}

var _ ports.AnswerService = (*KnowledgeBase)(nil)

// Option configures the KnowledgeBase.
type Option func(*KnowledgeBase)

// WithAnswers seeds known answers. Questions are normalized.
func WithAnswers(answers map[string]string) Option {
	return func(kb *KnowledgeBase) {
		for q, a := range answers {
			kb.answers[domain.NormalizeQuestion(q)] = a
		}
	}
}

// WithWebSearcher sets the search backend used by the searchWeb option.
func WithWebSearcher(s WebSearcher) Option {
	return func(kb *KnowledgeBase) {
		kb.searcher = s
	}
}

// WithJokes replaces the joke list. Every joke is followed by marker so the
// client offers another one.
func WithJokes(marker string, jokes ...string) Option {
	return func(kb *KnowledgeBase) {
		kb.jokeMarker = marker
		kb.jokes = jokes
	}
}

// WithJokeTriggers sets the words that turn a question into a joke request.
func WithJokeTriggers(words ...string) Option {
	return func(kb *KnowledgeBase) {
		kb.jokeTriggers = words
	}
}

// NewKnowledgeBase creates a knowledge base with a default joke list and no
// web searcher.
func NewKnowledgeBase(opts ...Option) *KnowledgeBase {
	kb := &KnowledgeBase{
		answers:    make(map[string]string),
		previews:   make(map[string]string),
		jokeMarker: "Another joke?",
		jokes: []string{
			"Why do programmers prefer dark mode? Because light attracts bugs.",
			"There are 10 kinds of people: those who understand binary and those who don't.",
			"A SQL query walks into a bar, walks up to two tables and asks: may I join you?",
		},
		jokeTriggers: []string{"joke", "chiste"},
	}
	for _, opt := range opts {
		opt(kb)
	}
	return kb
}

// Ask implements ports.AnswerService.
func (kb *KnowledgeBase) Ask(ctx context.Context, question string) (domain.AskResult, error) {
	key := domain.NormalizeQuestion(question)

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.isJokeRequest(key) {
		joke := kb.jokes[kb.nextJoke%len(kb.jokes)]
		kb.nextJoke++
		return domain.AskResult{Found: true, Answer: strings.TrimSpace(joke + " " + kb.jokeMarker)}, nil
	}
	if answer, ok := kb.answers[key]; ok {
		return domain.AskResult{Found: true, Answer: answer}, nil
	}
	return domain.AskResult{
		Found:   false,
		Options: []string{string(domain.OptionProvideAnswer), string(domain.OptionSearchWeb)},
	}, nil
}

// HandleResponse implements ports.AnswerService.
func (kb *KnowledgeBase) HandleResponse(ctx context.Context, req domain.HandleRequest) (domain.HandleResult, error) {
	key := domain.NormalizeQuestion(req.Question)
	if key == "" {
		return domain.HandleResult{}, ErrEmptyQuestion
	}

	switch req.Option {
	case domain.OptionProvideAnswer:
		return kb.learn(key, req.UserAnswer), nil
	case domain.OptionSearchWeb:
		if req.ConfirmWeb != nil {
			return kb.confirm(key, *req.ConfirmWeb), nil
		}
		return kb.search(ctx, key)
	default:
		return domain.HandleResult{}, fmt.Errorf("%w: %q", ErrUnknownOption, req.Option)
	}
}

// Lookup returns the stored answer for a question.
func (kb *KnowledgeBase) Lookup(question string) (string, bool) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	a, ok := kb.answers[domain.NormalizeQuestion(question)]
	return a, ok
}

func (kb *KnowledgeBase) learn(key string, answer *string) domain.HandleResult {
	if answer == nil || strings.TrimSpace(*answer) == "" {
		return domain.HandleResult{Success: false, Message: "An answer is required."}
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.answers[key] = strings.TrimSpace(*answer)
	return domain.HandleResult{Success: true}
}

// search runs without the lock held; the searcher may be slow.
func (kb *KnowledgeBase) search(ctx context.Context, key string) (domain.HandleResult, error) {
	if kb.searcher == nil {
		return domain.HandleResult{}, nil
	}
	preview, err := kb.searcher.Search(ctx, key)
	if err != nil {
		return domain.HandleResult{}, fmt.Errorf("web search: %w", err)
	}
	preview = strings.TrimSpace(preview)
	if preview == "" {
		return domain.HandleResult{}, nil
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.previews[key] = preview
	return domain.HandleResult{Preview: preview}, nil
}

func (kb *KnowledgeBase) confirm(key string, accept bool) domain.HandleResult {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	preview, ok := kb.previews[key]
	delete(kb.previews, key)
	if !accept {
		return domain.HandleResult{}
	}
	if !ok {
		return domain.HandleResult{Success: false, Message: "There is no web answer to save for that question."}
	}
	kb.answers[key] = preview
	return domain.HandleResult{Success: true}
}

func (kb *KnowledgeBase) isJokeRequest(key string) bool {
	if len(kb.jokes) == 0 {
		return false
	}
	for _, w := range kb.jokeTriggers {
		if w != "" && strings.Contains(key, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
