package runtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// DefaultTimeout bounds every Answer Service call.
const DefaultTimeout = 5 * time.Second

// Action names reported in settle events and logs.
const (
	ActionSubmitQuestion     = "submit_question"
	ActionChooseOption       = "choose_option"
	ActionSubmitManualAnswer = "submit_manual_answer"
	ActionConfirmWebAnswer   = "confirm_web_answer"
	ActionAnotherJoke        = "another_joke"
	ActionDismiss            = "dismiss"
)

// Operation names of the Answer Service calls.
const (
	OpAsk            = "ask"
	OpHandleResponse = "handle_response"
)

// Controller is the Dialog Controller: it owns the transcript and the pending
// interaction, issues requests to the Answer Service and interprets responses.
//
// At most one request is outstanding at a time. Actions attempted while a
// request is in flight, or outside the stage they belong to, are no-ops that
// return the current snapshot and a nil error. The only error returned to
// callers is *domain.ValidationError.
type Controller struct {
	service ports.AnswerService
	copy    domain.Copy
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	mu         sync.Mutex
	transcript domain.Transcript
	pending    domain.PendingInteraction
	request    domain.RequestState
}

// Option configures the Controller.
type Option func(*Controller)

// WithTimeout sets the bound applied to every Answer Service call.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCopy sets the user-facing message copy.
func WithCopy(cp domain.Copy) Option {
	return func(c *Controller) {
		c.copy = cp
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a controller talking to the given Answer Service.
func NewController(service ports.AnswerService, opts ...Option) *Controller {
	c := &Controller{
		service: service,
		copy:    domain.DefaultCopy(),
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy returns the message copy in use.
func (c *Controller) Copy() domain.Copy {
	return c.copy
}

// Snapshot returns a read-only copy of the current dialog.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SubmitQuestion sends a new question to the Answer Service.
func (c *Controller) SubmitQuestion(ctx context.Context, text string) (snap domain.Snapshot, err error) {
	question := strings.TrimSpace(text)

	c.mu.Lock()
	if question == "" {
		c.request.LastError = c.copy.EmptyQuestion
		snap = c.snapshotLocked()
		c.mu.Unlock()
		return snap, &domain.ValidationError{Field: "question", Reason: c.copy.EmptyQuestion}
	}
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionSubmitQuestion, "request in flight"), nil
	}

	ev := &events{}
	if !c.appendLocked(ev, domain.NewMessage(domain.RoleUser, question, domain.KindPlain, c.now()), true) {
		c.logger.Debug("Repeated question not appended", "question", question)
	}
	c.setPendingLocked(ev, domain.PendingInteraction{})
	c.request = domain.RequestState{Busy: true}
	c.mu.Unlock()
	c.emit(ctx, ev)

	defer func() { snap = c.settle(ctx, ActionSubmitQuestion) }()

	res, err := call(c, ctx, OpAsk, func(ctx context.Context) (domain.AskResult, error) {
		return c.service.Ask(ctx, question)
	})
	if err == nil && res.Found && strings.TrimSpace(res.Answer) == "" {
		err = c.protocolFailure(OpAsk, "found without answer")
	}

	c.mu.Lock()
	ev = &events{}
	switch {
	case err != nil:
		c.appendBotLocked(ev, c.failureText(err, c.copy.TransportFallback), domain.KindPlain)
	case res.Found:
		kind := domain.KindPlain
		if c.copy.IsJokeContinuation(res.Answer) {
			kind = domain.KindJokePrompt
		}
		c.appendBotLocked(ev, res.Answer, kind)
	default:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.Disambiguation), domain.KindDisambiguationPrompt)
		c.setPendingLocked(ev, domain.OpenInteraction(question, domain.ParseOptions(res.Options)))
	}
	c.mu.Unlock()
	c.emit(ctx, ev)
	return snap, nil
}

// ChooseOption picks a follow-up while the dialog awaits an option choice.
func (c *Controller) ChooseOption(ctx context.Context, opt domain.Option) (snap domain.Snapshot, err error) {
	c.mu.Lock()
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionChooseOption, "request in flight"), nil
	}
	if !c.pending.Offers(opt) {
		c.mu.Unlock()
		return c.ignore(ActionChooseOption, "option not offered", "option", opt), nil
	}

	if opt == domain.OptionProvideAnswer {
		ev := &events{}
		c.setPendingLocked(ev, c.pending.AwaitManualAnswer())
		snap = c.snapshotLocked()
		c.mu.Unlock()
		c.emit(ctx, ev)
		c.fireSettle(ctx, ActionChooseOption, snap)
		return snap, nil
	}

	question := c.pending.OriginatingQuestion
	c.request.Busy = true
	c.mu.Unlock()

	defer func() { snap = c.settle(ctx, ActionChooseOption) }()

	res, err := call(c, ctx, OpHandleResponse, func(ctx context.Context) (domain.HandleResult, error) {
		return c.service.HandleResponse(ctx, domain.SearchWeb(question))
	})

	c.mu.Lock()
	ev := &events{}
	preview := strings.TrimSpace(res.Preview)
	switch {
	case err != nil:
		// The interaction stays open so the user can retry the option.
		c.appendBotLocked(ev, c.failureText(err, c.copy.OptionFallback), domain.KindPlain)
	case preview != "":
		c.setPendingLocked(ev, c.pending.AwaitWebConfirmation(preview))
		c.appendBotLocked(ev, c.copy.FormatWebPreview(preview), domain.KindWebPreviewPrompt)
	default:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.WebNothingFound), domain.KindPlain)
		c.setPendingLocked(ev, domain.PendingInteraction{})
	}
	c.mu.Unlock()
	c.emit(ctx, ev)
	return snap, nil
}

// SubmitManualAnswer sends the user's own answer for the pending question.
func (c *Controller) SubmitManualAnswer(ctx context.Context, text string) (snap domain.Snapshot, err error) {
	answer := strings.TrimSpace(text)

	c.mu.Lock()
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionSubmitManualAnswer, "request in flight"), nil
	}
	if c.pending.CurrentStage() != domain.StageAwaitingManualAnswer {
		c.mu.Unlock()
		return c.ignore(ActionSubmitManualAnswer, "not awaiting a manual answer"), nil
	}
	if answer == "" {
		snap = c.snapshotLocked()
		c.mu.Unlock()
		return snap, &domain.ValidationError{Field: "answer", Reason: c.copy.EmptyAnswer}
	}
	question := c.pending.OriginatingQuestion
	c.request.Busy = true
	c.mu.Unlock()

	defer func() { snap = c.settle(ctx, ActionSubmitManualAnswer) }()

	res, err := call(c, ctx, OpHandleResponse, func(ctx context.Context) (domain.HandleResult, error) {
		return c.service.HandleResponse(ctx, domain.ProvideAnswer(question, answer))
	})

	c.mu.Lock()
	ev := &events{}
	switch {
	case err != nil:
		c.appendBotLocked(ev, c.failureText(err, c.copy.TransportFallback), domain.KindPlain)
	case res.Success:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, res.Answer, c.copy.ManualAnswerSaved), domain.KindPlain)
		c.setPendingLocked(ev, domain.PendingInteraction{})
	default:
		// Stage is kept so a corrected answer can be sent.
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.ManualAnswerFailed), domain.KindPlain)
	}
	c.mu.Unlock()
	c.emit(ctx, ev)
	return snap, nil
}

// ConfirmWebAnswer accepts or declines the web preview. The interaction is
// always closed once the call settles.
func (c *Controller) ConfirmWebAnswer(ctx context.Context, accept bool) (snap domain.Snapshot, err error) {
	c.mu.Lock()
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionConfirmWebAnswer, "request in flight"), nil
	}
	if c.pending.CurrentStage() != domain.StageAwaitingWebConfirmation {
		c.mu.Unlock()
		return c.ignore(ActionConfirmWebAnswer, "not awaiting web confirmation"), nil
	}
	question := c.pending.OriginatingQuestion
	c.request.Busy = true
	c.mu.Unlock()

	defer func() { snap = c.settle(ctx, ActionConfirmWebAnswer) }()

	res, err := call(c, ctx, OpHandleResponse, func(ctx context.Context) (domain.HandleResult, error) {
		return c.service.HandleResponse(ctx, domain.ConfirmWeb(question, accept))
	})

	c.mu.Lock()
	ev := &events{}
	switch {
	case err != nil:
		c.appendBotLocked(ev, c.failureText(err, c.copy.ConfirmFallback), domain.KindPlain)
	case !accept:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.WebDeclined), domain.KindPlain)
	case res.Success:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, res.Answer, c.copy.WebSaved), domain.KindPlain)
	default:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.WebSaveFailed), domain.KindPlain)
	}
	c.setPendingLocked(ev, domain.PendingInteraction{})
	c.mu.Unlock()
	c.emit(ctx, ev)
	return snap, nil
}

// RequestAnotherJoke asks the service for one more joke. The pending
// interaction, if any, is left as it is.
func (c *Controller) RequestAnotherJoke(ctx context.Context) (snap domain.Snapshot, err error) {
	c.mu.Lock()
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionAnotherJoke, "request in flight"), nil
	}
	c.request.Busy = true
	c.mu.Unlock()

	defer func() { snap = c.settle(ctx, ActionAnotherJoke) }()

	request := c.copy.JokeRequest
	res, err := call(c, ctx, OpAsk, func(ctx context.Context) (domain.AskResult, error) {
		return c.service.Ask(ctx, request)
	})
	if err == nil && res.Found && strings.TrimSpace(res.Answer) == "" {
		err = c.protocolFailure(OpAsk, "found without answer")
	}

	c.mu.Lock()
	ev := &events{}
	switch {
	case err != nil:
		c.appendBotLocked(ev, c.failureText(err, c.copy.TransportFallback), domain.KindPlain)
	case res.Found:
		c.appendBotLocked(ev, res.Answer, domain.KindJokePrompt)
	default:
		c.appendBotLocked(ev, firstNonEmpty(res.Message, c.copy.TransportFallback), domain.KindPlain)
	}
	c.mu.Unlock()
	c.emit(ctx, ev)
	return snap, nil
}

// Dismiss closes the open interaction without contacting the service.
func (c *Controller) Dismiss(ctx context.Context) (domain.Snapshot, error) {
	c.mu.Lock()
	if c.request.Busy {
		c.mu.Unlock()
		return c.ignore(ActionDismiss, "request in flight"), nil
	}
	if !c.pending.IsOpen() {
		c.mu.Unlock()
		return c.ignore(ActionDismiss, "nothing to dismiss"), nil
	}
	ev := &events{}
	c.setPendingLocked(ev, domain.PendingInteraction{})
	c.appendBotLocked(ev, c.copy.Dismissed, domain.KindPlain)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(ctx, ev)
	c.fireSettle(ctx, ActionDismiss, snap)
	return snap, nil
}

// settle releases the busy flag, checks the interaction invariant and
// notifies observers. It runs on every path out of a request.
func (c *Controller) settle(ctx context.Context, action string) domain.Snapshot {
	c.mu.Lock()
	c.request.Busy = false
	if !c.pending.Valid() {
		c.logger.Error("Pending interaction left inconsistent, clearing",
			"action", action,
			"stage", c.pending.CurrentStage(),
		)
		c.pending = domain.PendingInteraction{}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.fireSettle(ctx, action, snap)
	return snap
}

func (c *Controller) ignore(action, reason string, args ...any) domain.Snapshot {
	c.logger.Debug("Action ignored", append([]any{"action", action, "reason", reason}, args...)...)
	return c.Snapshot()
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	var last *domain.Message
	if m, ok := c.transcript.Last(); ok {
		last = &m
	}
	return domain.Snapshot{
		Transcript:  c.transcript.Messages(),
		Pending:     c.pending.Clone(),
		Request:     c.request,
		Affordances: domain.AffordancesFor(c.pending, c.request, last),
	}
}

func (c *Controller) appendLocked(ev *events, msg domain.Message, dedupe bool) bool {
	if dedupe {
		if !c.transcript.AppendUnlessRepeated(msg) {
			return false
		}
	} else {
		c.transcript.Append(msg)
	}
	ev.messages = append(ev.messages, msg)
	return true
}

func (c *Controller) appendBotLocked(ev *events, text string, kind domain.Kind) {
	c.appendLocked(ev, domain.NewMessage(domain.RoleBot, text, kind, c.now()), false)
}

func (c *Controller) setPendingLocked(ev *events, next domain.PendingInteraction) {
	from := c.pending.CurrentStage()
	question := c.pending.OriginatingQuestion
	c.pending = next
	if to := next.CurrentStage(); to != from {
		if next.OriginatingQuestion != "" {
			question = next.OriginatingQuestion
		}
		ev.stages = append(ev.stages, domain.StageEvent{From: from, To: to, Question: question})
	}
}

func (c *Controller) failureText(err error, fallback string) string {
	return firstNonEmpty(domain.UserMessage(err), fallback)
}

func (c *Controller) protocolFailure(op, reason string) error {
	err := &domain.ProtocolError{Op: op, Reason: reason}
	c.logger.Warn("Answer Service replied with an unexpected shape", "op", op, "err", err)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
