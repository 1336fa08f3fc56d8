package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventStageChanged    EventType = "stage_changed"
	EventRequestStart    EventType = "request_start"
	EventRequestEnd      EventType = "request_end"
	EventSettled         EventType = "settled"
)

// Request outcomes reported in RequestEvent.Outcome.
const (
	OutcomeOK            = "ok"
	OutcomeTransportErr  = "transport_error"
	OutcomeProtocolErr   = "protocol_error"
	OutcomeUnknownErr    = "error"
	OutcomeNotApplicable = ""
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// MessageEvent is emitted after a message is appended to the transcript.
type MessageEvent struct {
	EventBase
	Message Message `json:"message"`
}

// StageEvent is emitted when the pending interaction changes stage.
type StageEvent struct {
	EventBase
	From     Stage  `json:"from"`
	To       Stage  `json:"to"`
	Question string `json:"question,omitempty"`
}

// RequestEvent is emitted around each Answer Service call.
type RequestEvent struct {
	EventBase
	Op       string        `json:"op"`
	Duration time.Duration `json:"duration,omitempty"`
	Outcome  string        `json:"outcome,omitempty"`
	Err      error         `json:"-"`
}

// SettleEvent is emitted once an action has been fully applied.
// Renderers clear their input buffer and scroll to the latest message on it.
type SettleEvent struct {
	EventBase
	Action   string   `json:"action"`
	Snapshot Snapshot `json:"snapshot"`
}

// LifecycleHooks defines callbacks for dialog observability.
// Hooks run synchronously outside the controller lock and must not call back
// into mutating controller methods.
type LifecycleHooks struct {
	OnMessage      func(context.Context, *MessageEvent)
	OnStageChange  func(context.Context, *StageEvent)
	OnRequestStart func(context.Context, *RequestEvent)
	OnRequestEnd   func(context.Context, *RequestEvent)
	OnSettle       func(context.Context, *SettleEvent)
}

// CombineHooks fans every event out to each of the given hook sets in order.
func CombineHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnMessage: func(ctx context.Context, e *MessageEvent) {
			for _, h := range all {
				if h.OnMessage != nil {
					h.OnMessage(ctx, e)
				}
			}
		},
		OnStageChange: func(ctx context.Context, e *StageEvent) {
			for _, h := range all {
				if h.OnStageChange != nil {
					h.OnStageChange(ctx, e)
				}
			}
		},
		OnRequestStart: func(ctx context.Context, e *RequestEvent) {
			for _, h := range all {
				if h.OnRequestStart != nil {
					h.OnRequestStart(ctx, e)
				}
			}
		},
		OnRequestEnd: func(ctx context.Context, e *RequestEvent) {
			for _, h := range all {
				if h.OnRequestEnd != nil {
					h.OnRequestEnd(ctx, e)
				}
			}
		},
		OnSettle: func(ctx context.Context, e *SettleEvent) {
			for _, h := range all {
				if h.OnSettle != nil {
					h.OnSettle(ctx, e)
				}
			}
		},
	}
}
