package runtime

import (
	"context"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// events collects what happened while the lock was held so hooks can run after it is released.
type events struct {
	messages []domain.Message
	stages   []domain.StageEvent
}

func (c *Controller) emit(ctx context.Context, ev *events) {
	for i := range ev.messages {
		msg := ev.messages[i]
		c.logger.Debug("Message appended", "role", msg.Role, "kind", msg.Kind)
		if c.hooks.OnMessage != nil {
			c.hooks.OnMessage(ctx, &domain.MessageEvent{
				EventBase: c.base(domain.EventMessageAppended),
				Message:   msg,
			})
		}
	}
	for i := range ev.stages {
		st := ev.stages[i]
		c.logger.Info("Stage changed", "from", st.From, "to", st.To)
		if c.hooks.OnStageChange != nil {
			st.EventBase = c.base(domain.EventStageChanged)
			c.hooks.OnStageChange(ctx, &st)
		}
	}
}

func (c *Controller) fireSettle(ctx context.Context, action string, snap domain.Snapshot) {
	if c.hooks.OnSettle != nil {
		c.hooks.OnSettle(ctx, &domain.SettleEvent{
			EventBase: c.base(domain.EventSettled),
			Action:    action,
			Snapshot:  snap,
		})
	}
}

func (c *Controller) fireRequest(ctx context.Context, typ domain.EventType, op string, d time.Duration, outcome string, err error) {
	hook := c.hooks.OnRequestStart
	if typ == domain.EventRequestEnd {
		hook = c.hooks.OnRequestEnd
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.RequestEvent{
		EventBase: c.base(typ),
		Op:        op,
		Duration:  d,
		Outcome:   outcome,
		Err:       err,
	})
}

func (c *Controller) base(typ domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), Type: typ}
}
