package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/parley/pkg/domain"
)

// call runs one Answer Service operation under the controller timeout.
// The timeout holds even if the service ignores its context: the result of a
// late reply is discarded.
func call[T any](c *Controller, ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.fireRequest(ctx, domain.EventRequestStart, op, 0, domain.OutcomeNotApplicable, nil)
	started := time.Now()

	v, err := invoke(reqCtx, fn)
	err = normalize(op, err)
	elapsed := time.Since(started)

	outcome := outcomeOf(err)
	switch outcome {
	case domain.OutcomeOK:
		c.logger.Debug("Answer Service call finished", "op", op, "duration", elapsed)
	case domain.OutcomeProtocolErr:
		c.logger.Warn("Answer Service replied with an unexpected shape", "op", op, "duration", elapsed, "err", err)
	default:
		c.logger.Warn("Answer Service call failed", "op", op, "duration", elapsed, "err", err)
	}

	c.fireRequest(ctx, domain.EventRequestEnd, op, elapsed, outcome, err)
	return v, err
}

func invoke[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// normalize maps untyped failures (including timeouts) to TransportError.
func normalize(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *domain.TransportError
	var pe *domain.ProtocolError
	if errors.As(err, &te) || errors.As(err, &pe) {
		return err
	}
	return &domain.TransportError{Op: op, Err: err}
}

func outcomeOf(err error) string {
	if err == nil {
		return domain.OutcomeOK
	}
	var pe *domain.ProtocolError
	if errors.As(err, &pe) {
		return domain.OutcomeProtocolErr
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		return domain.OutcomeTransportErr
	}
	return domain.OutcomeUnknownErr
}
