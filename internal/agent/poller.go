package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/blinxlabs/blinx/internal/config"
	"github.com/blinxlabs/blinx/internal/errorsx"
	"github.com/blinxlabs/blinx/internal/schema"
)

// ErrPollBudgetExhausted is returned when a run is still pending after the
// poll policy's attempts or time budget ran out.
var ErrPollBudgetExhausted = errors.New("run did not settle within the poll budget")

// errRunPending marks a poll attempt that found the run still in progress.
var errRunPending = errors.New("run pending")

// PollPolicy bounds how a run is polled.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts uint
	Timeout     time.Duration
}

// NewPollPolicy reads the policy from config.
func NewPollPolicy(cfg config.PollConfig) PollPolicy {
	return PollPolicy{Interval: cfg.Interval, MaxAttempts: cfg.MaxAttempts, Timeout: cfg.Timeout}
}

// Poller waits for runs to leave the queued/in-progress states.
type Poller struct {
	service schema.AssistantService
	policy  PollPolicy
}

func NewPoller(service schema.AssistantService, policy PollPolicy) *Poller {
	return &Poller{service: service, policy: policy}
}

// Await polls run until it requires action or reaches a terminal status.
// The snapshot passed in is checked first; each later check waits one
// interval and fetches the run again. A failed fetch is not retried.
func (p *Poller) Await(ctx context.Context, run schema.Run) (schema.Run, error) {
	if !run.Status.Pending() {
		return run, nil
	}

	pollCtx := ctx
	if p.policy.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.policy.Timeout)
		defer cancel()
	}

	current := run
	attempts := uint(0)
	op := func() (schema.Run, error) {
		if attempts > 0 {
			next, err := p.service.GetRun(pollCtx, run.ThreadID, run.ID)
			if err != nil {
				return current, backoff.Permanent(err)
			}
			current = next
		}
		attempts++
		if current.Status.Pending() {
			slog.Debug("Run pending", "run", current.ID, "status", current.Status, "attempt", attempts)
			return current, errRunPending
		}
		return current, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewConstantBackOff(p.policy.Interval)),
		// One extra try for the initial snapshot check.
		backoff.WithMaxTries(p.policy.MaxAttempts + 1),
		// Zero disables backoff's own 15m default; the timeout is the only time bound.
		backoff.WithMaxElapsedTime(p.policy.Timeout),
	}

	settled, err := backoff.Retry(pollCtx, op, opts...)
	switch {
	case err == nil:
		return settled, nil
	case errors.Is(err, errRunPending):
		return current, errorsx.Wrap(fmt.Errorf("%w: run %s still %s after %d polls",
			ErrPollBudgetExhausted, current.ID, current.Status, attempts-1), errorsx.ReasonPollExhausted)
	case ctx.Err() == nil && pollCtx.Err() != nil:
		return current, errorsx.Wrap(fmt.Errorf("%w: run %s still %s after %s",
			ErrPollBudgetExhausted, current.ID, current.Status, p.policy.Timeout), errorsx.ReasonPollExhausted)
	default:
		return current, fmt.Errorf("poll run %s: %w", run.ID, err)
	}
}
