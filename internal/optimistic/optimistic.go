// Package optimistic applies a local state change ahead of the remote write that makes it durable.
package optimistic

import (
	"context"
	"errors"
	"fmt"
)

// Outcome reports how an optimistic update settled.
type Outcome int

const (
	// Committed means the remote write succeeded and the local change stands.
	Committed Outcome = iota
	// Reconciled means the remote write failed and local state was replaced by a fresh remote read.
	Reconciled
	// Stale means both the write and the follow-up read failed; the returned state is the
	// pre-change snapshot and may diverge from the remote.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case Reconciled:
		return "reconciled"
	default:
		return "stale"
	}
}

// Result carries the settled state together with the outcome.
type Result[T any] struct {
	State   T
	Outcome Outcome
}

// Apply runs change against local, then write with the changed state. When write fails the
// local state is discarded in favour of reload. The write error is always returned so callers
// can surface it; the state in Result is the one the caller should keep.
func Apply[T any](
	ctx context.Context,
	local T,
	change func(T) T,
	write func(context.Context, T) error,
	reload func(context.Context) (T, error),
) (Result[T], error) {
	if change == nil || write == nil {
		return Result[T]{State: local, Outcome: Stale}, errors.New("optimistic: change and write are required")
	}
	next := change(local)
	werr := write(ctx, next)
	if werr == nil {
		return Result[T]{State: next, Outcome: Committed}, nil
	}
	if reload == nil {
		return Result[T]{State: local, Outcome: Stale}, werr
	}
	fresh, rerr := reload(ctx)
	if rerr != nil {
		return Result[T]{State: local, Outcome: Stale}, errors.Join(werr, fmt.Errorf("optimistic: reload: %w", rerr))
	}
	return Result[T]{State: fresh, Outcome: Reconciled}, werr
}
