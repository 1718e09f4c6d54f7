// Package geolocate wraps the one-shot "where am I" request behind an
// explicit timeout and a sum-typed outcome.
package geolocate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/tsuri/internal/domain/model"
)

// DefaultTimeout bounds a single location request.
const DefaultTimeout = 10 * time.Second

// Request carries the hints passed to a Provider.
type Request struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Provider resolves the user's current coordinate. Implementations should
// return ErrDenied when the user refused and honor ctx for cancellation.
type Provider interface {
	Locate(ctx context.Context, req Request) (model.Coordinate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (model.Coordinate, error)

// Locate calls f.
func (f ProviderFunc) Locate(ctx context.Context, req Request) (model.Coordinate, error) {
	return f(ctx, req)
}

// StaticProvider answers with a coordinate already known to the caller,
// e.g. one sent by a browser along with the request.
type StaticProvider struct {
	Coordinate model.Coordinate
}

// Locate returns the fixed coordinate.
func (p StaticProvider) Locate(ctx context.Context, _ Request) (model.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return model.Coordinate{}, err
	}
	return p.Coordinate, nil
}

// Status is the discriminant of an Outcome.
type Status int

// Outcome statuses.
const (
	StatusLocated Status = iota
	StatusDenied
	StatusTimedOut
	StatusUnavailable
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusLocated:
		return "located"
	case StatusDenied:
		return "denied"
	case StatusTimedOut:
		return "timeout"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the result of one location request. Coordinate is meaningful
// only when Status is StatusLocated.
type Outcome struct {
	Status     Status
	Coordinate model.Coordinate
	Err        error
}

// OK reports whether a coordinate was obtained.
func (o Outcome) OK() bool { return o.Status == StatusLocated }

// Acquire performs one high-accuracy location request bounded by timeout.
// It never retries. A non-positive timeout selects DefaultTimeout.
func Acquire(ctx context.Context, p Provider, timeout time.Duration) Outcome {
	if p == nil {
		return Outcome{Status: StatusUnavailable, Err: ErrNoProvider}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		coord model.Coordinate
		err   error
	}
	// Buffered: a provider answering after the deadline must not block.
	done := make(chan result, 1)
	go func() {
		c, err := p.Locate(ctx, Request{HighAccuracy: true, Timeout: timeout})
		done <- result{coord: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return fromContext(ctx.Err())
	case r := <-done:
		return classify(r.coord, r.err)
	}
}

func classify(c model.Coordinate, err error) Outcome {
	switch {
	case err == nil && !c.Valid():
		return Outcome{Status: StatusUnavailable, Err: fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, c.Latitude, c.Longitude)}
	case err == nil:
		return Outcome{Status: StatusLocated, Coordinate: c}
	case errors.Is(err, ErrDenied):
		return Outcome{Status: StatusDenied, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return fromContext(err)
	default:
		return Outcome{Status: StatusUnavailable, Err: err}
	}
}

func fromContext(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Status: StatusTimedOut, Err: fmt.Errorf("location request timed out: %w", err)}
	}
	return Outcome{Status: StatusUnavailable, Err: fmt.Errorf("location request cancelled: %w", err)}
}
