package geolocate

import (
	"context"
	"sync"
	"time"

	"github.com/okian/tsuri/internal/domain/model"
)

// NearMe owns the "near me" toggle and the last known origin. Each request
// takes a generation number; a result is applied only if no newer request
// or Disable happened in the meantime.
type NearMe struct {
	mu         sync.Mutex
	provider   Provider
	timeout    time.Duration
	enabled    bool
	locating   bool
	origin     model.Coordinate
	generation uint64
}

// NearMeState is a snapshot of the controller.
type NearMeState struct {
	Enabled  bool
	Locating bool
	Origin   *model.Coordinate
}

// NewNearMe creates a controller using provider and the per-request timeout.
func NewNearMe(provider Provider, timeout time.Duration) *NearMe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NearMe{provider: provider, timeout: timeout}
}

// Request asks the provider for a location and switches to near-me mode on
// success. Failures leave the previous mode untouched. Repeated calls simply
// re-request; only the latest one can apply.
func (n *NearMe) Request(ctx context.Context) Outcome {
	n.mu.Lock()
	n.generation++
	gen := n.generation
	n.locating = true
	n.mu.Unlock()

	out := Acquire(ctx, n.provider, n.timeout)

	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.generation {
		// Superseded by a newer request or by Disable.
		return out
	}
	n.locating = false
	if out.OK() {
		n.enabled = true
		n.origin = out.Coordinate
	}
	return out
}

// Disable leaves near-me mode and invalidates any request still in flight.
func (n *NearMe) Disable() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generation++
	n.enabled = false
	n.locating = false
}

// State returns the current snapshot. Origin is nil unless near-me mode is
// enabled.
func (n *NearMe) State() NearMeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	st := NearMeState{Enabled: n.enabled, Locating: n.locating}
	if n.enabled {
		o := n.origin
		st.Origin = &o
	}
	return st
}
