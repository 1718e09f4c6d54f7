// Package overlay is the state machine of the search overlay: when it is
// open, what it shows, and which path navigation goes to.
package overlay

import (
	"strings"
	"sync"

	"github.com/okian/tsuri/internal/domain/debounce"
	"github.com/okian/tsuri/internal/domain/model"
)

// ShortcutKey is the key that, with Ctrl or Cmd held, toggles the overlay.
const ShortcutKey = "k"

// Key is a keyboard event.
type Key struct {
	Name string
	Ctrl bool
	Meta bool // Cmd on macOS
}

// IsShortcut reports whether k is the reserved toggle combination.
func (k Key) IsShortcut() bool {
	return (k.Ctrl || k.Meta) && strings.EqualFold(k.Name, ShortcutKey)
}

// View is what the overlay renders.
type View struct {
	Open bool
	debounce.State
}

// Overlay wraps a Debouncer with open/close handling. Every close path clears
// the query so a reopened overlay starts empty.
type Overlay struct {
	mu   sync.Mutex
	open bool
	deb  *debounce.Debouncer
}

// New returns a closed overlay driving d.
func New(d *debounce.Debouncer) *Overlay {
	return &Overlay{deb: d}
}

// Open shows the overlay.
func (o *Overlay) Open() {
	o.mu.Lock()
	o.open = true
	o.mu.Unlock()
}

// Close hides the overlay and clears the query.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
}

// Escape closes the overlay.
func (o *Overlay) Escape() { o.Close() }

// ClickOutside closes the overlay.
func (o *Overlay) ClickOutside() { o.Close() }

// Shortcut toggles the overlay if k is the reserved combination and reports
// whether it was handled.
func (o *Overlay) Shortcut(k Key) bool {
	if !k.IsShortcut() {
		return false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.open {
		o.closeLocked()
	} else {
		o.open = true
	}
	return true
}

// Type forwards input while the overlay is open.
func (o *Overlay) Type(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return
	}
	o.deb.Update(query)
}

// Select clears the query and closes the overlay, then returns the item's
// target for navigation. Nothing is left to render when the caller navigates.
func (o *Overlay) Select(item model.SearchItem) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closeLocked()
	return item.Target
}

// IsOpen reports whether the overlay is shown.
func (o *Overlay) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// View returns the current render state.
func (o *Overlay) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{Open: o.open, State: o.deb.State()}
}

func (o *Overlay) closeLocked() {
	o.open = false
	o.deb.Reset()
}
