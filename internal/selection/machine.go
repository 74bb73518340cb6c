package selection

import "image"

// Overlay renders the feedback outline shown while dragging.
type Overlay interface {
	Draw(Rect)
	Erase(Rect)
}

// Phase is the state of a selection gesture.
type Phase int

const (
	// Idle waits for the first button press.
	Idle Phase = iota
	// Dragging follows the pointer until the button is released.
	Dragging
	// Resolved holds a final rectangle.
	Resolved
	// Cancelled means the gesture produced no rectangle.
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Machine tracks one drag gesture. The outline currently on screen is always
// erased before another one is drawn, and nothing is left on screen once the
// machine reaches Resolved or Cancelled.
type Machine struct {
	overlay Overlay
	phase   Phase
	origin  image.Point
	live    Rect
	result  Rect
}

// NewMachine returns an idle machine drawing through overlay.
func NewMachine(overlay Overlay) *Machine {
	return &Machine{overlay: overlay}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Done reports whether the gesture has finished.
func (m *Machine) Done() bool {
	return m.phase == Resolved || m.phase == Cancelled
}

// Press starts a drag at p.
func (m *Machine) Press(p image.Point) {
	if m.phase != Idle {
		return
	}
	m.origin = p
	m.live = Rect{X: p.X, Y: p.Y}
	m.phase = Dragging
}

// Motion moves the drag corner to p and refreshes the outline.
func (m *Machine) Motion(p image.Point) {
	if m.phase != Dragging {
		return
	}
	m.hideOutline()
	m.live = span(m.origin, p)
	if visible(m.live) {
		m.overlay.Draw(m.live)
	}
}

// Release finishes the drag at p.
func (m *Machine) Release(p image.Point) {
	if m.phase != Dragging {
		return
	}
	m.hideOutline()
	final := span(m.origin, p)
	if final.Empty() {
		m.phase = Cancelled
		return
	}
	final.Width++
	final.Height++
	m.result = final
	m.phase = Resolved
}

// Cancel abandons the gesture. Calling it on a finished machine does nothing.
func (m *Machine) Cancel() {
	if m.Done() {
		return
	}
	m.hideOutline()
	m.phase = Cancelled
}

// Result returns the selected rectangle, or false when the gesture was
// cancelled or is still running.
func (m *Machine) Result() (Rect, bool) {
	if m.phase != Resolved {
		return Rect{}, false
	}
	return m.result, true
}

func (m *Machine) hideOutline() {
	if visible(m.live) {
		m.overlay.Erase(m.live)
	}
	m.live = Rect{X: m.live.X, Y: m.live.Y}
}

// An outline is only drawn when it spans both axes.
func visible(r Rect) bool {
	return r.Width > 0 && r.Height > 0
}
