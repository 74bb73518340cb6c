package selection

import (
	"image"
	"testing"
)

type opKind int

const (
	opDraw opKind = iota
	opErase
)

type op struct {
	kind opKind
	rect Rect
}

// recordingOverlay models an XOR screen: it tracks which outlines are
// currently visible and fails the test on any unbalanced erase.
type recordingOverlay struct {
	t       *testing.T
	ops     []op
	visible map[Rect]int
}

func newRecordingOverlay(t *testing.T) *recordingOverlay {
	return &recordingOverlay{t: t, visible: map[Rect]int{}}
}

func (o *recordingOverlay) Draw(r Rect) {
	o.ops = append(o.ops, op{opDraw, r})
	o.visible[r]++
	if n := o.shown(); n > 1 {
		o.t.Fatalf("%d outlines visible after drawing %+v", n, r)
	}
}

func (o *recordingOverlay) Erase(r Rect) {
	o.ops = append(o.ops, op{opErase, r})
	if o.visible[r] == 0 {
		o.t.Fatalf("erase of %+v which is not on screen", r)
	}
	o.visible[r]--
}

func (o *recordingOverlay) shown() int {
	n := 0
	for _, c := range o.visible {
		n += c
	}
	return n
}

func TestReleaseResolvesInclusiveBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		a, b image.Point
		want Rect
	}{
		{"down right", image.Pt(10, 20), image.Pt(30, 25), Rect{X: 10, Y: 20, Width: 21, Height: 6}},
		{"up left", image.Pt(30, 25), image.Pt(10, 20), Rect{X: 10, Y: 20, Width: 21, Height: 6}},
		{"down left", image.Pt(50, 5), image.Pt(40, 15), Rect{X: 40, Y: 5, Width: 11, Height: 11}},
		{"horizontal line", image.Pt(3, 7), image.Pt(9, 7), Rect{X: 3, Y: 7, Width: 7, Height: 1}},
		{"vertical line", image.Pt(3, 7), image.Pt(3, 2), Rect{X: 3, Y: 2, Width: 1, Height: 6}},
		{"negative origin", image.Pt(-20, -10), image.Pt(5, 5), Rect{X: -20, Y: -10, Width: 26, Height: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(newRecordingOverlay(t))
			m.Press(tt.a)
			m.Motion(tt.b)
			m.Release(tt.b)
			got, ok := m.Result()
			if !ok {
				t.Fatalf("expected a rectangle, phase %v", m.Phase())
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestClickWithoutDragCancels(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	m.Press(image.Pt(100, 100))
	m.Release(image.Pt(100, 100))
	if m.Phase() != Cancelled {
		t.Fatalf("expected cancelled, got %v", m.Phase())
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("expected no rectangle")
	}
	if len(o.ops) != 0 {
		t.Fatalf("expected no drawing, got %d ops", len(o.ops))
	}
}

func TestEscapeWhileIdleCancels(t *testing.T) {
	m := NewMachine(newRecordingOverlay(t))
	m.Cancel()
	if m.Phase() != Cancelled || !m.Done() {
		t.Fatalf("expected cancelled, got %v", m.Phase())
	}
	if _, ok := m.Result(); ok {
		t.Fatalf("expected no rectangle")
	}
}

func TestRepeatedEscapeResolvesOnce(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	for i := 0; i < 5; i++ {
		m.Cancel()
	}
	m.Press(image.Pt(1, 1))
	m.Motion(image.Pt(20, 20))
	m.Release(image.Pt(20, 20))
	if m.Phase() != Cancelled {
		t.Fatalf("expected cancelled to stick, got %v", m.Phase())
	}
	if len(o.ops) != 0 {
		t.Fatalf("events after cancel must not draw, got %d ops", len(o.ops))
	}
}

func TestMotionAlternatesEraseAndDraw(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	m.Press(image.Pt(0, 0))

	const steps = 25
	for i := 1; i <= steps; i++ {
		m.Motion(image.Pt(i*3, i*2))
		if n := o.shown(); n != 1 {
			t.Fatalf("after motion %d: %d outlines visible", i, n)
		}
	}

	// first motion only draws, every later one erases then draws
	if len(o.ops) != 1+2*(steps-1) {
		t.Fatalf("unexpected op count %d", len(o.ops))
	}
	for i, got := range o.ops {
		want := opDraw
		if i%2 == 1 {
			want = opErase
		}
		if got.kind != want {
			t.Fatalf("op %d: got kind %d want %d", i, got.kind, want)
		}
		if i > 0 && got.kind == opErase && got.rect != o.ops[i-1].rect {
			t.Fatalf("op %d erased %+v but %+v was drawn", i, got.rect, o.ops[i-1].rect)
		}
	}

	m.Release(image.Pt(steps*3, steps*2))
	if n := o.shown(); n != 0 {
		t.Fatalf("outline left on screen after release: %d", n)
	}
	if last := o.ops[len(o.ops)-1]; last.kind != opErase {
		t.Fatalf("release must end with an erase, got %d", last.kind)
	}
}

func TestDegenerateMotionDrawsNothing(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	m.Press(image.Pt(10, 10))
	m.Motion(image.Pt(20, 20))
	m.Motion(image.Pt(30, 10))
	if n := o.shown(); n != 0 {
		t.Fatalf("flat drag should leave nothing visible, got %d", n)
	}
	m.Motion(image.Pt(5, 5))
	if n := o.shown(); n != 1 {
		t.Fatalf("expected one outline, got %d", n)
	}
}

func TestEscapeWhileDraggingErasesOutline(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	m.Press(image.Pt(10, 10))
	m.Motion(image.Pt(40, 40))
	m.Cancel()
	if m.Phase() != Cancelled {
		t.Fatalf("expected cancelled, got %v", m.Phase())
	}
	if n := o.shown(); n != 0 {
		t.Fatalf("outline left on screen after cancel: %d", n)
	}
}

func TestEventsBeforePressAreIgnored(t *testing.T) {
	o := newRecordingOverlay(t)
	m := NewMachine(o)
	m.Motion(image.Pt(5, 5))
	m.Release(image.Pt(5, 5))
	if m.Phase() != Idle {
		t.Fatalf("expected idle, got %v", m.Phase())
	}
	m.Press(image.Pt(1, 2))
	m.Press(image.Pt(50, 50))
	m.Release(image.Pt(4, 6))
	got, ok := m.Result()
	if !ok {
		t.Fatalf("expected rectangle")
	}
	if want := (Rect{X: 1, Y: 2, Width: 4, Height: 5}); got != want {
		t.Fatalf("second press must not move the origin: got %+v want %+v", got, want)
	}
}

func TestRectBounds(t *testing.T) {
	r := Rect{X: 5, Y: 6, Width: 10, Height: 3}
	if got, want := r.Bounds(), image.Rect(5, 6, 15, 9); got != want {
		t.Fatalf("got %v want %v", got, want)
	}
	if r.Empty() {
		t.Fatalf("non-zero rect reported empty")
	}
	if !(Rect{X: 3, Y: 4}).Empty() {
		t.Fatalf("zero-size rect not empty")
	}
}
