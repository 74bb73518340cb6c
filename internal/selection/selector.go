// Package selection lets the user drag out a rectangle on the X11 root window.
package selection

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Options tunes the selection gesture.
type Options struct {
	// LineWidth is the outline width in pixels. Zero selects the server's
	// fast thin line.
	LineWidth uint32
}

// Selector runs interactive selections on the default screen of conn. The
// connection must not be read by anything else while Select is running.
type Selector struct {
	conn   *xgb.Conn
	setup  *xproto.SetupInfo
	screen *xproto.ScreenInfo
	opts   Options
	escape xproto.Keycode
}

type releaser interface {
	Release()
}

var (
	grabInputFn = func(conn *xgb.Conn, root xproto.Window) (releaser, error) {
		g, err := grabInput(conn, root)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	lookupKeycodeFn = lookupKeycode
)

// NewSelector prepares a selector on conn.
func NewSelector(conn *xgb.Conn, opts Options) (*Selector, error) {
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		return nil, fmt.Errorf("no default screen")
	}
	return &Selector{conn: conn, setup: setup, screen: screen, opts: opts}, nil
}

// Select grabs the pointer and keyboard and waits for the user to drag a
// rectangle or press Escape. It returns false when nothing was selected,
// including when the grab could not be acquired.
func (s *Selector) Select(ctx context.Context) (Rect, bool) {
	if ctx.Err() != nil {
		return Rect{}, false
	}
	grab, err := grabInputFn(s.conn, s.screen.Root)
	if err != nil {
		log.Printf("selection: %v", err)
		return Rect{}, false
	}
	defer grab.Release()

	// The layout may have changed since the last selection.
	if s.escape, err = lookupKeycodeFn(s.conn, s.setup, keysymEscape); err != nil {
		log.Printf("selection: %v", err)
		return Rect{}, false
	}

	overlay, err := newXorOverlay(s.conn, s.screen, s.opts.LineWidth)
	if err != nil {
		log.Printf("selection: %v", err)
		return Rect{}, false
	}
	defer overlay.Close()

	s.drain()

	m := NewMachine(overlay)
	for !m.Done() {
		ev, xerr := s.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			log.Printf("selection: X connection closed")
			m.Cancel()
			break
		}
		if xerr != nil {
			log.Printf("selection: %v", xerr)
			continue
		}
		s.dispatch(m, ev)
	}
	return m.Result()
}

// drain discards events queued before the grab, such as a release left over
// from the previous selection.
func (s *Selector) drain() {
	for {
		ev, xerr := s.conn.PollForEvent()
		if ev == nil && xerr == nil {
			return
		}
	}
}

func (s *Selector) dispatch(m *Machine, ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		m.Press(image.Pt(int(e.RootX), int(e.RootY)))
	case xproto.MotionNotifyEvent:
		m.Motion(image.Pt(int(e.RootX), int(e.RootY)))
	case xproto.ButtonReleaseEvent:
		m.Release(image.Pt(int(e.RootX), int(e.RootY)))
	case xproto.KeyPressEvent:
		if e.Detail == s.escape {
			m.Cancel()
		}
	}
}
