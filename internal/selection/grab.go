package selection

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// XC_crosshair from the core cursor font.
const crosshairGlyph = 34

const pointerEvents = xproto.EventMaskPointerMotion |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease

// inputGrab holds exclusive pointer and keyboard access to the root window.
// Release must be called exactly once; it is safe to defer right after a
// successful grabInput.
type inputGrab struct {
	conn   *xgb.Conn
	font   xproto.Font
	cursor xproto.Cursor
}

func grabInput(conn *xgb.Conn, root xproto.Window) (*inputGrab, error) {
	g := &inputGrab{conn: conn}
	if err := g.loadCursor(); err != nil {
		return nil, err
	}

	ptr, err := xproto.GrabPointer(conn, false, root, uint16(pointerEvents),
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, g.cursor, xproto.TimeCurrentTime).Reply()
	if err != nil {
		g.freeCursor()
		return nil, fmt.Errorf("grab pointer: %w", err)
	}
	if ptr.Status != xproto.GrabStatusSuccess {
		g.freeCursor()
		return nil, fmt.Errorf("grab pointer: %s", grabStatus(ptr.Status))
	}

	kbd, err := xproto.GrabKeyboard(conn, false, root, xproto.TimeCurrentTime,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil {
		xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
		g.freeCursor()
		return nil, fmt.Errorf("grab keyboard: %w", err)
	}
	if kbd.Status != xproto.GrabStatusSuccess {
		xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
		g.freeCursor()
		return nil, fmt.Errorf("grab keyboard: %s", grabStatus(kbd.Status))
	}
	return g, nil
}

func (g *inputGrab) loadCursor() error {
	font, err := xproto.NewFontId(g.conn)
	if err != nil {
		return fmt.Errorf("allocate font id: %w", err)
	}
	const name = "cursor"
	if err := xproto.OpenFontChecked(g.conn, font, uint16(len(name)), name).Check(); err != nil {
		return fmt.Errorf("open cursor font: %w", err)
	}
	cursor, err := xproto.NewCursorId(g.conn)
	if err != nil {
		xproto.CloseFont(g.conn, font)
		return fmt.Errorf("allocate cursor id: %w", err)
	}
	if err := xproto.CreateGlyphCursorChecked(g.conn, cursor, font, font,
		crosshairGlyph, crosshairGlyph+1, 0, 0, 0, 0xffff, 0xffff, 0xffff).Check(); err != nil {
		xproto.CloseFont(g.conn, font)
		return fmt.Errorf("create crosshair cursor: %w", err)
	}
	g.font = font
	g.cursor = cursor
	return nil
}

func (g *inputGrab) freeCursor() {
	xproto.FreeCursor(g.conn, g.cursor)
	xproto.CloseFont(g.conn, g.font)
}

// Release ungrabs the keyboard and pointer and flushes the requests so the
// rest of the desktop gets its input back before Release returns.
func (g *inputGrab) Release() {
	xproto.UngrabKeyboard(g.conn, xproto.TimeCurrentTime)
	xproto.UngrabPointer(g.conn, xproto.TimeCurrentTime)
	g.freeCursor()
	_, _ = xproto.GetInputFocus(g.conn).Reply()
}

func grabStatus(status byte) string {
	switch status {
	case xproto.GrabStatusAlreadyGrabbed:
		return "already grabbed"
	case xproto.GrabStatusInvalidTime:
		return "invalid time"
	case xproto.GrabStatusNotViewable:
		return "not viewable"
	case xproto.GrabStatusFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("status %d", status)
	}
}
