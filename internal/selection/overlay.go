package selection

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// xorOverlay draws outlines straight onto the root window with GXxor, so
// drawing the same rectangle twice restores the original pixels. Draw and
// Erase are therefore the same request.
type xorOverlay struct {
	conn *xgb.Conn
	root xproto.Window
	gc   xproto.Gcontext
}

func newXorOverlay(conn *xgb.Conn, screen *xproto.ScreenInfo, lineWidth uint32) (*xorOverlay, error) {
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return nil, fmt.Errorf("allocate gc id: %w", err)
	}
	// Values follow the bit order of the mask.
	mask := uint32(xproto.GcFunction | xproto.GcForeground | xproto.GcBackground |
		xproto.GcLineWidth | xproto.GcLineStyle | xproto.GcCapStyle | xproto.GcJoinStyle |
		xproto.GcFillStyle | xproto.GcSubwindowMode | xproto.GcGraphicsExposures)
	values := []uint32{
		xproto.GxXor,
		screen.WhitePixel,
		screen.BlackPixel,
		lineWidth,
		xproto.LineStyleSolid,
		xproto.CapStyleButt,
		xproto.JoinStyleMiter,
		xproto.FillStyleSolid,
		xproto.SubwindowModeIncludeInferiors,
		0,
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(screen.Root), mask, values).Check(); err != nil {
		return nil, fmt.Errorf("create xor gc: %w", err)
	}
	return &xorOverlay{conn: conn, root: screen.Root, gc: gc}, nil
}

func (o *xorOverlay) Draw(r Rect) {
	o.toggle(r)
}

func (o *xorOverlay) Erase(r Rect) {
	o.toggle(r)
}

func (o *xorOverlay) toggle(r Rect) {
	xproto.PolyRectangle(o.conn, xproto.Drawable(o.root), o.gc, []xproto.Rectangle{{
		X:      int16(r.X),
		Y:      int16(r.Y),
		Width:  uint16(r.Width),
		Height: uint16(r.Height),
	}})
}

func (o *xorOverlay) Close() {
	xproto.FreeGC(o.conn, o.gc)
}
