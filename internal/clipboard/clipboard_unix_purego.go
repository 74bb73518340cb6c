//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

// Package clipboard publishes captured images on the CLIPBOARD selection.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"golang.org/x/image/bmp"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	backend      *x11Clipboard
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		clip := &x11Clipboard{}
		if err := clip.initialize(); err != nil {
			initErr = err
			return
		}
		backend = clip
	})
	return initErr
}

// WriteImage encodes img as PNG and takes ownership of the clipboard,
// replacing whatever it held before. Requests are answered from a background
// goroutine for as long as the process keeps ownership.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return backend.writeImage(buf.Bytes())
}

type x11Clipboard struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet
	mu     sync.Mutex
	image  imageData
	// chunk is the largest property payload sent in one request; larger
	// replies go out as INCR transfers.
	chunk     int
	transfers map[transferKey]*incrTransfer
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	bmp       xproto.Atom
	incr      xproto.Atom
}

// imageData holds the PNG on the clipboard and a BMP rendition built the
// first time a client asks for one.
type imageData struct {
	png []byte
	bmp []byte
}

func (d *imageData) empty() bool {
	return len(d.png) == 0
}

func (d *imageData) asBMP() ([]byte, error) {
	if d.bmp != nil {
		return d.bmp, nil
	}
	img, err := png.Decode(bytes.NewReader(d.png))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	d.bmp = buf.Bytes()
	return d.bmp, nil
}

func (c *x11Clipboard) initialize() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return err
	}
	c.conn = conn
	c.window = window
	c.atoms = atoms
	c.chunk = chunkSize(setup)
	go c.eventLoop()
	return nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	get := func(name string) (xproto.Atom, error) {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return 0, fmt.Errorf("intern %s: %w", name, err)
		}
		return reply.Atom, nil
	}
	var (
		set atomSet
		err error
	)
	if set.clipboard, err = get("CLIPBOARD"); err != nil {
		return atomSet{}, err
	}
	if set.targets, err = get("TARGETS"); err != nil {
		return atomSet{}, err
	}
	if set.png, err = get("image/png"); err != nil {
		return atomSet{}, err
	}
	if set.bmp, err = get("image/bmp"); err != nil {
		return atomSet{}, err
	}
	if set.incr, err = get("INCR"); err != nil {
		return atomSet{}, err
	}
	return set, nil
}

func (c *x11Clipboard) writeImage(data []byte) error {
	c.mu.Lock()
	c.image = imageData{png: append([]byte(nil), data...)}
	c.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(c.conn, c.window, c.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (c *x11Clipboard) eventLoop() {
	for {
		ev, err := c.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			log.Printf("clipboard: %v", err)
			continue
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			c.handleSelectionRequest(e)
		case xproto.PropertyNotifyEvent:
			if e.State == xproto.PropertyDelete {
				c.continueTransfer(transferKey{e.Window, e.Atom})
			}
		case xproto.SelectionClearEvent:
			c.mu.Lock()
			c.image = imageData{}
			c.mu.Unlock()
		}
	}
}

type selectionReply struct {
	typ     xproto.Atom
	format  byte
	payload []byte
}

// reply builds the property contents for a conversion request, or false when
// the target cannot be served.
func (c *x11Clipboard) reply(target xproto.Atom) (selectionReply, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch target {
	case c.atoms.targets:
		targets := []xproto.Atom{c.atoms.targets}
		if !c.image.empty() {
			targets = append(targets, c.atoms.png, c.atoms.bmp)
		}
		return selectionReply{typ: xproto.AtomAtom, format: 32, payload: atomsToBytes(targets)}, true
	case c.atoms.png:
		if c.image.empty() {
			return selectionReply{}, false
		}
		return selectionReply{typ: c.atoms.png, format: 8, payload: c.image.png}, true
	case c.atoms.bmp:
		if c.image.empty() {
			return selectionReply{}, false
		}
		data, err := c.image.asBMP()
		if err != nil {
			log.Printf("clipboard: bmp conversion: %v", err)
			return selectionReply{}, false
		}
		return selectionReply{typ: c.atoms.bmp, format: 8, payload: data}, true
	default:
		return selectionReply{}, false
	}
}

func (c *x11Clipboard) handleSelectionRequest(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	r, ok := c.reply(e.Target)
	switch {
	case !ok:
		property = xproto.AtomNone
	case c.needsIncr(r):
		c.startTransfer(e.Requestor, property, r)
	default:
		c.setProperty(e.Requestor, property, r.typ, r.format, r.payload)
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(c.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

func (c *x11Clipboard) setProperty(w xproto.Window, property, typ xproto.Atom, format byte, payload []byte) {
	length := uint32(len(payload))
	if format == 32 {
		length /= 4
	}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, w, property, typ, format, length, payload)
}

// chunkSize leaves room for the ChangeProperty header below the server's
// maximum request length.
func chunkSize(setup *xproto.SetupInfo) int {
	n := int(setup.MaximumRequestLength)*4 - 64
	if n < 4096 {
		n = 4096
	}
	return n
}

func (c *x11Clipboard) needsIncr(r selectionReply) bool {
	return r.format == 8 && c.chunk > 0 && len(r.payload) > c.chunk
}

type transferKey struct {
	requestor xproto.Window
	property  xproto.Atom
}

// incrTransfer is one ICCCM incremental transfer. The requestor deletes the
// property after reading each chunk; a zero-length chunk ends the transfer.
type incrTransfer struct {
	typ  xproto.Atom
	data []byte
}

// next returns the following chunk, or an empty chunk and true once all data
// has been sent.
func (t *incrTransfer) next(size int) ([]byte, bool) {
	if len(t.data) == 0 {
		return nil, true
	}
	n := min(size, len(t.data))
	chunk := t.data[:n]
	t.data = t.data[n:]
	return chunk, false
}

func (c *x11Clipboard) startTransfer(requestor xproto.Window, property xproto.Atom, r selectionReply) {
	if c.transfers == nil {
		c.transfers = make(map[transferKey]*incrTransfer)
	}
	c.transfers[transferKey{requestor, property}] = &incrTransfer{typ: r.typ, data: r.payload}
	xproto.ChangeWindowAttributes(c.conn, requestor, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange})
	size := make([]byte, 4)
	xgb.Put32(size, uint32(len(r.payload)))
	c.setProperty(requestor, property, c.atoms.incr, 32, size)
}

func (c *x11Clipboard) continueTransfer(key transferKey) {
	t, ok := c.transfers[key]
	if !ok {
		return
	}
	chunk, done := t.next(c.chunk)
	c.setProperty(key.requestor, key.property, t.typ, 8, chunk)
	if done {
		delete(c.transfers, key)
		xproto.ChangeWindowAttributes(c.conn, key.requestor, xproto.CwEventMask, []uint32{xproto.EventMaskNoEvent})
	}
}

func atomsToBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
