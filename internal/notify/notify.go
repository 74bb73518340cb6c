// Package notify tells the user a region was grabbed. The copy notice replaces
// the capture notice of the same grab so one popup is left per screenshot.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/example/screengrabber/internal/platform"
	"github.com/example/screengrabber/internal/selection"
)

const title = "Screen Grabber"

var send = platform.Notify

// Notifier posts desktop notifications for finished captures and copies. A
// nil Notifier is silent.
type Notifier struct {
	capture bool
	copy    bool
	// lastID is the capture notice of the grab in progress, zero if none.
	lastID uint32
}

// New returns a Notifier with the given events switched on.
func New(onCapture, onCopy bool) *Notifier {
	return &Notifier{capture: onCapture, copy: onCopy}
}

// Captured announces rect with img as the notification icon.
func (n *Notifier) Captured(rect selection.Rect, img image.Image) {
	if n == nil {
		return
	}
	n.lastID = 0
	if !n.capture {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := writePreview(img); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.lastID = n.post("Captured "+describe(rect), opts)
}

// Copied announces that rect is on the clipboard.
func (n *Notifier) Copied(rect selection.Rect) {
	if n == nil || !n.copy {
		return
	}
	n.post(describe(rect)+" copied to clipboard", platform.Options{ReplacesID: n.lastID})
	n.lastID = 0
}

func (n *Notifier) post(body string, opts platform.Options) uint32 {
	id, err := send(title, body, opts)
	if err != nil {
		log.Printf("notification: %v", err)
		return 0
	}
	return id
}

func describe(r selection.Rect) string {
	return fmt.Sprintf("%dx%d region at %d,%d", r.Width, r.Height, r.X, r.Y)
}

func writePreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "screengrabber-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}, nil
}
