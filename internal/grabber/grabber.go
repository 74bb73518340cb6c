// Package grabber runs one select, capture and copy cycle.
package grabber

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/example/screengrabber/internal/selection"
)

// Selector resolves an interactive selection; false means cancelled.
type Selector interface {
	Select(ctx context.Context) (selection.Rect, bool)
}

// Capturer reads screen pixels.
type Capturer interface {
	Capture(rect image.Rectangle) (*image.RGBA, error)
}

// Publisher places an image on the clipboard.
type Publisher func(image.Image) error

// Notifier reports finished captures and copies. A nil Notifier is allowed.
type Notifier interface {
	Captured(rect selection.Rect, img image.Image)
	Copied(rect selection.Rect)
}

// Grabber wires the selection, capture and clipboard steps together.
type Grabber struct {
	selector Selector
	capturer Capturer
	publish  Publisher
	notifier Notifier
}

// New returns a Grabber. notifier may be nil.
func New(selector Selector, capturer Capturer, publish Publisher, notifier Notifier) *Grabber {
	return &Grabber{selector: selector, capturer: capturer, publish: publish, notifier: notifier}
}

// TakeScreenshot lets the user select a region and copies it to the
// clipboard. A cancelled selection is not an error.
func (g *Grabber) TakeScreenshot(ctx context.Context) error {
	rect, ok := g.selector.Select(ctx)
	if !ok {
		return nil
	}
	img, err := g.capturer.Capture(rect.Bounds())
	if err != nil {
		return fmt.Errorf("capture %dx%d+%d+%d: %w", rect.Width, rect.Height, rect.X, rect.Y, err)
	}
	if g.notifier != nil {
		g.notifier.Captured(rect, img)
	}
	if err := g.publish(img); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	if g.notifier != nil {
		g.notifier.Copied(rect)
	}
	return nil
}

// Run is TakeScreenshot for callers that only log failures, such as the
// signal loop of the primary instance.
func (g *Grabber) Run(ctx context.Context) {
	if err := g.TakeScreenshot(ctx); err != nil {
		log.Printf("screenshot: %v", err)
	}
}
