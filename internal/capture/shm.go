package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
)

var shmCaptureRect = screenshot.CaptureRect

// shmBackend goes through kbinani/screenshot, which uses MIT-SHM on X11.
type shmBackend struct{}

func (shmBackend) CaptureRect(rect image.Rectangle) (*image.RGBA, error) {
	img, err := shmCaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("shm capture: %w", err)
	}
	if img.Rect.Min == (image.Point{}) {
		return img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, img.Rect.Min, draw.Src)
	return out, nil
}
