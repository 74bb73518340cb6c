//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"

	"github.com/jezek/xgb"
)

type unsupportedBackend struct{}

func newX11Backend(*xgb.Conn) platformBackend {
	return unsupportedBackend{}
}

func (unsupportedBackend) CaptureRect(image.Rectangle) (*image.RGBA, error) {
	return nil, fmt.Errorf("x11 capture is not supported on this platform")
}

func RunningOnWayland() bool { return false }
