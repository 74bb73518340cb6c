// Package capture reads pixels from the display into memory.
package capture

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
)

// Backend names accepted by New.
const (
	BackendX11 = "x11"
	BackendSHM = "shm"
)

var errEmptyRegion = errors.New("region is empty")

type platformBackend interface {
	CaptureRect(image.Rectangle) (*image.RGBA, error)
}

// Service captures rectangles of the root window. When the preferred backend
// fails it retries once with the fallback, if any.
type Service struct {
	name     string
	primary  platformBackend
	fallback platformBackend
}

// New returns a Service using the named backend. The x11 backend reads through
// conn and falls back to shm; the shm backend opens its own connection.
func New(name string, conn *xgb.Conn) (*Service, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendX11:
		if conn == nil {
			return nil, fmt.Errorf("x11 capture requires an X connection")
		}
		return &Service{name: BackendX11, primary: newX11Backend(conn), fallback: shmBackend{}}, nil
	case BackendSHM:
		return &Service{name: BackendSHM, primary: shmBackend{}}, nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", name)
	}
}

// Name reports the preferred backend.
func (s *Service) Name() string {
	return s.name
}

// Capture returns the pixels inside rect, in root window coordinates. The
// rectangle is not clipped to the screen.
func (s *Service) Capture(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return nil, errEmptyRegion
	}
	img, err := s.primary.CaptureRect(rect)
	if err == nil {
		return img, nil
	}
	if s.fallback == nil {
		return nil, fmt.Errorf("capture %v: %w", rect, err)
	}
	img, fbErr := s.fallback.CaptureRect(rect)
	if fbErr != nil {
		return nil, fmt.Errorf("capture %v: %v; fallback failed: %w", rect, err, fbErr)
	}
	return img, nil
}
