//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Backend reads the root window with GetImage.
type x11Backend struct {
	setup    *xproto.SetupInfo
	getImage func(image.Rectangle) (*xproto.GetImageReply, error)
}

func newX11Backend(conn *xgb.Conn) platformBackend {
	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root
	return x11Backend{
		setup: setup,
		getImage: func(r image.Rectangle) (*xproto.GetImageReply, error) {
			return xproto.GetImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(root),
				int16(r.Min.X), int16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), ^uint32(0)).Reply()
		},
	}
}

func (b x11Backend) CaptureRect(rect image.Rectangle) (*image.RGBA, error) {
	reply, err := b.getImage(rect)
	if err != nil {
		return nil, fmt.Errorf("root pixels: %w", err)
	}
	return xImageToRGBA(b.setup, reply, rect.Dx(), rect.Dy(), "root window")
}

// RunningOnWayland reports whether the session looks like Wayland, where X11
// grabs only see XWayland clients.
func RunningOnWayland() bool {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	if sessionType == "wayland" {
		return true
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return true
	}
	return false
}
