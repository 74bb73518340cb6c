// Package instance keeps one grabber per desktop session by owning a well-known
// name on the session bus.
package instance

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// D-Bus identity shared by every grabber process.
const (
	BusName    = "org.gnome.ScreenshotGrabber"
	ObjectPath = dbus.ObjectPath("/org/gnome/ScreenshotGrabber")
	Interface  = "org.gnome.ScreenshotGrabber"
	Member     = "take_screenshot"
	SignalName = Interface + "." + Member
)

// Role is the outcome of claiming the bus name.
type Role int

const (
	// Secondary processes ask the owner for a capture and exit.
	Secondary Role = iota
	// Primary processes own the bus name and perform captures.
	Primary
)

func (r Role) String() string {
	if r == Primary {
		return "primary"
	}
	return "secondary"
}

// Bus is the subset of *dbus.Conn used by the coordinator.
type Bus interface {
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Coordinator decides the role of this process and carries out its side of
// the protocol.
type Coordinator struct {
	bus Bus
}

// New returns a coordinator on bus.
func New(bus Bus) *Coordinator {
	return &Coordinator{bus: bus}
}

// Claim requests the well-known name without queueing. Only a primary-owner
// reply makes this process Primary; the bus guarantees at most one such
// process per session.
func (c *Coordinator) Claim() (Role, error) {
	reply, err := c.bus.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return Secondary, fmt.Errorf("request name %s: %w", BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return Secondary, nil
	}
	return Primary, nil
}

// RequestCapture broadcasts the capture signal. No reply is expected.
func (c *Coordinator) RequestCapture() error {
	if err := c.bus.Emit(ObjectPath, SignalName); err != nil {
		return fmt.Errorf("emit %s: %w", SignalName, err)
	}
	return nil
}

// Serve subscribes to capture signals, runs capture once straight away and then
// once per received signal. Each run completes before the next signal is read.
// Serve returns when ctx is done or the bus stops delivering signals.
func (c *Coordinator) Serve(ctx context.Context, capture func(context.Context)) error {
	if err := c.bus.AddMatchSignal(
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchObjectPath(ObjectPath),
	); err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	signals := make(chan *dbus.Signal, 8)
	c.bus.Signal(signals)
	defer c.bus.RemoveSignal(signals)

	capture(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if !isCaptureRequest(sig) {
				continue
			}
			capture(ctx)
		}
	}
}

func isCaptureRequest(sig *dbus.Signal) bool {
	return sig != nil && sig.Path == ObjectPath && sig.Name == SignalName
}
