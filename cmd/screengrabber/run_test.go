package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"

	"github.com/example/screengrabber/internal/config"
	"github.com/example/screengrabber/internal/instance"
)

type fakeBus struct {
	reply   dbus.RequestNameReply
	nameErr error
	emitted []string
	closed  bool
}

func (b *fakeBus) RequestName(string, dbus.RequestNameFlags) (dbus.RequestNameReply, error) {
	return b.reply, b.nameErr
}

func (b *fakeBus) Emit(_ dbus.ObjectPath, name string, _ ...interface{}) error {
	b.emitted = append(b.emitted, name)
	return nil
}

func (b *fakeBus) AddMatchSignal(...dbus.MatchOption) error { return nil }
func (b *fakeBus) Signal(chan<- *dbus.Signal)               {}
func (b *fakeBus) RemoveSignal(chan<- *dbus.Signal)         {}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func testRoot(t *testing.T, args ...string) *root {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)
	r := newRoot()
	if err := r.fs.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return r
}

func swapOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr := stdout, stderr
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return &out, &errOut
}

func swapBus(t *testing.T, bus sessionBus, err error) {
	t.Helper()
	prev := connectBus
	connectBus = func() (sessionBus, error) { return bus, err }
	t.Cleanup(func() { connectBus = prev })
}

func swapPrimary(t *testing.T, fn func(*root, *instance.Coordinator) error) {
	t.Helper()
	prev := startPrimary
	startPrimary = fn
	t.Cleanup(func() { startPrimary = prev })
}

func TestSecondaryRequestsCaptureAndExits(t *testing.T) {
	swapOutput(t)
	bus := &fakeBus{reply: dbus.RequestNameReplyExists}
	swapBus(t, bus, nil)
	swapPrimary(t, func(*root, *instance.Coordinator) error {
		t.Fatalf("secondary must not start a grabber")
		return nil
	})

	if err := (&grabCmd{root: testRoot(t)}).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(bus.emitted) != 1 || bus.emitted[0] != instance.SignalName {
		t.Fatalf("expected exactly one %s, got %v", instance.SignalName, bus.emitted)
	}
	if !bus.closed {
		t.Fatalf("bus connection left open")
	}
}

func TestPrimaryOwnerStartsGrabber(t *testing.T) {
	swapOutput(t)
	bus := &fakeBus{reply: dbus.RequestNameReplyPrimaryOwner}
	swapBus(t, bus, nil)
	started := 0
	swapPrimary(t, func(*root, *instance.Coordinator) error {
		started++
		return nil
	})

	if err := (&grabCmd{root: testRoot(t)}).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if started != 1 {
		t.Fatalf("expected the grabber to start once, got %d", started)
	}
	if len(bus.emitted) != 0 {
		t.Fatalf("primary must not emit, got %v", bus.emitted)
	}
}

func TestBusErrorsExitCleanly(t *testing.T) {
	tests := []struct {
		name string
		bus  *fakeBus
		err  error
	}{
		{name: "connect", err: errors.New("no session bus")},
		{name: "request name", bus: &fakeBus{nameErr: errors.New("access denied")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, errOut := swapOutput(t)
			var bus sessionBus
			if tc.bus != nil {
				bus = tc.bus
			}
			swapBus(t, bus, tc.err)
			swapPrimary(t, func(*root, *instance.Coordinator) error {
				t.Fatalf("grabber started after a bus error")
				return nil
			})

			if err := (&grabCmd{root: testRoot(t)}).Run(); err != nil {
				t.Fatalf("bus errors must not fail the process: %v", err)
			}
			if !strings.HasPrefix(errOut.String(), "[E] DBus: ") {
				t.Fatalf("expected a DBus diagnostic, got %q", errOut.String())
			}
		})
	}
}

func TestRootUsage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)
	for _, args := range [][]string{{"-h"}, {"help"}} {
		err := newRoot().Run(args)
		var uerr *UsageError
		if !errors.As(err, &uerr) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
		help := uerr.Error()
		if !strings.Contains(help, "Usage: screengrabber") || !strings.Contains(help, "-notify-copy") {
			t.Fatalf("%v: unexpected help %q", args, help)
		}
	}
}

func TestUnrecognisedArgumentsStillRequestGrab(t *testing.T) {
	for _, args := range [][]string{{"now"}, {"--display=:1"}, {"-notify-copy", "--display=:1", "now"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, errOut := swapOutput(t)
			bus := &fakeBus{reply: dbus.RequestNameReplyExists}
			swapBus(t, bus, nil)
			swapPrimary(t, func(*root, *instance.Coordinator) error {
				t.Fatalf("secondary must not start a grabber")
				return nil
			})
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			chdirTemp(t)

			if err := newRoot().Run(args); err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(bus.emitted) != 1 || bus.emitted[0] != instance.SignalName {
				t.Fatalf("expected one %s, got %v", instance.SignalName, bus.emitted)
			}
			if !strings.Contains(errOut.String(), "ignoring arguments") {
				t.Fatalf("expected a warning, got %q", errOut.String())
			}
		})
	}
}

func TestNoArgumentsRequestGrab(t *testing.T) {
	swapOutput(t)
	bus := &fakeBus{reply: dbus.RequestNameReplyPrimaryOwner}
	swapBus(t, bus, nil)
	var got *root
	swapPrimary(t, func(r *root, _ *instance.Coordinator) error {
		got = r
		return nil
	})
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)

	r := newRoot()
	if err := r.Run(nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != r || got.notifier == nil {
		t.Fatalf("grabber not started with the root notifier")
	}
}

func TestUnknownBackendRejected(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)
	err := newRoot().Run([]string{"-backend", "pipewire", "version"})
	if err == nil || !strings.Contains(err.Error(), "pipewire") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _ := swapOutput(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)
	if err := newRoot().Run([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "screengrabber version dev\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestConfigPrintReflectsFlags(t *testing.T) {
	out, _ := swapOutput(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	chdirTemp(t)
	if err := newRoot().Run([]string{"-backend", "shm", "-notify-copy", "config", "print"}); err != nil {
		t.Fatalf("config print: %v", err)
	}
	cfg, err := config.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("printed config does not parse: %v\n%s", err, out.String())
	}
	if cfg.Backend != "shm" || !cfg.Notify.Copy || cfg.Notify.Capture {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigSaveWritesDefaultPath(t *testing.T) {
	_, errOut := swapOutput(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	chdirTemp(t)
	r := newRoot()
	if err := r.Run([]string{"-notify-capture", "config", "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	if !strings.Contains(errOut.String(), config.DefaultPath()) {
		t.Fatalf("expected save location in %q", errOut.String())
	}
	cfg, err := config.NewLoader("release", "").Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !cfg.Notify.Capture {
		t.Fatalf("saved config lost notify.capture: %+v", cfg)
	}
}

// chdirTemp changes into a fresh temp dir and restores the working
// directory on cleanup (equivalent of t.Chdir(t.TempDir()) on Go < 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
