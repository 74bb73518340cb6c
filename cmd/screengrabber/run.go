package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/jezek/xgb"

	"github.com/example/screengrabber/internal/capture"
	"github.com/example/screengrabber/internal/clipboard"
	"github.com/example/screengrabber/internal/grabber"
	"github.com/example/screengrabber/internal/instance"
	"github.com/example/screengrabber/internal/selection"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// sessionBus is the session bus connection used to coordinate instances.
type sessionBus interface {
	instance.Bus
	Close() error
}

var connectBus = func() (sessionBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

var startPrimary = runPrimary

// grabCmd is the default command: become the primary grabber or hand the
// request to the one already running.
type grabCmd struct {
	root *root
}

func (g *grabCmd) Run() error {
	bus, err := connectBus()
	if err != nil {
		fmt.Fprintf(stderr, "[E] DBus: %v\n", err)
		return nil
	}
	defer bus.Close()

	coord := instance.New(bus)
	role, err := coord.Claim()
	if err != nil {
		fmt.Fprintf(stderr, "[E] DBus: %v\n", err)
		return nil
	}
	if role == instance.Secondary {
		if err := coord.RequestCapture(); err != nil {
			fmt.Fprintf(stderr, "[E] DBus: %v\n", err)
		}
		return nil
	}
	return startPrimary(g.root, coord)
}

func runPrimary(r *root, coord *instance.Coordinator) error {
	if capture.RunningOnWayland() {
		log.Printf("warning: Wayland session detected; only XWayland windows can be captured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("connect to X server: %w", err)
	}
	// Closing the connection wakes a selection blocked on the next event.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	sel, err := selection.NewSelector(conn, selection.Options{LineWidth: uint32(r.config.Selection.LineWidth)})
	if err != nil {
		return fmt.Errorf("prepare selection: %w", err)
	}
	svc, err := capture.New(r.backend, conn)
	if err != nil {
		return err
	}
	g := grabber.New(sel, svc, clipboard.WriteImage, r.notifier)
	return coord.Serve(ctx, g.Run)
}
