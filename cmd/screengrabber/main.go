package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/screengrabber/internal/capture"
	"github.com/example/screengrabber/internal/config"
	"github.com/example/screengrabber/internal/notify"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	notifier      *notify.Notifier
	config        *config.Config
	captureAlerts bool
	copyAlerts    bool
	backend       string
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:      flag.NewFlagSet("screengrabber", flag.ContinueOnError),
		program: "screengrabber",
		config:  cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a region")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.StringVar(&r.backend, "backend", cfg.Backend, "capture backend: x11 or shm")
	// Help is rendered by main from the UsageError.
	r.fs.SetOutput(io.Discard)
	r.fs.Usage = func() {}
	return r
}

func (r *root) Run(args []string) error {
	// Launchers and hotkey daemons may pass arguments of their own. Anything
	// not understood still requests a grab so the single instance is honoured.
	parsed := true
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		fmt.Fprintf(stderr, "warning: ignoring arguments: %v\n", err)
		parsed = false
	}
	switch strings.ToLower(r.backend) {
	case capture.BackendX11, capture.BackendSHM:
	default:
		return fmt.Errorf("unknown backend %q", r.backend)
	}
	r.notifier = notify.New(r.captureAlerts, r.copyAlerts)

	var (
		cmd runnable
		err error
	)
	switch {
	case !parsed || r.fs.NArg() == 0:
		cmd = &grabCmd{root: r}
	default:
		subArgs := r.fs.Args()[1:]
		switch r.fs.Arg(0) {
		case "config":
			cmd, err = parseConfigCmd(subArgs, r)
		case "version":
			cmd = &versionCmd{r: r}
		case "help":
			err = &UsageError{of: r}
		default:
			fmt.Fprintf(stderr, "warning: ignoring arguments: %s\n", strings.Join(r.fs.Args(), " "))
			cmd = &grabCmd{root: r}
		}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
