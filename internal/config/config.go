package config

import (
	"fmt"
	"strings"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Copy    bool
}

// Selection holds settings for the drag outline.
type Selection struct {
	LineWidth int
}

// Config holds the application configuration.
type Config struct {
	Backend   string
	Notify    Notify
	Selection Selection
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Backend: "x11",
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Backend != "" {
		fmt.Fprintf(&sb, "backend = %s\n", c.Backend)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[selection]\n")
	fmt.Fprintf(&sb, "line_width = %d\n", c.Selection.LineWidth)

	return sb.String()
}
