package main

import (
	"flag"
	"fmt"
	"strings"
)

type versionCmd struct{ r *root }

func (v *versionCmd) Program() string {
	return v.r.program + " version"
}

func (v *versionCmd) FlagSet() *flag.FlagSet {
	return nil
}

func (v *versionCmd) Run() error {
	fmt.Fprintf(stdout, "%s version %s\n", v.r.program, versionString())
	return nil
}

func versionString() string {
	var extras []string
	if commit != "" {
		extras = append(extras, commit)
	}
	if date != "" {
		extras = append(extras, date)
	}
	if len(extras) == 0 {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, strings.Join(extras, ", "))
}
