package config

import (
	"errors"
	"fmt"
)

var (
	errNoJobSource    = errors.New("need exactly one of --jobs-dir or --job-file")
	errBothJobSources = errors.New("--jobs-dir and --job-file are mutually exclusive")
)

func errInvalidColorMode(m ColorMode) error {
	return fmt.Errorf("invalid color mode %q (use auto|always|never)", m)
}
