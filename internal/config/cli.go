package config

// ColorMode controls ANSI color output, read by internal/term.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// CLI holds operator-facing settings for the batch CLI wrapper (spec.md §6
// exit-code contract): where job specs come from, where logs/metrics go,
// and display preferences. This is distinct from Snapshot, which travels
// inside each JobSpec and is produced by the external front-end.
type CLI struct {
	JobsDir     string // Directory of *.yaml JobSpec files (batch mode).
	JobFile     string // Single JobSpec file (single-job mode).
	WorkDir     string // Per-job working directories are created under here.
	LogFile     string
	Verbose     bool
	ColorMode   ColorMode
	MetricsAddr string // Empty disables the /metrics HTTP surface.
}

// DefaultCLI returns the CLI defaults.
func DefaultCLI() CLI {
	return CLI{
		WorkDir:   "./.syncmux-work",
		ColorMode: ColorAuto,
	}
}

// Validate checks that ColorMode is recognized and that exactly one of
// JobsDir/JobFile is set.
func (c *CLI) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errInvalidColorMode(c.ColorMode)
	}
	if c.JobsDir == "" && c.JobFile == "" {
		return errNoJobSource
	}
	if c.JobsDir != "" && c.JobFile != "" {
		return errBothJobSources
	}
	return nil
}
