// Package display provides user-facing output: the startup banner and
// byte/duration formatting helpers shared by the pipeline's summary logs.
package display

import (
	"fmt"
	"os"

	"github.com/backmassage/syncmux/internal/term"
)

// PrintBanner prints the syncmux ASCII art logo to stdout, colorized in
// magenta when [term] has colors enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` ___ _   _ _ __   ___ _ __ ___  _   ___  __
/ __| | | | '_ \ / __| '_ ` + "`" + ` _ \| | | \ \/ /
\__ \ |_| | | | | (__| | | | | | |_| |>  <
|___/\__, |_| |_|\___|_| |_| |_|\__,_/_/\_\
     |___/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
