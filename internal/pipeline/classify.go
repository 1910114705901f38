package pipeline

import (
	"context"
	"errors"

	"github.com/backmassage/syncmux/internal/delaysel"
	"github.com/backmassage/syncmux/internal/runner"
)

// classifyToolErr maps an internal/runner error (or context cancellation)
// to its spec.md §7 kind.
func classifyToolErr(err error) ErrorKind {
	var spawnErr *runner.ToolSpawnError
	var timeoutErr *runner.ToolTimeoutError
	var cancelErr *runner.Cancelled
	var exitErr *runner.ToolExitError

	switch {
	case errors.As(err, &spawnErr):
		return KindToolMissing
	case errors.As(err, &timeoutErr):
		return KindToolTimeout
	case errors.As(err, &cancelErr):
		return KindCancelled
	case errors.As(err, &exitErr):
		return KindToolExit
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, delaysel.ErrInsufficientData):
		return KindInsufficientData
	default:
		return KindToolExit
	}
}
