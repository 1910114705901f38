package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/backmassage/syncmux/internal/delaysel"
	"github.com/backmassage/syncmux/internal/runner"
)

func TestClassifyToolErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"spawn", &runner.ToolSpawnError{Tool: "mkvmerge", Err: errors.New("not found")}, KindToolMissing},
		{"timeout", &runner.ToolTimeoutError{Tool: "ffmpeg"}, KindToolTimeout},
		{"cancelled-runner", &runner.Cancelled{Tool: "ffmpeg"}, KindCancelled},
		{"exit", &runner.ToolExitError{Tool: "mkvmerge", Code: 2}, KindToolExit},
		{"context-cancelled", context.Canceled, KindCancelled},
		{"insufficient-data", delaysel.ErrInsufficientData, KindInsufficientData},
		{"unknown", errors.New("something else"), KindToolExit},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifyToolErr(c.err); got != c.want {
				t.Errorf("classifyToolErr(%v) = %s, want %s", c.err, got, c.want)
			}
		})
	}
}

func TestClassifyToolErr_WrappedExit(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &runner.ToolExitError{Tool: "mkvmerge", Code: 1})
	if got := classifyToolErr(wrapped); got != KindToolExit {
		t.Errorf("classifyToolErr(wrapped) = %s, want %s", got, KindToolExit)
	}
}
