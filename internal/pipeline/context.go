package pipeline

import (
	"github.com/backmassage/syncmux/internal/correct"
	"github.com/backmassage/syncmux/internal/decode"
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/logging"
	"github.com/backmassage/syncmux/internal/metrics"
	"github.com/backmassage/syncmux/internal/runner"
)

// Context bundles everything a step reads besides already-published
// JobState slots: the job's own spec, its working directory, and the
// shared tool/logging/decode handles (spec.md §4.12 "reads only from
// Context and already-published JobState slots").
type Context struct {
	Job     jobspec.JobSpec
	WorkDir string // per-job subdirectory (spec.md §5 "no two jobs share a working directory").

	Log       *logging.Logger
	Run       *runner.Runner
	Decoder   *decode.Decoder
	Corrector *correct.Corrector
	Metrics   *metrics.Collector // nil disables metric recording.

	ToolTimeoutS   float64
	ErrorTailLines int
}

// observeJobStatus counts one finished job under status in
// Metrics.JobsTotal if metrics are enabled.
func (c *Context) observeJobStatus(status string) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.JobsTotal.WithLabelValues(status).Inc()
}
