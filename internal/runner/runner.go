// Package runner is the pipeline's shared external-process runner. The mux
// step (mkvmerge), the extract and attachments steps (mkvextract), and the
// audio corrector (ffmpeg, rubberband) invoke their tools through its Run
// call, which streams output line-by-line to the logger, forwards
// step-boundary progress events, and captures a compact tail on failure.
// The container probe (mkvmerge -J), the audio decoder (ffmpeg PCM
// output), the chapter step (mkvextract chapters, ffprobe keyframes) and
// the dependency check spawn their processes directly with os/exec, so
// they get none of Run's timeout, progress or error-tail handling. Grounded on the
// teacher's internal/ffmpeg executor/retry split, generalized from a
// single ffmpeg-specific command to an arbitrary-tool runner.
package runner

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/backmassage/syncmux/internal/logging"
)

// ProgressFunc receives step-boundary progress events parsed from tool
// output ("Progress: N%" lines, spec.md §6).
type ProgressFunc func(percent int)

// Options configures a single invocation.
type Options struct {
	// Timeout is the per-call deadline; zero means no timeout.
	Timeout time.Duration
	// ErrorTailLines is how many trailing lines are kept for the error
	// tail and re-emitted on non-zero exit. Zero uses DefaultErrorTailLines.
	ErrorTailLines int
	// ProgressStepPct gates how often Progress percent changes are
	// forwarded to OnProgress (only on crossing a multiple of this step).
	// Zero uses DefaultProgressStepPct.
	ProgressStepPct int
	// OnProgress is called from the scanning goroutine whenever a
	// "Progress: N%" line crosses a configured step boundary.
	OnProgress ProgressFunc
	// Stdin, if set, is piped to the child process.
	Stdin io.Reader
}

const (
	DefaultErrorTailLines  = 20
	DefaultProgressStepPct = 20
)

// Runner executes external tools and writes their line-by-line output to
// a Logger. The zero value is not usable; construct with New.
type Runner struct {
	log *logging.Logger
}

// New returns a Runner that logs tool output through log.
func New(log *logging.Logger) *Runner {
	return &Runner{log: log}
}

// Result is the outcome of a completed (non-spawn-failed) invocation.
type Result struct {
	ExitCode int
	Tail     []string
}

// Run spawns tool with args, streams stdout/stderr to the logger (debug
// level), and returns once the process exits, the context is cancelled, or
// the timeout elapses. On non-zero exit the error is a *ToolExitError
// carrying the captured tail; on missing executable, *ToolSpawnError; on
// timeout, *ToolTimeoutError; on cancellation, *Cancelled.
//
// Blocking; safe to call from any goroutine — callers parallelize by
// calling Run concurrently for tools operating on disjoint files (spec.md
// §5).
func (r *Runner) Run(ctx context.Context, tool string, args []string, opts Options) (Result, error) {
	tailLines := opts.ErrorTailLines
	if tailLines <= 0 {
		tailLines = DefaultErrorTailLines
	}
	stepPct := opts.ProgressStepPct
	if stepPct <= 0 {
		stepPct = DefaultProgressStepPct
	}

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if opts.Timeout > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, opts.Timeout)
		defer cancelTimeout()
	}

	cmd := exec.CommandContext(runCtx, tool, args...)
	if opts.Stdin != nil {
		cmd.Stdin = opts.Stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, &ToolSpawnError{Tool: tool, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, &ToolSpawnError{Tool: tool, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return Result{}, &ToolSpawnError{Tool: tool, Err: err}
	}

	tail := newTailBuffer(tailLines)
	progress := newProgressTracker(stepPct, opts.OnProgress)

	var wg sync.WaitGroup
	wg.Add(2)
	go consumeStream(&wg, stdout, r.log, tail, progress)
	go consumeStream(&wg, stderr, r.log, tail, progress)
	wg.Wait()

	waitErr := cmd.Wait()

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{Tail: tail.Lines()}, &ToolTimeoutError{Tool: tool}
	}
	if ctx.Err() != nil {
		return Result{Tail: tail.Lines()}, &Cancelled{Tool: tool}
	}
	if waitErr != nil {
		code := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		lines := tail.Lines()
		if r.log != nil {
			for _, l := range lines {
				r.log.Error("%s", l)
			}
		}
		return Result{ExitCode: code, Tail: lines}, &ToolExitError{Tool: tool, Code: code, Tail: lines}
	}

	return Result{ExitCode: 0, Tail: tail.Lines()}, nil
}

func consumeStream(wg *sync.WaitGroup, r io.Reader, log *logging.Logger, tail *tailBuffer, progress *progressTracker) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		tail.Add(line)
		if pct, ok := parseProgressLine(line); ok {
			progress.Report(pct)
			continue
		}
		if log != nil {
			log.Debug(true, "%s", line)
		}
	}
}
