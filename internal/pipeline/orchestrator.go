package pipeline

import (
	"context"
	"errors"
	"time"
)

// Status is the final outcome of one job run (spec.md §6 exit-code
// contract feeds off this).
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result is what Orchestrator.Run returns: the job's final status, the
// error that caused it (if any), and the JobState as it stood at the
// point of completion or cancellation.
type Result struct {
	JobName string
	Status  Status
	Err     error
	State   *JobState
}

// stepFunc is the signature every pipeline step shares.
type stepFunc func(ctx context.Context, pc *Context, state *JobState) error

// orderedSteps is the fixed sequence spec.md §4.12 names. Correct always
// runs (it self-no-ops per source when correction is disabled or the
// diagnosis doesn't warrant it, publishing the explicit empty record spec.md
// §4.12 requires).
var orderedSteps = []struct {
	name Step
	run  stepFunc
}{
	{StepAnalyze, RunAnalyze},
	{StepExtract, RunExtract},
	{StepCorrect, RunCorrect},
	{StepSubtitles, RunSubtitles},
	{StepChapters, RunChapters},
	{StepAttachments, RunAttachments},
	{StepBuildPlan, RunBuildPlan},
	{StepMux, RunMux},
}

// Orchestrator runs one job's steps in the fixed order spec.md §4.12
// mandates, on whatever goroutine calls Run (spec.md §5: "the orchestrator
// runs one job on a dedicated worker thread" — callers are responsible for
// giving each job its own goroutine when running a batch).
type Orchestrator struct{}

// New returns an Orchestrator. It holds no state of its own; all per-job
// state lives in the Context and JobState passed to Run.
func New() *Orchestrator { return &Orchestrator{} }

// Run executes every step in order against a fresh JobState, stopping at
// the first error. Cancellation observed between steps (spec.md §5
// "suspension points... step boundaries") short-circuits with
// StatusCancelled and no further slot publications.
func (o *Orchestrator) Run(ctx context.Context, pc *Context) Result {
	state := NewJobState()

	for _, s := range orderedSteps {
		if err := ctx.Err(); err != nil {
			pc.Log.Warn("job %q cancelled before step %s", pc.Job.Name, s.name)
			pc.observeJobStatus(string(StatusCancelled))
			return Result{JobName: pc.Job.Name, Status: StatusCancelled, Err: &JobError{Kind: KindCancelled, Step: s.name, Op: "start", Detail: "cancelled before step start"}, State: state}
		}

		stepStart := timeNow()
		err := s.run(ctx, pc, state)
		if pc.Metrics != nil {
			pc.Metrics.ObserveStep(string(s.name), timeNow().Sub(stepStart))
		}

		if err != nil {
			status := StatusFailed
			var jerr *JobError
			if errors.As(err, &jerr) && jerr.Kind == KindCancelled {
				status = StatusCancelled
			}
			pc.Log.Fatal("Job '%s' -> %s -> %s: %s", pc.Job.Name, s.name, opOf(err), detailOf(err))
			pc.observeJobStatus(string(status))
			if werr := WriteAudit(pc.WorkDir, state); werr != nil {
				pc.Log.Warn("state.json audit dump failed: %s", werr)
			}
			return Result{JobName: pc.Job.Name, Status: status, Err: err, State: state}
		}

		if werr := WriteAudit(pc.WorkDir, state); werr != nil {
			pc.Log.Warn("state.json audit dump failed: %s", werr)
		}
	}

	pc.observeJobStatus(string(StatusSucceeded))
	return Result{JobName: pc.Job.Name, Status: StatusSucceeded, State: state}
}

// timeNow is a thin indirection so step-duration metrics have one call
// site; it is not itself a public API.
func timeNow() time.Time { return time.Now() }

func opOf(err error) string {
	var jerr *JobError
	if errors.As(err, &jerr) {
		return jerr.Op
	}
	return "unknown"
}

func detailOf(err error) string {
	var jerr *JobError
	if errors.As(err, &jerr) {
		return jerr.Detail
	}
	return err.Error()
}
