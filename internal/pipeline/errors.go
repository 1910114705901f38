package pipeline

import "fmt"

// ErrorKind names one of spec.md §7's error taxonomy entries. Kinds, not
// Go type names, are what the orchestrator and CLI switch on.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindToolMissing        ErrorKind = "tool_missing"
	KindToolExit           ErrorKind = "tool_exit"
	KindToolTimeout        ErrorKind = "tool_timeout"
	KindInsufficientData   ErrorKind = "insufficient_data"
	KindDriftUncorrectable ErrorKind = "drift_uncorrectable"
	KindFatalInvariant     ErrorKind = "fatal_invariant"
	KindCancelled          ErrorKind = "cancelled"
)

// Step names one of the fixed pipeline stages (spec.md §4.12).
type Step string

const (
	StepAnalyze     Step = "Analyze"
	StepExtract     Step = "Extract"
	StepCorrect     Step = "Correct"
	StepSubtitles   Step = "Subtitles"
	StepChapters    Step = "Chapters"
	StepAttachments Step = "Attachments"
	StepBuildPlan   Step = "BuildPlan"
	StepMux         Step = "Mux"
)

// JobError is the orchestrator's uniform error envelope: every step error
// is annotated with which step and operation produced it (spec.md §7
// "Propagation policy"). The final failure line the CLI prints
// ("[FATAL] Job '<name>' -> <Step> -> <operation>: <detail>") is rendered
// directly from these fields.
type JobError struct {
	Kind   ErrorKind
	Step   Step
	Op     string
	Detail string
	Err    error // wrapped cause, if any (e.g. a *runner.ToolExitError).
}

func (e *JobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s -> %s: %s: %v", e.Step, e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s -> %s: %s", e.Step, e.Op, e.Detail)
}

func (e *JobError) Unwrap() error { return e.Err }

// invalidInput builds an InvalidInput JobError for a missing or malformed
// prerequisite (spec.md §4.12: "missing slot -> InvalidInput").
func invalidInput(step Step, op, detail string) error {
	return &JobError{Kind: KindInvalidInput, Step: step, Op: op, Detail: detail}
}

// wrapTool classifies an internal/runner error into the matching JobError
// kind, or returns a generic ToolExit wrapper for anything else.
func wrapTool(step Step, op string, err error) error {
	if err == nil {
		return nil
	}
	kind := classifyToolErr(err)
	return &JobError{Kind: kind, Step: step, Op: op, Detail: err.Error(), Err: err}
}
