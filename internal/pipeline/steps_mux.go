package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/backmassage/syncmux/internal/mux"
	"github.com/backmassage/syncmux/internal/runner"
)

// MuxResult is the Mux step's published output.
type MuxResult struct {
	OutputPath  string
	OptionsPath string
	Warnings    bool
}

// RunMux renders the merge plan into an mkvmerge options file and invokes
// mkvmerge against it (spec.md §4.11/§6). Exit code 1 ("warnings") is
// success with a logged warning; 2+ is a failure.
func RunMux(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Mux")
	cfg := pc.Job.Config

	plan, ok := state.plan.get()
	if !ok {
		return invalidInput(StepMux, "read-plan", "BuildPlan slot not published")
	}
	chapterRes, ok := state.chapters.get()
	if !ok {
		return invalidInput(StepMux, "read-chapters", "Chapters slot not published")
	}
	attachRes, ok := state.attachments.get()
	if !ok {
		return invalidInput(StepMux, "read-attachments", "Attachments slot not published")
	}

	args := mux.BuildArgs(pc.Job.OutputPath, plan.Plan, attachRes.Files, chapterRes.OutputPath, mux.DialogNormConfig{
		RemoveDialogNormGain: cfg.RemoveDialogNormGain,
	})

	optsBytes, err := mux.WriteOptionsFile(args)
	if err != nil {
		return invalidInput(StepMux, "build-options-file", err.Error())
	}

	optsPath := filepath.Join(pc.WorkDir, "opts.json")
	if err := os.WriteFile(optsPath, optsBytes, 0o644); err != nil {
		return invalidInput(StepMux, "write-options-file", err.Error())
	}

	if err := ctx.Err(); err != nil {
		return wrapTool(StepMux, "cancel-check", err)
	}

	_, runErr := pc.Run.Run(ctx, "mkvmerge", []string{"@" + optsPath}, runner.Options{ErrorTailLines: pc.ErrorTailLines})

	warnings := false
	if runErr != nil {
		var exitErr *runner.ToolExitError
		if errors.As(runErr, &exitErr) && exitErr.Code == 1 {
			warnings = true
			pc.Log.Warn("mkvmerge completed with warnings")
		} else {
			return wrapTool(StepMux, "mkvmerge", runErr)
		}
	}

	pc.Log.Success("wrote %s", pc.Job.OutputPath)

	if !state.mux.publish(MuxResult{OutputPath: pc.Job.OutputPath, OptionsPath: optsPath, Warnings: warnings}) {
		return fatalInvariant(StepMux, "mux")
	}
	return nil
}
