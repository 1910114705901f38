package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/backmassage/syncmux/internal/mux"
	"github.com/backmassage/syncmux/internal/runner"
)

// AttachmentResult is the Attachments step's published output.
type AttachmentResult struct {
	Files []mux.Attachment
}

// RunAttachments extracts every attachment from the job's configured
// attachment source (fonts, images) into standalone files (spec.md
// §4.11's "--attach-file per attachment"). An unset attachment source is a
// no-op, publishing an empty record.
func RunAttachments(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Attachments")

	if pc.Job.Attachments.Source == "" {
		if !state.attachments.publish(AttachmentResult{}) {
			return fatalInvariant(StepAttachments, "attachments")
		}
		return nil
	}

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepAttachments, "read-analyze", "Analyze slot not published")
	}

	src, ok := pc.Job.SourceByKey(pc.Job.Attachments.Source)
	if !ok {
		return invalidInput(StepAttachments, "lookup-attachment-source", fmt.Sprintf("unknown source %q", pc.Job.Attachments.Source))
	}
	probeResult, ok := analyze.Probes[src.Key]
	if !ok {
		return invalidInput(StepAttachments, "lookup-probe", fmt.Sprintf("no probe result for source %q", src.Key))
	}
	if len(probeResult.Attachments) == 0 {
		if !state.attachments.publish(AttachmentResult{}) {
			return fatalInvariant(StepAttachments, "attachments")
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return wrapTool(StepAttachments, "cancel-check", err)
	}

	var args []string
	var files []mux.Attachment
	for _, a := range probeResult.Attachments {
		outPath := filepath.Join(pc.WorkDir, fmt.Sprintf("attach_%d_%s", a.ID, a.Name))
		args = append(args, fmt.Sprintf("%d:%s", a.ID, outPath))
		files = append(files, mux.Attachment{Path: outPath})
	}

	full := append([]string{src.Path, "attachments"}, args...)
	if _, err := pc.Run.Run(ctx, "mkvextract", full, runner.Options{ErrorTailLines: pc.ErrorTailLines}); err != nil {
		return wrapTool(StepAttachments, "mkvextract-attachments", err)
	}

	if !state.attachments.publish(AttachmentResult{Files: files}) {
		return fatalInvariant(StepAttachments, "attachments")
	}
	return nil
}
