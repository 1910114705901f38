package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// audit is the JSON-serializable snapshot of whichever JobState slots had
// been published at dump time (spec.md §6 "state.json (optional audit) —
// dump of published JobState slots for diagnostics; write-once per slot").
// A step whose slot was never reached (job failed or was cancelled before
// it) is simply absent from the map rather than present with a zero value,
// so the dump distinguishes "not run" from "ran with nothing to do" the
// same way JobState itself does.
type audit map[string]interface{}

// snapshot builds the best-effort audit view of s. Never returns an error:
// this is diagnostic output, not a load-bearing artifact.
func (s *JobState) snapshot() audit {
	out := audit{}
	if v, ok := s.analyze.get(); ok {
		out["analyze"] = v
	}
	if v, ok := s.extract.get(); ok {
		out["extract"] = v
	}
	if v, ok := s.correct.get(); ok {
		out["correct"] = v
	}
	if v, ok := s.subtitles.get(); ok {
		out["subtitles"] = v
	}
	if v, ok := s.chapters.get(); ok {
		out["chapters"] = v
	}
	if v, ok := s.attachments.get(); ok {
		out["attachments"] = v
	}
	if v, ok := s.plan.get(); ok {
		out["plan"] = v
	}
	if v, ok := s.mux.get(); ok {
		out["mux"] = v
	}
	return out
}

// WriteAudit best-effort-dumps s's published slots as state.json under
// workDir. Failures are logged by the caller, never fatal to the job.
func WriteAudit(workDir string, s *JobState) error {
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, "state.json"), data, 0o644)
}
