package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJobState_Snapshot_OnlyPublishedSlots(t *testing.T) {
	state := NewJobState()
	state.analyze.publish(AnalyzeResult{})
	state.mux.publish(MuxResult{OutputPath: "/out.mkv"})

	snap := state.snapshot()
	if _, ok := snap["analyze"]; !ok {
		t.Error("snapshot missing published analyze slot")
	}
	if _, ok := snap["mux"]; !ok {
		t.Error("snapshot missing published mux slot")
	}
	if _, ok := snap["extract"]; ok {
		t.Error("snapshot should omit unpublished extract slot")
	}
	if len(snap) != 2 {
		t.Errorf("len(snapshot) = %d, want 2", len(snap))
	}
}

func TestWriteAudit(t *testing.T) {
	dir := t.TempDir()
	state := NewJobState()
	state.analyze.publish(AnalyzeResult{})

	if err := WriteAudit(dir, state); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}

	path := filepath.Join(dir, "state.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state.json not found at %s: %v", path, err)
	}
}
