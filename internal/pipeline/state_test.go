package pipeline

import "testing"

func TestSlot_PublishOnceThenRejects(t *testing.T) {
	var s slot[int]

	if ok := s.publish(1); !ok {
		t.Fatal("first publish should succeed")
	}
	if ok := s.publish(2); ok {
		t.Fatal("second publish should fail")
	}

	v, ok := s.get()
	if !ok || v != 1 {
		t.Fatalf("get() = (%d, %v), want (1, true)", v, ok)
	}
}

func TestSlot_GetBeforePublish(t *testing.T) {
	var s slot[string]
	v, ok := s.get()
	if ok {
		t.Fatalf("get() on unpublished slot returned ok=true, v=%q", v)
	}
}

func TestJobState_SlotsIndependent(t *testing.T) {
	state := NewJobState()

	if !state.analyze.publish(AnalyzeResult{}) {
		t.Fatal("analyze publish should succeed")
	}
	if !state.extract.publish(ExtractResult{}) {
		t.Fatal("extract publish should succeed")
	}
	if state.analyze.publish(AnalyzeResult{}) {
		t.Fatal("re-publishing analyze should fail")
	}

	if _, ok := state.correct.get(); ok {
		t.Fatal("correct slot should not be published yet")
	}
}

func TestFatalInvariant(t *testing.T) {
	err := fatalInvariant(StepAnalyze, "analyze")
	jerr, ok := err.(*JobError)
	if !ok {
		t.Fatalf("got %T, want *JobError", err)
	}
	if jerr.Kind != KindFatalInvariant {
		t.Errorf("Kind = %s, want %s", jerr.Kind, KindFatalInvariant)
	}
	if jerr.Step != StepAnalyze {
		t.Errorf("Step = %s, want %s", jerr.Step, StepAnalyze)
	}
}
