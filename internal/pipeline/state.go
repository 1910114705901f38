// Package pipeline is the orchestrator that sequences one job's steps
// (spec.md §4.12): Analyze, Extract, Correct, Subtitles, Chapters,
// Attachments, BuildPlan, Mux, each writing into a shared, write-once
// JobState so a later step can only ever read an already-published result.
package pipeline

import (
	"fmt"
	"sync"
)

// slot is a single write-once publication point in JobState. Multi-reader
// after the first (and only) write; a second Publish is a programming
// error (spec.md §4.12: "attempted overwrite is FatalInvariant").
type slot[T any] struct {
	mu  sync.Mutex
	set bool
	val T
}

// publish writes v exactly once. A second call returns false; the caller
// turns that into a FatalInvariant JobError.
func (s *slot[T]) publish(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.val = v
	s.set = true
	return true
}

func (s *slot[T]) get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val, s.set
}

// JobState holds every step's published output. Each step reads only from
// already-published slots and writes exactly one slot of its own (spec.md
// §4.12). Fields are unexported; steps publish and read through each
// slot's publish and get methods, and a slot can never be mutated after
// publication.
type JobState struct {
	analyze     slot[AnalyzeResult]
	extract     slot[ExtractResult]
	correct     slot[CorrectResult]
	subtitles   slot[SubtitleResult]
	chapters    slot[ChapterResult]
	attachments slot[AttachmentResult]
	plan        slot[PlanResult]
	mux         slot[MuxResult]
}

// NewJobState returns an empty JobState ready for one job's steps.
func NewJobState() *JobState { return &JobState{} }

// fatalInvariant builds the JobError a double-publish produces.
func fatalInvariant(step Step, slotName string) error {
	return &JobError{Kind: KindFatalInvariant, Step: step, Op: "publish", Detail: fmt.Sprintf("%s slot already published", slotName)}
}
