package mux

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/planner"
)

func TestBuildArgs_TokenOrderPerTrack(t *testing.T) {
	plan := planner.MergePlan{Items: []planner.PlanItem{
		{
			Track:    jobspec.TrackID{Type: jobspec.TrackAudio},
			Language: "eng",
			Name:     "Commentary",
			CodecID:  "A_EAC3",
			FilePath: "/tmp/audio0.mka",
			DelayMs:  -40,
			Default:  true,
			Forced:   false,
		},
	}}
	args := BuildArgs("/tmp/out.mkv", plan, nil, "", DialogNormConfig{RemoveDialogNormGain: true})

	joined := strings.Join(args, "|")
	wantFragments := []string{
		"--language|0:eng",
		"--track-name|0:Commentary",
		"--sync|0:-40",
		"--default-track-flag|0:yes",
		"--compression|0:none",
		"--remove-dialog-normalization-gain|0",
		"(|/tmp/audio0.mka|)",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(joined, frag) {
			t.Errorf("args missing fragment %q; got %v", frag, args)
		}
	}
}

func TestBuildArgs_SyncAlwaysSigned(t *testing.T) {
	plan := planner.MergePlan{Items: []planner.PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackVideo}, DelayMs: 0, FilePath: "/tmp/v.mkv"},
	}}
	args := BuildArgs("/tmp/out.mkv", plan, nil, "", DialogNormConfig{})
	joined := strings.Join(args, "|")
	if !strings.Contains(joined, "--sync|0:+0") {
		t.Errorf("want explicit +0 sync token; got %v", args)
	}
}

func TestBuildArgs_NoDialogNormForNonAC3(t *testing.T) {
	plan := planner.MergePlan{Items: []planner.PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackAudio}, CodecID: "A_AAC", FilePath: "/tmp/a.mka"},
	}}
	args := BuildArgs("/tmp/out.mkv", plan, nil, "", DialogNormConfig{RemoveDialogNormGain: true})
	for _, a := range args {
		if a == "--remove-dialog-normalization-gain" {
			t.Fatal("should not emit dialog-norm removal for non-AC3 codec")
		}
	}
}

func TestBuildArgs_TrackOrderAndAttachments(t *testing.T) {
	plan := planner.MergePlan{Items: []planner.PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackVideo}, FilePath: "/tmp/v.mkv"},
		{Track: jobspec.TrackID{Type: jobspec.TrackAudio}, FilePath: "/tmp/a.mka"},
	}}
	args := BuildArgs("/tmp/out.mkv", plan, []Attachment{{Path: "/tmp/font.ttf"}}, "/tmp/ch.xml", DialogNormConfig{})
	joined := strings.Join(args, "|")
	if !strings.Contains(joined, "--track-order|0:0,1:0") {
		t.Errorf("want track-order 0:0,1:0; got %v", args)
	}
	if !strings.Contains(joined, "--attach-file|/tmp/font.ttf") {
		t.Errorf("want attach-file token; got %v", args)
	}
	if !strings.Contains(joined, "--chapters|/tmp/ch.xml") {
		t.Errorf("want chapters token; got %v", args)
	}
}

func TestWriteOptionsFile_SingleLineJSON(t *testing.T) {
	raw, err := WriteOptionsFile([]string{"--output", "/tmp/out.mkv"})
	if err != nil {
		t.Fatalf("WriteOptionsFile: %v", err)
	}
	if strings.Contains(string(raw), "\n") {
		t.Error("options file must be single-line JSON")
	}
	var roundTrip []string
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("round-trip unmarshal: %v", err)
	}
	if len(roundTrip) != 2 {
		t.Fatalf("len(roundTrip) = %d, want 2", len(roundTrip))
	}
}
