package chapters

import (
	"strings"
	"testing"

	"github.com/backmassage/syncmux/internal/config"
)

func ptr(v int64) *int64 { return &v }

func TestShift_ClampsToZero(t *testing.T) {
	chapters := []Chapter{{StartNs: 1_000_000, EndNs: ptr(2_000_000)}}
	out := Shift(chapters, -5) // -5ms = -5,000,000ns
	if out[0].StartNs != 0 {
		t.Errorf("StartNs = %d, want 0 (clamped)", out[0].StartNs)
	}
	if *out[0].EndNs != 0 {
		t.Errorf("EndNs = %d, want 0 (clamped)", *out[0].EndNs)
	}
}

func TestNormalize_DedupesCloseStarts(t *testing.T) {
	chapters := []Chapter{
		{StartNs: 0},
		{StartNs: 50_000_000}, // within 100ms of the first, dropped
		{StartNs: 5_000_000_000},
	}
	out := Normalize(chapters)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestNormalize_ClampsEndBeforeNext(t *testing.T) {
	chapters := []Chapter{
		{StartNs: 0, EndNs: ptr(10_000_000_000)},
		{StartNs: 5_000_000_000},
	}
	out := Normalize(chapters)
	want := int64(5_000_000_000 - minEndGapNs)
	if *out[0].EndNs != want {
		t.Errorf("EndNs = %d, want %d", *out[0].EndNs, want)
	}
}

func TestNormalize_LastChapterDefaultEnd(t *testing.T) {
	chapters := []Chapter{{StartNs: 1_000_000_000}}
	out := Normalize(chapters)
	if *out[0].EndNs != 1_000_000_000+defaultLastEndNs {
		t.Errorf("EndNs = %d, want start+1s", *out[0].EndNs)
	}
}

func TestSnap_PreviousMode(t *testing.T) {
	keyframes := []int64{0, 2_000_000_000, 4_000_000_000}
	chapters := []Chapter{{StartNs: 2_100_000_000}}
	out := Snap(chapters, keyframes, config.SnapPrevious, 250)
	if out[0].StartNs != 2_000_000_000 {
		t.Errorf("StartNs = %d, want 2_000_000_000 (previous keyframe)", out[0].StartNs)
	}
	if out[0].TooFar() {
		t.Error("TooFar() = true, want false")
	}
}

func TestSnap_TooFarWhenNoKeyframeInRange(t *testing.T) {
	keyframes := []int64{0, 10_000_000_000}
	chapters := []Chapter{{StartNs: 5_000_000_000}}
	out := Snap(chapters, keyframes, config.SnapNearest, 250)
	if out[0].StartNs != 5_000_000_000 {
		t.Errorf("StartNs changed, want left unchanged when no keyframe in range")
	}
	if !out[0].TooFar() {
		t.Error("TooFar() = false, want true")
	}
}

func TestRenameSequential(t *testing.T) {
	chapters := []Chapter{
		{StartNs: 0, Names: []NameEntry{{Lang: "eng", Text: "Intro"}}},
		{StartNs: 1, Names: []NameEntry{{Lang: "eng", Text: "Scene 2"}}},
	}
	out := RenameSequential(chapters)
	if out[0].Names[0].Text != "Chapter 01" || out[0].Names[0].Lang != "" {
		t.Errorf("Names[0] = %+v, want Chapter 01 with no lang", out[0].Names[0])
	}
	if out[1].Names[0].Text != "Chapter 02" {
		t.Errorf("Names[1].Text = %q, want Chapter 02", out[1].Names[0].Text)
	}
}

func TestParseEmitRoundTrip(t *testing.T) {
	xmlDoc := `<?xml version="1.0"?>
<Chapters>
  <EditionEntry>
    <ChapterAtom>
      <ChapterUID>1</ChapterUID>
      <ChapterTimeStart>00:00:10.500000000</ChapterTimeStart>
      <ChapterTimeEnd>00:01:00.000000000</ChapterTimeEnd>
      <ChapterDisplay>
        <ChapterString>Intro</ChapterString>
        <ChapterLanguage>eng</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
  </EditionEntry>
</Chapters>`

	parsed, err := Parse(strings.NewReader(xmlDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("len(parsed) = %d, want 1", len(parsed))
	}
	if parsed[0].StartNs != 10_500_000_000 {
		t.Errorf("StartNs = %d, want 10_500_000_000", parsed[0].StartNs)
	}
	if *parsed[0].EndNs != 60_000_000_000 {
		t.Errorf("EndNs = %d, want 60_000_000_000", *parsed[0].EndNs)
	}

	var buf strings.Builder
	if err := Emit(&buf, parsed); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(buf.String(), "00:00:10.500000000") {
		t.Errorf("emitted xml missing expected timecode: %s", buf.String())
	}
}
