package planner

import (
	"testing"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/jobspec"
)

const (
	ref jobspec.SourceKey = "ref"
	sec jobspec.SourceKey = "sec"
)

func TestNormalize_AllPositive_NoShift(t *testing.T) {
	n := Normalize(map[jobspec.SourceKey]float64{sec: 120.4})
	if n.GlobalShiftMs != 0 {
		t.Errorf("GlobalShiftMs = %d, want 0", n.GlobalShiftMs)
	}
	if n.SourceDelaysMs[sec] != 120 {
		t.Errorf("SourceDelaysMs[sec] = %d, want 120", n.SourceDelaysMs[sec])
	}
}

func TestNormalize_NegativeDelay_ShiftsEverything(t *testing.T) {
	n := Normalize(map[jobspec.SourceKey]float64{sec: -300.0})
	if n.GlobalShiftMs != 300 {
		t.Errorf("GlobalShiftMs = %d, want 300", n.GlobalShiftMs)
	}
	if n.SourceDelaysMs[sec] != 0 {
		t.Errorf("SourceDelaysMs[sec] = %d, want 0", n.SourceDelaysMs[sec])
	}
}

func TestTrackDelay_ReferenceVideo_IgnoresContainerDelay(t *testing.T) {
	n := Normalized{GlobalShiftMs: 50}
	tr := TrackInput{
		Track:            jobspec.TrackID{Source: ref, Type: jobspec.TrackVideo},
		IsReference:      true,
		ContainerDelayMs: 999,
	}
	if got := TrackDelay(tr, n); got != 50 {
		t.Errorf("TrackDelay = %d, want 50 (container delay ignored for video)", got)
	}
}

func TestTrackDelay_ReferenceAudio_AddsContainerDelay(t *testing.T) {
	n := Normalized{GlobalShiftMs: 50}
	tr := TrackInput{
		Track:            jobspec.TrackID{Source: ref, Type: jobspec.TrackAudio},
		IsReference:      true,
		ContainerDelayMs: 10,
	}
	if got := TrackDelay(tr, n); got != 60 {
		t.Errorf("TrackDelay = %d, want 60", got)
	}
}

func TestTrackDelay_SteppingAdjusted_IsZero(t *testing.T) {
	tr := TrackInput{Track: jobspec.TrackID{Source: sec, Type: jobspec.TrackAudio}, SteppingAdjusted: true}
	if got := TrackDelay(tr, Normalized{GlobalShiftMs: 500}); got != 0 {
		t.Errorf("TrackDelay = %d, want 0", got)
	}
}

func TestOrder_GroupsByTypeThenSource(t *testing.T) {
	cfg := config.Default()
	inputs := []TrackInput{
		{Track: jobspec.TrackID{Source: sec, Type: jobspec.TrackAudio}},
		{Track: jobspec.TrackID{Source: ref, Type: jobspec.TrackVideo}},
		{Track: jobspec.TrackID{Source: ref, Type: jobspec.TrackAudio}},
	}
	ordered := Order(inputs, []jobspec.SourceKey{ref, sec}, cfg)
	if ordered[0].Track.Type != jobspec.TrackVideo {
		t.Fatalf("ordered[0].Type = %v, want video", ordered[0].Track.Type)
	}
	if ordered[1].Track.Source != ref || ordered[2].Track.Source != sec {
		t.Errorf("audio order = %v/%v, want ref before sec", ordered[1].Track.Source, ordered[2].Track.Source)
	}
}

func TestOrder_PrefersEnglishAudio(t *testing.T) {
	cfg := config.Default()
	cfg.PreferEnglishAudio = true
	inputs := []TrackInput{
		{Track: jobspec.TrackID{Source: ref, Type: jobspec.TrackAudio}, Language: "jpn"},
		{Track: jobspec.TrackID{Source: sec, Type: jobspec.TrackAudio}, Language: "eng"},
	}
	ordered := Order(inputs, []jobspec.SourceKey{ref, sec}, cfg)
	if ordered[0].Language != "eng" {
		t.Errorf("ordered[0].Language = %q, want eng", ordered[0].Language)
	}
}

func TestApplyDefaults_OneVideoOneAudio(t *testing.T) {
	items := []PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackVideo}},
		{Track: jobspec.TrackID{Type: jobspec.TrackAudio}},
		{Track: jobspec.TrackID{Type: jobspec.TrackAudio}},
	}
	out := ApplyDefaults(items, true, config.Default())
	if !out[0].Default {
		t.Error("video track should default")
	}
	if !out[1].Default || out[2].Default {
		t.Error("only first audio track should default")
	}
}

func TestApplyDefaults_SignsSongsWinsSubtitleDefault(t *testing.T) {
	items := []PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackSubtitle}, Name: "Full Subtitles"},
		{Track: jobspec.TrackID{Type: jobspec.TrackSubtitle}, Name: "Signs & Songs"},
	}
	out := ApplyDefaults(items, true, config.Default())
	if out[0].Default {
		t.Error("non-signs/songs subtitle should not default")
	}
	if !out[1].Default {
		t.Error("signs/songs subtitle should default")
	}
}

func TestApplyDefaults_NoEnglishAudio_FirstSubtitleDefaults(t *testing.T) {
	items := []PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackSubtitle}, Name: "Full Subtitles"},
	}
	out := ApplyDefaults(items, false, config.Default())
	if !out[0].Default {
		t.Error("first subtitle should default when no English audio exists")
	}
}

func TestApplyDefaults_LastForcedWins(t *testing.T) {
	items := []PlanItem{
		{Track: jobspec.TrackID{Type: jobspec.TrackSubtitle}, Forced: true},
		{Track: jobspec.TrackID{Type: jobspec.TrackSubtitle}, Forced: true},
	}
	out := ApplyDefaults(items, true, config.Default())
	if out[0].Forced {
		t.Error("earlier forced flag should be superseded")
	}
	if !out[1].Forced {
		t.Error("later forced flag should win")
	}
}
