package correct

import (
	"testing"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/drift"
)

func TestWindowStdDev_SilentVsLoud(t *testing.T) {
	silent := make([]int32, 500)
	loud := make([]int32, 500)
	for i := range loud {
		if i%2 == 0 {
			loud[i] = 20000
		} else {
			loud[i] = -20000
		}
	}
	if got := windowStdDev(silent, 0, 500); got >= 100.0 {
		t.Errorf("silent stddev = %v, want < 100.0", got)
	}
	if got := windowStdDev(loud, 0, 500); got < 100.0 {
		t.Errorf("loud stddev = %v, want >= 100.0", got)
	}
}

func TestFindSilentCut_PrefersClosestMatch(t *testing.T) {
	sampleRate := 1000
	n := sampleRate * 2
	pcm := make([]int32, n)
	for i := range pcm {
		if i%2 == 0 {
			pcm[i] = 20000
		} else {
			pcm[i] = -20000
		}
	}
	// Carve a silent patch near the center.
	for i := n/2 - 50; i < n/2+50; i++ {
		pcm[i] = 0
	}

	idx, ok := findSilentCut(pcm, sampleRate, n/2+5, 200, 100.0)
	if !ok {
		t.Fatal("expected a silent cut to be found")
	}
	if idx < n/2-50 || idx > n/2+50 {
		t.Errorf("cut idx = %d, want within the carved silent patch", idx)
	}
}

func TestBuildEDL_FallsBackToBoundaryMode(t *testing.T) {
	sampleRate := 1000
	samples := make([]float32, sampleRate*10)
	for i := range samples {
		// Full-scale alternating signal: its stddev is far above the
		// threshold everywhere, so no silent cut exists.
		if i%2 == 0 {
			samples[i] = 0.9
		} else {
			samples[i] = -0.9
		}
	}

	segments := []drift.AudioSegment{
		{StartS: 0, EndS: 4, DelayMsRounded: 0},
		{StartS: 4, EndS: 10, DelayMsRounded: 500},
	}
	cfg := config.Default()
	cfg.BoundaryMode = config.BoundaryStart
	cfg.SilenceSearchWindowMs = 50

	entries := BuildEDL(samples, sampleRate, segments, cfg)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	wantCut := int(segments[1].StartS * float64(sampleRate))
	if entries[0].EndIdx != wantCut || entries[1].StartIdx != wantCut {
		t.Errorf("boundary = %d/%d, want %d (BoundaryStart fallback)", entries[0].EndIdx, entries[1].StartIdx, wantCut)
	}
}

func TestApplyEDL_PadsPositiveDelay(t *testing.T) {
	samples := make([]float32, 100)
	for i := range samples {
		samples[i] = float32(i) / 100
	}
	entries := []Entry{{StartIdx: 0, EndIdx: 50, DelayMs: 0}, {StartIdx: 50, EndIdx: 100, DelayMs: 10}}
	out := applyEDL(samples, 1000, entries)
	// 10ms @ 1000Hz == 10 samples of padding before the second entry's span.
	if len(out) != 50+10+50 {
		t.Fatalf("len(out) = %d, want %d", len(out), 110)
	}
	for i := 50; i < 60; i++ {
		if out[i] != 0 {
			t.Errorf("out[%d] = %v, want 0 (padding)", i, out[i])
		}
	}
}
