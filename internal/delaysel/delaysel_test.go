package delaysel

import (
	"testing"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/correlate"
)

func chunk(startS, delay, conf float64) correlate.ChunkResult {
	return correlate.ChunkResult{
		StartS:         startS,
		RawDelayMs:     delay,
		RoundedDelayMs: int64(delay),
		Confidence:     conf,
		Accepted:       true,
	}
}

func TestSelect_InsufficientData(t *testing.T) {
	cfg := config.Default()
	cfg.MinAcceptedChunks = 3
	_, err := Select([]correlate.ChunkResult{chunk(0, 400, 90)}, cfg)
	if err != ErrInsufficientData {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestSelect_MostCommon(t *testing.T) {
	cfg := config.Default()
	cfg.SelectionMode = config.SelectMostCommon
	cfg.MinAcceptedChunks = 1
	chunks := []correlate.ChunkResult{
		chunk(0, 400, 90),
		chunk(15, 400, 95),
		chunk(30, 401, 80),
		chunk(45, 250, 99),
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RoundedDelayMs != 400 {
		t.Errorf("RoundedDelayMs = %d, want 400", sel.RoundedDelayMs)
	}
}

func TestSelect_Average(t *testing.T) {
	cfg := config.Default()
	cfg.SelectionMode = config.SelectAverage
	cfg.MinAcceptedChunks = 1
	chunks := []correlate.ChunkResult{
		chunk(0, 398, 90),
		chunk(15, 402, 90),
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RawDelayMs != 400 {
		t.Errorf("RawDelayMs = %v, want 400", sel.RawDelayMs)
	}
}

func TestSelect_FirstStable(t *testing.T) {
	cfg := config.Default()
	cfg.SelectionMode = config.SelectFirstStable
	cfg.FirstStableMinChunks = 3
	cfg.MinAcceptedChunks = 1
	chunks := []correlate.ChunkResult{
		chunk(0, 100, 90),
		chunk(15, 400, 90),
		chunk(30, 400, 90),
		chunk(45, 401, 90),
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RoundedDelayMs != 400 {
		t.Errorf("RoundedDelayMs = %d, want 400 (first stable run of 3)", sel.RoundedDelayMs)
	}
}

func TestSelect_FirstStable_FallsBackToMostCommon(t *testing.T) {
	cfg := config.Default()
	cfg.SelectionMode = config.SelectFirstStable
	cfg.FirstStableMinChunks = 5
	cfg.MinAcceptedChunks = 1
	chunks := []correlate.ChunkResult{
		chunk(0, 100, 90),
		chunk(15, 400, 90),
		chunk(30, 400, 90),
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RoundedDelayMs != 400 {
		t.Errorf("RoundedDelayMs = %d, want 400 (fallback to MostCommon)", sel.RoundedDelayMs)
	}
}

func TestSelect_ModeClustered(t *testing.T) {
	cfg := config.Default()
	cfg.SelectionMode = config.SelectClustered
	cfg.MinAcceptedChunks = 1
	chunks := []correlate.ChunkResult{
		chunk(0, 400, 90),
		chunk(15, 401, 90),
		chunk(30, 250, 99),
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RoundedDelayMs != 400 && sel.RoundedDelayMs != 401 {
		t.Errorf("RoundedDelayMs = %d, want ~400/401 cluster", sel.RoundedDelayMs)
	}
}

func TestSelect_OnlyAcceptedChunksCount(t *testing.T) {
	cfg := config.Default()
	cfg.MinAcceptedChunks = 2
	rejected := chunk(0, 999, 1)
	rejected.Accepted = false
	chunks := []correlate.ChunkResult{
		chunk(0, 400, 90),
		chunk(15, 400, 90),
		rejected,
	}
	sel, err := Select(chunks, cfg)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.RoundedDelayMs != 400 {
		t.Errorf("rejected chunk should not influence selection, got %d", sel.RoundedDelayMs)
	}
}
