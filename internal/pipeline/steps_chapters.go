package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/syncmux/internal/chapters"
	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/planner"
)

// ChapterResult is the Chapters step's published output. OutputPath is
// empty when the reference has no chapters (spec.md §7: "chapter
// extraction returning 'no chapters' is treated as absence, not failure").
type ChapterResult struct {
	OutputPath string
}

// RunChapters extracts the reference's chapter XML (if any), shifts it by
// the global normalization shift, optionally snaps boundaries to
// keyframes, normalizes, and writes chapters_mod.xml (spec.md §4.8).
func RunChapters(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Chapters")
	cfg := pc.Job.Config

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepChapters, "read-analyze", "Analyze slot not published")
	}

	ref := pc.Job.Reference()
	refProbe, ok := analyze.Probes[ref.Key]
	if !ok {
		return invalidInput(StepChapters, "lookup-reference-probe", "no probe result for reference source")
	}
	if refProbe.ChaptersCount == 0 {
		if !state.chapters.publish(ChapterResult{}) {
			return fatalInvariant(StepChapters, "chapters")
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return wrapTool(StepChapters, "cancel-check", err)
	}

	raw, err := extractChaptersXML(ctx, ref.Path)
	if err != nil {
		return wrapTool(StepChapters, "mkvextract-chapters", err)
	}

	parsed, err := chapters.Parse(bytes.NewReader(raw))
	if err != nil {
		return invalidInput(StepChapters, "parse-chapter-xml", err.Error())
	}

	norm := planner.Normalize(rawDelaysOf(analyze))

	var keyframesNs []int64
	if cfg.SnapMode != config.SnapOff {
		kf, err := probeKeyframes(ctx, ref.Path)
		if err != nil {
			return wrapTool(StepChapters, "ffprobe-keyframes", err)
		}
		keyframesNs = kf
	}

	processed := chapters.Process(parsed, norm.GlobalShiftMs, keyframesNs, cfg)

	outPath := filepath.Join(pc.WorkDir, "chapters_mod.xml")
	f, err := os.Create(outPath)
	if err != nil {
		return invalidInput(StepChapters, "create-chapters-file", err.Error())
	}
	defer f.Close()
	if err := chapters.Emit(f, processed); err != nil {
		return invalidInput(StepChapters, "emit-chapter-xml", err.Error())
	}

	if !state.chapters.publish(ChapterResult{OutputPath: outPath}) {
		return fatalInvariant(StepChapters, "chapters")
	}
	return nil
}

// extractChaptersXML runs mkvextract directly (rather than through
// internal/runner) to capture its stdout as chapter XML bytes, the same
// "bypass the line-logging runner when the tool's stdout is the payload"
// precedent internal/decode already sets for ffmpeg's raw PCM output.
func extractChaptersXML(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "mkvextract", "chapters", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("mkvextract chapters %q: %w", path, err)
	}
	return out, nil
}

// probeKeyframes runs ffprobe over the reference's primary video stream
// and returns every keyframe's presentation timestamp in nanoseconds
// (spec.md §6: "emits pts_time and flags lines; keyframes identified by K
// in flags").
func probeKeyframes(ctx context.Context, path string) ([]int64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,flags",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe keyframes %q: %w", path, err)
	}

	var keyframes []int64
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 2 || !strings.Contains(parts[1], "K") {
			continue
		}
		ptsS, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		keyframes = append(keyframes, int64(ptsS*1_000_000_000))
	}
	return keyframes, nil
}
