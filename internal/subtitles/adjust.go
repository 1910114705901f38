// Package subtitles mutates parsed subtitle event times in place (spec.md
// §4.9). Parsing and serialization are delegated to
// github.com/asticode/go-astisub — this package never reads or writes a
// subtitle file itself, it only adjusts the in-memory event list astisub
// already parsed.
package subtitles

import (
	"math"
	"time"

	"github.com/asticode/go-astisub"
)

// frameSnapEpsilon guards the floor operation against float rounding at
// exact frame boundaries (spec.md §4.9).
const frameSnapEpsilon = 1e-6

// Mode selects how event times are adjusted.
type Mode string

const (
	ModeTimeShift    Mode = "time_shift"
	ModeFrameFloor   Mode = "frame_floor"
	ModeFrameMiddle  Mode = "frame_middle"
)

// Result reports whether events were frame-snapped, which changes how the
// multiplexer's --sync value for this track is computed (spec.md §4.10:
// frame_adjusted tracks get delay 0).
type Result struct {
	FrameAdjusted bool
}

// Adjust mutates every event's start/end in subs according to mode. For
// ModeTimeShift, shiftMs is added directly. For the frame-snap modes,
// shiftMs is first applied, then each resulting time is snapped to a frame
// boundary at fps: down to the frame's start for ModeFrameFloor, to the
// nearest boundary for ModeFrameMiddle.
func Adjust(subs *astisub.Subtitles, shiftMs float64, mode Mode, fps float64) Result {
	shift := time.Duration(shiftMs * float64(time.Millisecond))

	for _, item := range subs.Items {
		item.StartAt = adjustOne(item.StartAt, shift, mode, fps)
		item.EndAt = adjustOne(item.EndAt, shift, mode, fps)
	}

	return Result{FrameAdjusted: mode == ModeFrameFloor || mode == ModeFrameMiddle}
}

func adjustOne(t, shift time.Duration, mode Mode, fps float64) time.Duration {
	shifted := t + shift
	switch mode {
	case ModeFrameFloor:
		return snapToFrame(shifted, fps, 0)
	case ModeFrameMiddle:
		return snapToFrame(shifted, fps, 0.5)
	default:
		return shifted
	}
}

// snapToFrame implements frame_floor/frame_middle (spec.md §4.9):
// floor((t_ms + ε)/frame_ms + bias) * frame_ms, converted back to a
// Duration.
func snapToFrame(t time.Duration, fps, bias float64) time.Duration {
	frameMs := 1000.0 / fps
	tMs := float64(t) / float64(time.Millisecond)
	frameIdx := math.Floor((tMs+frameSnapEpsilon)/frameMs + bias)
	snappedMs := frameIdx * frameMs
	return time.Duration(snappedMs * float64(time.Millisecond))
}
