package subtitles

import (
	"testing"
	"time"

	"github.com/asticode/go-astisub"
)

func newSubs(times ...time.Duration) *astisub.Subtitles {
	subs := &astisub.Subtitles{}
	for i := 0; i+1 < len(times); i += 2 {
		subs.Items = append(subs.Items, &astisub.Item{StartAt: times[i], EndAt: times[i+1]})
	}
	return subs
}

func TestAdjust_TimeShift(t *testing.T) {
	subs := newSubs(1*time.Second, 2*time.Second)
	res := Adjust(subs, 500, ModeTimeShift, 23.976)
	if res.FrameAdjusted {
		t.Error("FrameAdjusted = true, want false for time_shift")
	}
	if subs.Items[0].StartAt != 1500*time.Millisecond {
		t.Errorf("StartAt = %v, want 1.5s", subs.Items[0].StartAt)
	}
	if subs.Items[0].EndAt != 2500*time.Millisecond {
		t.Errorf("EndAt = %v, want 2.5s", subs.Items[0].EndAt)
	}
}

func TestAdjust_FrameFloor(t *testing.T) {
	fps := 25.0 // frame duration = 40ms
	subs := newSubs(45 * time.Millisecond, 0)
	res := Adjust(subs, 0, ModeFrameFloor, fps)
	if !res.FrameAdjusted {
		t.Error("FrameAdjusted = false, want true")
	}
	want := 40 * time.Millisecond // floor(45/40) = 1 -> 1*40ms
	if subs.Items[0].StartAt != want {
		t.Errorf("StartAt = %v, want %v", subs.Items[0].StartAt, want)
	}
}

func TestAdjust_FrameMiddle(t *testing.T) {
	fps := 25.0
	subs := newSubs(10*time.Millisecond, 0)
	res := Adjust(subs, 0, ModeFrameMiddle, fps)
	if !res.FrameAdjusted {
		t.Error("FrameAdjusted = false, want true")
	}
	// floor(10/40 + 0.5) = floor(0.75) = 0 -> 0ms
	if subs.Items[0].StartAt != 0 {
		t.Errorf("StartAt = %v, want 0", subs.Items[0].StartAt)
	}
}
