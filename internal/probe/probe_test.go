package probe

import (
	"testing"

	"github.com/backmassage/syncmux/internal/jobspec"
)

// Realistic mkvmerge -J JSON for a Matroska file with one H.264 video
// track, one AC-3 audio track with a negative minimum_timestamp, and one
// ASS subtitle track.
const sampleJSON = `{
  "container": { "properties": { "duration": 3600000000000 } },
  "tracks": [
    {
      "id": 0,
      "type": "video",
      "codec": "AVC/H.264/MPEG-4p10",
      "properties": {
        "codec_id": "V_MPEG4/ISO/AVC",
        "language": "eng",
        "pixel_dimensions": "1920x1080",
        "default_track": true,
        "minimum_timestamp": 40000000
      }
    },
    {
      "id": 1,
      "type": "audio",
      "codec": "AC-3",
      "properties": {
        "codec_id": "A_AC3",
        "language": "jpn",
        "audio_channels": 6,
        "audio_sampling_frequency": 48000,
        "default_track": true,
        "minimum_timestamp": -500000
      }
    },
    {
      "id": 2,
      "type": "subtitles",
      "codec": "SubStationAlpha",
      "properties": {
        "codec_id": "S_TEXT/ASS",
        "language": "eng",
        "track_name": "Full Subtitles",
        "minimum_timestamp": 12000000
      }
    }
  ],
  "attachments": [
    { "id": 1, "file_name": "NotoSans.ttf", "content_type": "application/x-truetype-font" }
  ],
  "chapters": [ {} ]
}`

func TestParseJSON_TracksAndTypes(t *testing.T) {
	r, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(r.Tracks) != 3 {
		t.Fatalf("len(Tracks) = %d, want 3", len(r.Tracks))
	}
	if r.Tracks[0].Type != jobspec.TrackVideo {
		t.Errorf("Tracks[0].Type = %q, want video", r.Tracks[0].Type)
	}
	if r.Tracks[1].Channels != 6 {
		t.Errorf("Tracks[1].Channels = %d, want 6", r.Tracks[1].Channels)
	}
	if r.Tracks[2].Name != "Full Subtitles" {
		t.Errorf("Tracks[2].Name = %q", r.Tracks[2].Name)
	}
	if len(r.Attachments) != 1 || r.Attachments[0].Name != "NotoSans.ttf" {
		t.Errorf("Attachments = %+v", r.Attachments)
	}
}

func TestContainerDelayMs_VideoAndAudio(t *testing.T) {
	r, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	video, _ := r.ByID(0)
	if got := video.ContainerDelayMs(); got != 40 {
		t.Errorf("video ContainerDelayMs = %d, want 40", got)
	}
	// -500_000 ns is an exact half-ms tie; round-half-to-even rounds to
	// the even neighbor (0), not -1. See spec.md §4.2/§8/§9: the
	// illustrative "-1" figure in §8 contradicts its own parenthetical
	// "(banker's rounding of -0.5 is 0, ...)" — the contract formula
	// and that parenthetical are followed here.
	audio, _ := r.ByID(1)
	if got := audio.ContainerDelayMs(); got != 0 {
		t.Errorf("audio ContainerDelayMs = %d, want 0", got)
	}
}

func TestContainerDelayMs_SubtitleAlwaysZero(t *testing.T) {
	r, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	sub, _ := r.ByID(2)
	if got := sub.ContainerDelayMs(); got != 0 {
		t.Errorf("subtitle ContainerDelayMs = %d, want 0", got)
	}
}

func TestOfType(t *testing.T) {
	r, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got := r.OfType(jobspec.TrackAudio); len(got) != 1 {
		t.Errorf("OfType(audio) = %d tracks, want 1", len(got))
	}
}
