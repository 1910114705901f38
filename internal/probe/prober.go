// Package probe invokes the multiplexer's JSON identify call and parses
// its track list into typed records, computing each track's container
// delay per spec.md §4.2. A single JSON call per file replaces what would
// otherwise be several ad hoc option dumps.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/backmassage/syncmux/internal/jobspec"
)

// Probe runs `mkvmerge -J path` and returns the parsed result.
func Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "mkvmerge", "-J", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("mkvmerge -J %q: %w", path, err)
	}
	return ParseJSON(out)
}

// ParseJSON converts raw mkvmerge -J output into a Result. Exported for
// testing without a real mkvmerge binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw mkvmergeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse mkvmerge JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- mkvmerge -J wire types ---

type mkvmergeOutput struct {
	Container   mkvmergeContainer `json:"container"`
	Tracks      []mkvmergeTrack   `json:"tracks"`
	Attachments []mkvmergeAttach  `json:"attachments"`
	Chapters    []json.RawMessage `json:"chapters"`
}

type mkvmergeContainer struct {
	Properties struct {
		DurationNs int64 `json:"duration"`
	} `json:"properties"`
}

type mkvmergeTrack struct {
	ID         int                     `json:"id"`
	Type       string                  `json:"type"`
	Codec      string                  `json:"codec"`
	Properties mkvmergeTrackProperties `json:"properties"`
}

type mkvmergeTrackProperties struct {
	CodecID                string `json:"codec_id"`
	Language               string `json:"language"`
	LanguageIETF           string `json:"language_ietf"`
	TrackName              string `json:"track_name"`
	DefaultTrack           bool   `json:"default_track"`
	ForcedTrack            bool   `json:"forced_track"`
	EnabledTrack           *bool  `json:"enabled_track"`
	AudioChannels          int    `json:"audio_channels"`
	AudioSamplingFrequency int    `json:"audio_sampling_frequency"`
	PixelDimensions        string `json:"pixel_dimensions"`
	MinimumTimestamp       int64  `json:"minimum_timestamp"`
	DefaultDurationNs      int64  `json:"default_duration"`
}

type mkvmergeAttach struct {
	ID          int    `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

func buildResult(raw *mkvmergeOutput) *Result {
	r := &Result{
		DurationNs:    raw.Container.Properties.DurationNs,
		ChaptersCount: len(raw.Chapters),
	}
	for _, t := range raw.Tracks {
		r.Tracks = append(r.Tracks, convertTrack(t))
	}
	for _, a := range raw.Attachments {
		r.Attachments = append(r.Attachments, Attachment{
			ID:          a.ID,
			Name:        a.FileName,
			ContentType: a.ContentType,
		})
	}
	return r
}

func convertTrack(t mkvmergeTrack) TrackInfo {
	lang := t.Properties.LanguageIETF
	if lang == "" {
		lang = t.Properties.Language
	}

	enabled := true
	if t.Properties.EnabledTrack != nil {
		enabled = *t.Properties.EnabledTrack
	}

	width, height := parsePixelDimensions(t.Properties.PixelDimensions)

	return TrackInfo{
		ID:                 t.ID,
		Type:               trackType(t.Type),
		CodecID:            t.Properties.CodecID,
		Language:           lang,
		Name:               t.Properties.TrackName,
		Channels:           t.Properties.AudioChannels,
		SampleRate:         t.Properties.AudioSamplingFrequency,
		Width:              width,
		Height:             height,
		Default:            t.Properties.DefaultTrack,
		Forced:             t.Properties.ForcedTrack,
		Enabled:            enabled,
		MinimumTimestampNs: t.Properties.MinimumTimestamp,
		DefaultDurationNs:  t.Properties.DefaultDurationNs,
	}
}

func trackType(s string) jobspec.TrackType {
	switch s {
	case "video":
		return jobspec.TrackVideo
	case "audio":
		return jobspec.TrackAudio
	case "subtitles":
		return jobspec.TrackSubtitle
	default:
		return jobspec.TrackType(s)
	}
}

func parsePixelDimensions(s string) (w, h int) {
	if s == "" {
		return 0, 0
	}
	var a, b int
	if _, err := fmt.Sscanf(s, "%dx%d", &a, &b); err != nil {
		return 0, 0
	}
	return a, b
}
