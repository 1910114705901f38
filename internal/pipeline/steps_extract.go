package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/runner"
)

// ExtractedTrack is one selected track's standalone file on disk, plus the
// probed metadata the plan builder needs.
type ExtractedTrack struct {
	Track    jobspec.TrackID
	Path     string
	CodecID  string
	Language string
	Name     string
	Forced   bool
}

// ExtractResult is the Extract step's published output.
type ExtractResult struct {
	Tracks map[jobspec.TrackID]ExtractedTrack
}

// RunExtract pulls every selected track out of its source container into a
// standalone file named per spec.md §6's persisted-state convention
// (`<source>_track_<stem>_<id>.<ext>`), via mkvextract.
func RunExtract(ctx context.Context, pc *Context, state *JobState) error {
	pc.Log.Section("Extract")

	analyze, ok := state.analyze.get()
	if !ok {
		return invalidInput(StepExtract, "read-analyze", "Analyze slot not published")
	}

	tracks := make(map[jobspec.TrackID]ExtractedTrack)
	for _, src := range pc.Job.Sources {
		probeResult, ok := analyze.Probes[src.Key]
		if !ok {
			return invalidInput(StepExtract, "lookup-probe", fmt.Sprintf("no probe result for source %q", src.Key))
		}

		var args []string
		var planned []ExtractedTrack
		for _, sel := range src.Tracks {
			info, ok := probeResult.ByID(sel.TrackID)
			if !ok {
				return invalidInput(StepExtract, "lookup-track", fmt.Sprintf("source %q has no track %d", src.Key, sel.TrackID))
			}

			id := jobspec.TrackID{Source: src.Key, Track: sel.TrackID, Type: sel.Type}
			outPath := extractedPath(pc.WorkDir, src.Key, sel.TrackID, info.CodecID)
			args = append(args, fmt.Sprintf("%d:%s", sel.TrackID, outPath))

			name := sel.Options.NameOverride
			if name == "" {
				name = info.Name
			}
			lang := sel.Options.LangOverride
			if lang == "" {
				lang = info.Language
			}
			planned = append(planned, ExtractedTrack{
				Track: id, Path: outPath, CodecID: info.CodecID,
				Language: lang, Name: name, Forced: sel.Options.Forced || info.Forced,
			})
		}
		if len(args) == 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			return wrapTool(StepExtract, "cancel-check", err)
		}

		full := append([]string{src.Path, "tracks"}, args...)
		if _, err := pc.Run.Run(ctx, "mkvextract", full, runner.Options{ErrorTailLines: pc.ErrorTailLines}); err != nil {
			return wrapTool(StepExtract, "mkvextract:"+string(src.Key), err)
		}

		for _, t := range planned {
			tracks[t.Track] = t
		}
	}

	if !state.extract.publish(ExtractResult{Tracks: tracks}) {
		return fatalInvariant(StepExtract, "extract")
	}
	return nil
}

// codecExt maps a matroska codec id to the file extension mkvextract's
// output should carry (spec.md §6: "derived from codec id via a fixed
// mapping; unknown codec -> neutral extension").
func codecExt(codecID string) string {
	switch codecID {
	case "V_MPEG4/ISO/AVC":
		return "h264"
	case "V_MPEGH/ISO/HEVC":
		return "h265"
	case "V_VP9":
		return "ivf"
	case "V_AV1":
		return "ivf"
	case "A_AC3":
		return "ac3"
	case "A_EAC3":
		return "eac3"
	case "A_DTS":
		return "dts"
	case "A_TRUEHD":
		return "thd"
	case "A_FLAC":
		return "flac"
	case "A_AAC":
		return "aac"
	case "A_OPUS":
		return "opus"
	case "A_VORBIS":
		return "ogg"
	case "A_PCM/INT/LIT":
		return "wav"
	case "S_TEXT/UTF8", "S_TEXT/ASS", "S_TEXT/SSA":
		return "ass"
	case "S_TEXT/WEBVTT":
		return "vtt"
	case "S_HDMV/PGS":
		return "sup"
	case "S_VOBSUB":
		return "sub"
	default:
		return "bin"
	}
}

func extractedPath(workDir string, source jobspec.SourceKey, trackID int, codecID string) string {
	stem := string(source)
	name := fmt.Sprintf("%s_track_%s_%s.%s", source, stem, strconv.Itoa(trackID), codecExt(codecID))
	return filepath.Join(workDir, name)
}
