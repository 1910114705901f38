package planner

import (
	"sort"
	"strings"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/jobspec"
)

func typeRank(t jobspec.TrackType) int {
	switch t {
	case jobspec.TrackVideo:
		return 0
	case jobspec.TrackAudio:
		return 1
	default:
		return 2
	}
}

// Order sorts tracks by type (video, audio, subtitles), interleaving
// sources within each type in sourceOrder's order (reference first); within
// the audio group, English tracks are pulled to the front when
// cfg.PreferEnglishAudio is set; generated/filtered subtitle tracks are
// kept immediately after the native track they were derived from via
// SubtitleOrder (spec.md §4.10 "Track ordering").
func Order(inputs []TrackInput, sourceOrder []jobspec.SourceKey, cfg config.Snapshot) []TrackInput {
	rank := make(map[jobspec.SourceKey]int, len(sourceOrder))
	for i, s := range sourceOrder {
		rank[s] = i
	}

	out := append([]TrackInput(nil), inputs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := typeRank(a.Track.Type), typeRank(b.Track.Type); ra != rb {
			return ra < rb
		}
		if a.Track.Type == jobspec.TrackAudio && cfg.PreferEnglishAudio {
			ea, eb := englishRank(a.Language), englishRank(b.Language)
			if ea != eb {
				return ea < eb
			}
		}
		if sa, sb := rank[a.Track.Source], rank[b.Track.Source]; sa != sb {
			return sa < sb
		}
		if a.Track.Type == jobspec.TrackSubtitle && a.SubtitleOrder != b.SubtitleOrder {
			return a.SubtitleOrder < b.SubtitleOrder
		}
		return a.Track.Track < b.Track.Track
	})
	return out
}

func englishRank(lang string) int {
	if strings.EqualFold(lang, "eng") || strings.EqualFold(lang, "en") {
		return 0
	}
	return 1
}
