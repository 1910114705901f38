package planner

import (
	"regexp"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/jobspec"
)

// signsSongsPattern matches subtitle track names that should win the
// default flag regardless of language presence (spec.md §4.10).
var signsSongsPattern = regexp.MustCompile(`(?i)signs|songs|titles`)

// ApplyDefaults sets Default/Forced on items already in final order
// (spec.md §4.10 "Default-flag policy"): exactly one default video (first),
// exactly one default audio (first), subtitle default by priority
// (Signs/Songs/Titles name > first subtitle when no English audio exists >
// first subtitle only if cfg.FirstSubDefault), and at most one forced
// subtitle (the last one the caller marked Forced wins).
func ApplyDefaults(items []PlanItem, hasEnglishAudio bool, cfg config.Snapshot) []PlanItem {
	out := append([]PlanItem(nil), items...)

	videoSet, audioSet := false, false
	for i := range out {
		out[i].Default = false
		switch trackTypeOf(out[i]) {
		case jobspec.TrackVideo:
			if !videoSet {
				out[i].Default = true
				videoSet = true
			}
		case jobspec.TrackAudio:
			if !audioSet {
				out[i].Default = true
				audioSet = true
			}
		}
	}

	applySubtitleDefault(out, hasEnglishAudio, cfg)

	forcedIdx := -1
	for i := range out {
		if trackTypeOf(out[i]) == jobspec.TrackSubtitle && out[i].Forced {
			forcedIdx = i
		}
	}
	for i := range out {
		if trackTypeOf(out[i]) == jobspec.TrackSubtitle {
			out[i].Forced = false
		}
	}
	if forcedIdx >= 0 {
		out[forcedIdx].Forced = true
	}

	return out
}

func applySubtitleDefault(items []PlanItem, hasEnglishAudio bool, cfg config.Snapshot) {
	for i := range items {
		if trackTypeOf(items[i]) == jobspec.TrackSubtitle && signsSongsPattern.MatchString(items[i].Name) {
			items[i].Default = true
			return
		}
	}
	if !hasEnglishAudio || cfg.FirstSubDefault {
		for i := range items {
			if trackTypeOf(items[i]) == jobspec.TrackSubtitle {
				items[i].Default = true
				return
			}
		}
	}
}

// trackTypeOf reads the type off PlanItem.Track, since PlanItem doesn't
// carry its own Type field separately (spec.md §3: TrackID already names
// it).
func trackTypeOf(item PlanItem) jobspec.TrackType {
	return item.Track.Type
}
