// Package mux builds the mkvmerge options-file token array from a
// planner.MergePlan (spec.md §4.11). It only builds the argument list and
// writes the options file; the pipeline's mux step runs mkvmerge on it
// through C1 (internal/runner).
package mux

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/backmassage/syncmux/internal/display"
	"github.com/backmassage/syncmux/internal/jobspec"
	"github.com/backmassage/syncmux/internal/planner"
)

// dialogNormCodecs are the codecs carrying an AC-3-family dialog
// normalization gain value that can be stripped (spec.md §4.11).
var dialogNormCodecs = map[string]bool{
	"A_AC3":  true,
	"A_EAC3": true,
}

// Attachment is one font/image carried into the output (spec.md §4.11
// "--attach-file <path> per attachment").
type Attachment struct {
	Path string
}

// BuildArgs renders plan into the flat mkvmerge token array, in the exact
// per-track token order spec.md §4.11 names, followed by attachments and
// the final --track-order.
func BuildArgs(outputPath string, plan planner.MergePlan, attachments []Attachment, chaptersXMLPath string, cfg DialogNormConfig) []string {
	args := []string{"--output", outputPath}
	if chaptersXMLPath != "" {
		args = append(args, "--chapters", chaptersXMLPath)
	}

	for _, item := range plan.Items {
		args = append(args, trackTokens(item, cfg)...)
		args = append(args, "(", item.FilePath, ")")
	}

	for _, a := range attachments {
		args = append(args, "--attach-file", a.Path)
	}

	args = append(args, "--track-order", trackOrderToken(len(plan.Items)))
	return args
}

// DialogNormConfig gates the AC-3/E-AC-3 dialog-norm-gain removal token.
type DialogNormConfig struct {
	RemoveDialogNormGain bool
}

func trackTokens(item planner.PlanItem, cfg DialogNormConfig) []string {
	var out []string
	if item.Language != "" {
		out = append(out, "--language", "0:"+item.Language)
	}
	if item.Name != "" {
		out = append(out, "--track-name", "0:"+item.Name)
	}
	out = append(out, "--sync", "0:"+display.FormatSignedMs(item.DelayMs))
	out = append(out, "--default-track-flag", "0:"+yesNo(item.Default))
	if item.Forced {
		out = append(out, "--forced-display-flag", "0:yes")
	}
	out = append(out, "--compression", "0:none")
	if item.Track.Type == jobspec.TrackAudio && cfg.RemoveDialogNormGain && dialogNormCodecs[item.CodecID] {
		out = append(out, "--remove-dialog-normalization-gain", "0")
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// trackOrderToken renders "0:0,1:0,2:0,..." — one file-group per track,
// each contributing its sole track 0 (spec.md §4.11).
func trackOrderToken(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%d:0", i)
	}
	return strings.Join(parts, ",")
}

// WriteOptionsFile serializes args as a single-line UTF-8 JSON array
// (spec.md §4.11's "@path" options-file convention).
func WriteOptionsFile(args []string) ([]byte, error) {
	return json.Marshal(args)
}
