// Package config holds validated settings for the synchronization pipeline:
// enumerated string-switch options (correlation method, selection mode,
// snap mode, correction engine, fill policy, boundary mode), numeric
// defaults, and the config.Snapshot embedded in every JobSpec. Parsing
// rejects unknown enum values rather than silently dropping them.
package config

import (
	"errors"
	"fmt"
)

// --- Enum types for validated string fields (spec.md §6) ---

// CorrelationMethod selects the cross-correlation transform C4 uses.
type CorrelationMethod string

const (
	MethodGCCPHAT   CorrelationMethod = "gcc_phat"
	MethodSCC       CorrelationMethod = "scc"
	MethodSCOT      CorrelationMethod = "scot"
	MethodWhitened  CorrelationMethod = "whitened"
)

// SelectionMode chooses how C5 aggregates per-chunk delays into one value.
type SelectionMode string

const (
	SelectMostCommon   SelectionMode = "most_common"
	SelectClustered    SelectionMode = "clustered"
	SelectAverage      SelectionMode = "average"
	SelectFirstStable  SelectionMode = "first_stable"
)

// CorrectionEngine selects the external resampler C7 invokes for
// linear/PAL drift correction.
type CorrectionEngine string

const (
	EngineRubberband CorrectionEngine = "rubberband"
	EngineAresample  CorrectionEngine = "aresample"
	EngineAtempo     CorrectionEngine = "atempo"
)

// SnapMode controls chapter keyframe snapping (C8).
type SnapMode string

const (
	SnapOff      SnapMode = "off"
	SnapPrevious SnapMode = "previous"
	SnapNearest  SnapMode = "nearest"
)

// FillPolicy controls how C6's stepped-diagnosis gap segments are filled.
type FillPolicy string

const (
	FillSilence FillPolicy = "silence" // Hold the previous segment's delay across the gap.
	FillContent FillPolicy = "content" // Linearly interpolate delay across the gap.
)

// BoundaryMode is the fallback cut policy at stepped segment transitions
// when no silence is found within the search window (C7).
type BoundaryMode string

const (
	BoundaryStart    BoundaryMode = "start"
	BoundaryMajority BoundaryMode = "majority"
	BoundaryMidpoint BoundaryMode = "midpoint"
)

// SubtitleFrameMode selects how C9 snaps subtitle event times to frames.
type SubtitleFrameMode string

const (
	FrameModeNone   SubtitleFrameMode = "none"   // Time-based shift only.
	FrameModeFloor  SubtitleFrameMode = "floor"  // frame_floor snapping.
	FrameModeMiddle SubtitleFrameMode = "middle" // frame_middle snapping.
)

// Snapshot is the immutable configuration embedded verbatim in every
// JobSpec (spec.md §3, "configuration snapshot"). Field groups mirror
// spec.md §6's canonical key set; defaults are set by Default().
type Snapshot struct {
	// Analysis (C4/C5).
	ChunkCount           int               `yaml:"chunk_count,omitempty"`
	ChunkDurationS       float64           `yaml:"chunk_duration_s,omitempty"`
	ScanStartPct         float64           `yaml:"scan_start_pct,omitempty"`
	ScanEndPct           float64           `yaml:"scan_end_pct,omitempty"`
	SteppingScanEndPct   float64           `yaml:"stepping_scan_end_pct,omitempty"`
	MinMatchPct          float64           `yaml:"min_match_pct,omitempty"`
	CorrelationMethod    CorrelationMethod `yaml:"correlation_method,omitempty"`
	SelectionMode        SelectionMode     `yaml:"delay_selection_mode,omitempty"`
	FirstStableMinChunks int               `yaml:"first_stable_min_chunks,omitempty"`
	SkipUnstable         bool              `yaml:"skip_unstable,omitempty"`
	MinAcceptedChunks    int               `yaml:"min_accepted_chunks,omitempty"`

	// Drift (C6).
	ClusterEpsilonMs     float64    `yaml:"cluster_epsilon_ms,omitempty"`
	DriftR2Threshold     float64    `yaml:"drift_r2_threshold,omitempty"`
	SlopeThresholdMsPerS float64    `yaml:"slope_threshold_ms_per_s,omitempty"`
	FillPolicy           FillPolicy `yaml:"fill_policy,omitempty"`

	// Correction (C7).
	CorrectionEnabled     bool             `yaml:"correction_enabled,omitempty"`
	CorrectionEngine      CorrectionEngine `yaml:"correction_engine,omitempty"`
	SilenceStdThreshold   float64          `yaml:"silence_std_threshold,omitempty"`
	SilenceSearchWindowMs float64          `yaml:"silence_search_window_ms,omitempty"`
	BoundaryMode          BoundaryMode     `yaml:"boundary_mode,omitempty"`

	// Chapters (C8).
	RenameSequential bool     `yaml:"rename_sequential,omitempty"`
	SnapMode         SnapMode `yaml:"snap_mode,omitempty"`
	SnapThresholdMs  float64  `yaml:"snap_threshold_ms,omitempty"`

	// Subtitles (C9).
	SubtitleFPS       float64           `yaml:"subtitle_fps,omitempty"`
	SubtitleFrameMode SubtitleFrameMode `yaml:"subtitle_frame_mode,omitempty"`

	// Mux (C11).
	RemoveDialogNormGain   bool `yaml:"remove_dialog_norm_gain,omitempty"`
	DisableTrackStatistics bool `yaml:"disable_track_statistics,omitempty"`
	FirstSubDefault        bool `yaml:"first_sub_default,omitempty"`
	PreferEnglishAudio     bool `yaml:"prefer_english_audio,omitempty"`

	// Tooling.
	ToolTimeoutS    float64 `yaml:"tool_timeout_s,omitempty"`
	ErrorTailLines  int     `yaml:"error_tail_lines,omitempty"`
	ProgressStepPct int     `yaml:"progress_step_pct,omitempty"`
}

// Default returns the canonical default Snapshot (spec.md §6).
func Default() Snapshot {
	return Snapshot{
		ChunkCount:           10,
		ChunkDurationS:       15,
		ScanStartPct:         5,
		ScanEndPct:           95,
		SteppingScanEndPct:   99,
		MinMatchPct:          5.0,
		CorrelationMethod:    MethodGCCPHAT,
		SelectionMode:        SelectMostCommon,
		FirstStableMinChunks: 3,
		SkipUnstable:         false,
		MinAcceptedChunks:    3,

		ClusterEpsilonMs:     20,
		DriftR2Threshold:     0.9,
		SlopeThresholdMsPerS: 2.0,
		FillPolicy:           FillSilence,

		CorrectionEnabled:     false,
		CorrectionEngine:      EngineRubberband,
		SilenceStdThreshold:   100.0,
		SilenceSearchWindowMs: 50,
		BoundaryMode:          BoundaryMajority,

		RenameSequential: false,
		SnapMode:         SnapOff,
		SnapThresholdMs:  250,

		SubtitleFPS:       23.976,
		SubtitleFrameMode: FrameModeNone,

		RemoveDialogNormGain:   false,
		DisableTrackStatistics: false,
		FirstSubDefault:        false,
		PreferEnglishAudio:     true,

		ToolTimeoutS:    0, // 0 = no timeout.
		ErrorTailLines:  20,
		ProgressStepPct: 20,
	}
}

// Validate checks that every enumerated field holds a recognized value and
// that numeric fields fall within sane ranges. Unknown enum values are
// rejected, never silently coerced to a default.
func (s *Snapshot) Validate() error {
	if err := validateMethod(s.CorrelationMethod); err != nil {
		return err
	}
	if err := validateSelection(s.SelectionMode); err != nil {
		return err
	}
	if err := validateEngine(s.CorrectionEngine); err != nil {
		return err
	}
	if err := validateSnap(s.SnapMode); err != nil {
		return err
	}
	if err := validateFill(s.FillPolicy); err != nil {
		return err
	}
	if err := validateBoundary(s.BoundaryMode); err != nil {
		return err
	}
	if err := validateSubtitleFrameMode(s.SubtitleFrameMode); err != nil {
		return err
	}

	if s.ChunkCount <= 0 {
		return errors.New("chunk_count must be positive")
	}
	if s.ChunkDurationS <= 0 {
		return errors.New("chunk_duration_s must be positive")
	}
	if s.ScanStartPct < 0 || s.ScanEndPct > 100 || s.ScanStartPct >= s.ScanEndPct {
		return errors.New("scan_start_pct/scan_end_pct must satisfy 0 <= start < end <= 100")
	}
	if s.MinMatchPct < 0 || s.MinMatchPct > 100 {
		return errors.New("min_match_pct must be within [0, 100]")
	}
	if s.FirstStableMinChunks <= 0 {
		return errors.New("first_stable_min_chunks must be positive")
	}
	if s.ClusterEpsilonMs <= 0 {
		return errors.New("cluster_epsilon_ms must be positive")
	}
	if s.DriftR2Threshold < 0 || s.DriftR2Threshold > 1 {
		return errors.New("drift_r2_threshold must be within [0, 1]")
	}
	return nil
}

func validateMethod(m CorrelationMethod) error {
	switch m {
	case MethodGCCPHAT, MethodSCC, MethodSCOT, MethodWhitened:
		return nil
	default:
		return fmt.Errorf("invalid correlation_method %q (use gcc_phat|scc|scot|whitened)", m)
	}
}

func validateSelection(m SelectionMode) error {
	switch m {
	case SelectMostCommon, SelectClustered, SelectAverage, SelectFirstStable:
		return nil
	default:
		return fmt.Errorf("invalid delay_selection_mode %q (use most_common|clustered|average|first_stable)", m)
	}
}

func validateEngine(e CorrectionEngine) error {
	switch e {
	case EngineRubberband, EngineAresample, EngineAtempo:
		return nil
	default:
		return fmt.Errorf("invalid correction_engine %q (use rubberband|aresample|atempo)", e)
	}
}

func validateSnap(m SnapMode) error {
	switch m {
	case SnapOff, SnapPrevious, SnapNearest:
		return nil
	default:
		return fmt.Errorf("invalid snap_mode %q (use off|previous|nearest)", m)
	}
}

func validateFill(p FillPolicy) error {
	switch p {
	case FillSilence, FillContent:
		return nil
	default:
		return fmt.Errorf("invalid fill policy %q (use silence|content)", p)
	}
}

func validateBoundary(b BoundaryMode) error {
	switch b {
	case BoundaryStart, BoundaryMajority, BoundaryMidpoint:
		return nil
	default:
		return fmt.Errorf("invalid boundary mode %q (use start|majority|midpoint)", b)
	}
}

func validateSubtitleFrameMode(m SubtitleFrameMode) error {
	switch m {
	case FrameModeNone, FrameModeFloor, FrameModeMiddle:
		return nil
	default:
		return fmt.Errorf("invalid subtitle_frame_mode %q (use none|floor|middle)", m)
	}
}
