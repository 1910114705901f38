package drift

// Kind tags which variant a Diagnosis holds (spec.md §3's
// Uniform|Stepped|LinearDrift|PalDrift|InsufficientData union).
type Kind string

const (
	Uniform           Kind = "uniform"
	Stepped           Kind = "stepped"
	LinearDrift       Kind = "linear_drift"
	PalDrift          Kind = "pal_drift"
	InsufficientData  Kind = "insufficient_data"
)

// palTempoRatio is the fixed PAL speedup (24000/1001 fps content played at
// 25.0 fps), spec.md §4.6.
const palTempoRatio = (24000.0 / 1001.0) / 25.0

// AudioSegment is one EDL entry (spec.md §3): a non-overlapping, ordered
// span of the analyzed range with its own delay and local drift rate.
type AudioSegment struct {
	StartS          float64
	EndS            float64
	DelayMsRounded  int64
	DelayRaw        float64
	DriftRateMsPerS float64
}

// Diagnosis is the per-target-source classification result.
type Diagnosis struct {
	Kind Kind

	// Stepped.
	Segments []AudioSegment

	// LinearDrift / PalDrift.
	SlopeMsPerS float64
	RSquared    float64
	TempoRatio  float64

	// InsufficientData.
	Reason string
}
