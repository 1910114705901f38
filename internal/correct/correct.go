package correct

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/backmassage/syncmux/internal/config"
	"github.com/backmassage/syncmux/internal/decode"
	"github.com/backmassage/syncmux/internal/drift"
	"github.com/backmassage/syncmux/internal/runner"
)

// Result is the outcome of a correction pass.
type Result struct {
	OutputPath  string
	IsCorrected bool
}

// Corrector applies drift.Diagnosis results to decoded audio, producing a
// corrected FLAC file when one is warranted. Every external tool it invokes
// goes through the shared subprocess runner (internal/runner).
type Corrector struct {
	run *runner.Runner
}

// New returns a Corrector that invokes external tools via r.
func New(r *runner.Runner) *Corrector {
	return &Corrector{run: r}
}

// Correct produces outputPath when diagnosis warrants it and
// cfg.CorrectionEnabled is set. A Uniform diagnosis, or correction disabled,
// is a no-op: Result.IsCorrected is false and the caller keeps the original
// track with its container delay intact (spec.md §4.7).
func (c *Corrector) Correct(ctx context.Context, samples []float32, sourcePath, outputPath string, d drift.Diagnosis, cfg config.Snapshot) (Result, error) {
	if !cfg.CorrectionEnabled || d.Kind == drift.Uniform || d.Kind == drift.InsufficientData {
		return Result{}, nil
	}

	switch d.Kind {
	case drift.Stepped:
		return c.correctStepped(ctx, samples, outputPath, d, cfg)
	case drift.LinearDrift, drift.PalDrift:
		return c.correctTempo(ctx, sourcePath, outputPath, d, cfg)
	default:
		return Result{}, nil
	}
}

// correctStepped reassembles the EDL in-process (silence-padding or
// trimming each segment's start to realize its delay), writes the result
// to an intermediate WAV via go-audio/wav, then transcodes to FLAC
// through the shared runner.
func (c *Corrector) correctStepped(ctx context.Context, samples []float32, outputPath string, d drift.Diagnosis, cfg config.Snapshot) (Result, error) {
	entries := BuildEDL(samples, decode.SampleRate, d.Segments, cfg)
	reassembled := applyEDL(samples, decode.SampleRate, entries)

	wavPath := outputPath + ".tmp.wav"
	if err := writeWAV(wavPath, reassembled, decode.SampleRate); err != nil {
		return Result{}, fmt.Errorf("write intermediate wav: %w", err)
	}
	defer os.Remove(wavPath)

	if _, err := c.run.Run(ctx, "ffmpeg", []string{
		"-y", "-v", "error", "-i", wavPath, "-c:a", "flac", outputPath,
	}, runner.Options{ErrorTailLines: cfg.ErrorTailLines}); err != nil {
		return Result{}, fmt.Errorf("encode corrected flac: %w", err)
	}

	return Result{OutputPath: outputPath, IsCorrected: true}, nil
}

// correctTempo invokes the configured external resampler against the
// original (undecoded) source, at the tempo ratio spec.md §4.7 specifies:
// 1 - slope_ms_per_s/1000 for LinearDrift, or the fixed PAL ratio.
func (c *Corrector) correctTempo(ctx context.Context, sourcePath, outputPath string, d drift.Diagnosis, cfg config.Snapshot) (Result, error) {
	ratio := 1 - d.SlopeMsPerS/1000
	if d.Kind == drift.PalDrift {
		ratio = d.TempoRatio
	}

	args, err := tempoArgs(cfg.CorrectionEngine, sourcePath, outputPath, ratio)
	if err != nil {
		return Result{}, err
	}

	if _, err := c.run.Run(ctx, args[0], args[1:], runner.Options{ErrorTailLines: cfg.ErrorTailLines}); err != nil {
		return Result{}, fmt.Errorf("tempo correction: %w", err)
	}
	return Result{OutputPath: outputPath, IsCorrected: true}, nil
}

// tempoArgs builds the tool invocation for the configured resampler
// engine. rubberband is the default per spec.md §4.7; ffmpeg's aresample
// and atempo filters are configured fallbacks.
func tempoArgs(engine config.CorrectionEngine, in, out string, ratio float64) ([]string, error) {
	switch engine {
	case config.EngineRubberband:
		return []string{"rubberband", "--tempo", strconv.FormatFloat(ratio, 'f', -1, 64), in, out}, nil
	case config.EngineAresample:
		return []string{"ffmpeg", "-y", "-v", "error", "-i", in,
			"-af", fmt.Sprintf("atempo=%s,aresample=resampler=soxr", strconv.FormatFloat(ratio, 'f', -1, 64)),
			"-c:a", "flac", out}, nil
	case config.EngineAtempo:
		return []string{"ffmpeg", "-y", "-v", "error", "-i", in,
			"-af", fmt.Sprintf("atempo=%s", strconv.FormatFloat(ratio, 'f', -1, 64)),
			"-c:a", "flac", out}, nil
	default:
		return nil, fmt.Errorf("unknown correction engine %q", engine)
	}
}

// applyEDL concatenates each entry's source span, silence-padding (positive
// delay) or trimming (negative delay) its leading edge to realize
// entry.DelayMs relative to the previous entry's output.
func applyEDL(samples []float32, sampleRate int, entries []Entry) []float32 {
	var out []float32
	for _, e := range entries {
		shift := delaySampleShift(e.DelayMs, sampleRate)
		span := samples[e.StartIdx:e.EndIdx]

		switch {
		case shift > 0:
			out = append(out, make([]float32, shift)...)
			out = append(out, span...)
		case shift < 0:
			trim := -shift
			if trim > len(span) {
				trim = len(span)
			}
			out = append(out, span[trim:]...)
		default:
			out = append(out, span...)
		}
	}
	return out
}

// writeWAV encodes mono float32 samples as 16-bit PCM.
func writeWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	ints := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		ints[i] = v
	}
	buf := &audio.IntBuffer{
		Data:   ints,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
