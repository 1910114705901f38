// Package decode invokes an external decoder to produce canonical PCM
// samples for the correlator: 48 kHz, mono, 32-bit float, little-endian.
// A codec can hand back a sample count that isn't a whole multiple of the
// sample width; the decoder trims to the largest aligned prefix rather
// than error or panic on the leftover bytes.
package decode

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"

	"github.com/backmassage/syncmux/internal/logging"
)

const (
	// SampleRate is the canonical rate every decoded buffer is resampled to.
	SampleRate = 48000
	// bytesPerSample is sizeof(float32).
	bytesPerSample = 4
)

// Engine selects the decoder backend. The SoX resampler variant produces
// higher-quality results at a CPU cost; Default uses ffmpeg's built-in
// swresample.
type Engine string

const (
	EngineDefault Engine = "default"
	EngineSoX     Engine = "soxr"
)

// Decoder wraps the external decode invocation.
type Decoder struct {
	log    *logging.Logger
	engine Engine
}

// New returns a Decoder using the given engine. A nil logger disables
// alignment-trim logging.
func New(log *logging.Logger, engine Engine) *Decoder {
	if engine == "" {
		engine = EngineDefault
	}
	return &Decoder{log: log, engine: engine}
}

// TrackSelector identifies which stream within path to decode. A zero
// value decodes the first audio stream.
type TrackSelector struct {
	StreamIndex int // ffmpeg "0:a:<n>" style selector; -1 means unset.
}

// Decode invokes ffmpeg to extract, resample, and downmix the selected
// audio stream to the canonical format, returning the decoded samples.
// The returned buffer is trimmed to the largest prefix whose length is a
// multiple of bytesPerSample; any trimmed byte count is logged, not
// silently discarded (spec.md §4.3).
func (d *Decoder) Decode(ctx context.Context, path string, sel TrackSelector) ([]float32, error) {
	args := []string{"-v", "error", "-i", path}
	if sel.StreamIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", sel.StreamIndex))
	} else {
		args = append(args, "-map", "0:a:0")
	}

	resampler := "swr"
	if d.engine == EngineSoX {
		resampler = "soxr"
	}

	args = append(args,
		"-af", "aresample=resampler="+resampler,
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", "1",
		"-f", "f32le",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	return d.bytesToSamples(raw, path), nil
}

// bytesToSamples converts a raw f32le byte buffer to []float32, trimming
// any unaligned tail.
func (d *Decoder) bytesToSamples(raw []byte, path string) []float32 {
	aligned := len(raw) - len(raw)%bytesPerSample
	if trimmed := len(raw) - aligned; trimmed > 0 && d.log != nil {
		d.log.Warn("decode %s: trimmed %d unaligned trailing byte(s)", path, trimmed)
	}
	raw = raw[:aligned]

	samples := make([]float32, aligned/bytesPerSample)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*bytesPerSample : (i+1)*bytesPerSample])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}
