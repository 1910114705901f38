package decode

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32bytes(vals ...float32) []byte {
	buf := make([]byte, len(vals)*bytesPerSample)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample:], math.Float32bits(v))
	}
	return buf
}

func TestBytesToSamples_Aligned(t *testing.T) {
	d := New(nil, EngineDefault)
	raw := f32bytes(0.5, -0.25, 1.0)
	got := d.bytesToSamples(raw, "test.mkv")
	want := []float32{0.5, -0.25, 1.0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBytesToSamples_TrimsUnalignedTail(t *testing.T) {
	d := New(nil, EngineDefault)
	raw := append(f32bytes(1.0, 2.0), 0xAB, 0xCD, 0xEF)
	got := d.bytesToSamples(raw, "test.mkv")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (trailing 3 bytes should be dropped)", len(got))
	}
	if got[0] != 1.0 || got[1] != 2.0 {
		t.Errorf("got = %v", got)
	}
}

func TestNew_DefaultsEngine(t *testing.T) {
	d := New(nil, "")
	if d.engine != EngineDefault {
		t.Errorf("engine = %q, want %q", d.engine, EngineDefault)
	}
}
