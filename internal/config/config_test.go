package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSnapshotValidates(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
}

func TestValidateRejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"method", func(s *Snapshot) { s.CorrelationMethod = "fft-magic" }},
		{"selection", func(s *Snapshot) { s.SelectionMode = "vibes" }},
		{"engine", func(s *Snapshot) { s.CorrectionEngine = "soxr" }},
		{"snap", func(s *Snapshot) { s.SnapMode = "always" }},
		{"fill", func(s *Snapshot) { s.FillPolicy = "linear" }},
		{"boundary", func(s *Snapshot) { s.BoundaryMode = "nearest" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidateScanRange(t *testing.T) {
	s := Default()
	s.ScanStartPct = 95
	s.ScanEndPct = 5
	assert.Error(t, s.Validate())
}

func TestValidateChunkCount(t *testing.T) {
	s := Default()
	s.ChunkCount = 0
	assert.Error(t, s.Validate())
}

func TestCLIValidate(t *testing.T) {
	c := DefaultCLI()
	c.JobFile = "job.yaml"
	require.NoError(t, c.Validate())

	c2 := DefaultCLI()
	assert.Error(t, c2.Validate(), "no job source should fail")

	c3 := DefaultCLI()
	c3.JobFile = "job.yaml"
	c3.JobsDir = "jobs/"
	assert.Error(t, c3.Validate(), "both sources should fail")
}
