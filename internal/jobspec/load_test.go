package jobspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: test-job
sources:
  - key: ref
    path: /media/ref.mkv
    tracks:
      - track_id: 0
        type: video
  - key: sec
    path: /media/secondary.mkv
    tracks:
      - track_id: 1
        type: audio
        options:
          language: en
output_path: /media/out.mkv
`

func writeJobSpec(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	dir := t.TempDir()
	path := writeJobSpec(t, dir, "job.yaml", minimalYAML)

	spec, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test-job", spec.Name)
	require.Len(t, spec.Sources, 2)
	require.Equal(t, SourceKey("ref"), spec.Reference().Key)

	// Config defaults survive since the YAML doesn't mention "config".
	require.Equal(t, 10, spec.Config.ChunkCount)
	require.Equal(t, 15.0, spec.Config.ChunkDurationS)

	// 2-letter "en" normalized to 3-letter "eng".
	require.Equal(t, "eng", spec.Sources[1].Tracks[0].Options.LangOverride)
}

func TestLoad_MissingOutputPath(t *testing.T) {
	dir := t.TempDir()
	path := writeJobSpec(t, dir, "bad.yaml", `
name: bad
sources:
  - key: ref
    path: /media/ref.mkv
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_DuplicateSourceKey(t *testing.T) {
	dir := t.TempDir()
	path := writeJobSpec(t, dir, "dup.yaml", `
name: dup
sources:
  - key: ref
    path: /a.mkv
  - key: ref
    path: /b.mkv
output_path: /out.mkv
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDir_SortedDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeJobSpec(t, dir, "b.yaml", minimalYAML)
	writeJobSpec(t, dir, "a.yaml", minimalYAML)

	specs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, specs, 2)
}
