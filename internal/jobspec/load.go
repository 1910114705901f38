package jobspec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/syncmux/internal/config"
)

// iso2to3 normalizes the handful of 2-letter language codes a GUI front-end
// commonly emits into the 3-letter lowercase ISO codes spec.md §6 requires.
// Not exhaustive — covers the common audio/subtitle languages this corpus's
// media libraries are likely to carry; anything else passes through
// lowercased but otherwise unchanged (mkvmerge itself will reject a code it
// doesn't recognize).
var iso2to3 = map[string]string{
	"en": "eng", "ja": "jpn", "fr": "fre", "de": "ger", "es": "spa",
	"it": "ita", "pt": "por", "ru": "rus", "ko": "kor", "zh": "chi",
	"nl": "dut", "sv": "swe", "no": "nor", "da": "dan", "fi": "fin",
	"pl": "pol", "ar": "ara", "he": "heb", "tr": "tur", "cs": "cze",
}

// Load reads and validates a JobSpec from a YAML file (spec.md §6's
// "serialized JobSpec"). Language codes on every track override are
// normalized from 2-letter to 3-letter ISO at ingest, per spec.md §6.
func Load(path string) (JobSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobSpec{}, fmt.Errorf("read jobspec %q: %w", path, err)
	}

	spec := JobSpec{Config: config.Default()}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return JobSpec{}, fmt.Errorf("parse jobspec %q: %w", path, err)
	}

	normalizeLanguages(&spec)

	if err := spec.Validate(); err != nil {
		return JobSpec{}, fmt.Errorf("invalid jobspec %q: %w", path, err)
	}
	return spec, nil
}

func normalizeLanguages(spec *JobSpec) {
	for si := range spec.Sources {
		for ti := range spec.Sources[si].Tracks {
			opts := &spec.Sources[si].Tracks[ti].Options
			if opts.LangOverride == "" {
				continue
			}
			lower := strings.ToLower(opts.LangOverride)
			if len(lower) == 2 {
				if code, ok := iso2to3[lower]; ok {
					lower = code
				}
			}
			opts.LangOverride = lower
		}
	}
}

// Validate checks the structural invariants spec.md §3 requires of a
// JobSpec before it enters the pipeline: at least one source, the first
// source is the timeline reference, every source has a path and key, and
// keys are unique.
func (j JobSpec) Validate() error {
	if len(j.Sources) == 0 {
		return fmt.Errorf("jobspec %q: at least one source required", j.Name)
	}
	if j.OutputPath == "" {
		return fmt.Errorf("jobspec %q: output_path required", j.Name)
	}
	seen := make(map[SourceKey]bool, len(j.Sources))
	for _, s := range j.Sources {
		if s.Key == "" {
			return fmt.Errorf("jobspec %q: source with empty key", j.Name)
		}
		if s.Path == "" {
			return fmt.Errorf("jobspec %q: source %q has no path", j.Name, s.Key)
		}
		if seen[s.Key] {
			return fmt.Errorf("jobspec %q: duplicate source key %q", j.Name, s.Key)
		}
		seen[s.Key] = true
	}
	if err := j.Config.Validate(); err != nil {
		return fmt.Errorf("jobspec %q: %w", j.Name, err)
	}
	return nil
}

// LoadDir reads every *.yaml/*.yml file in dir as a JobSpec, sorted by
// filename for deterministic batch ordering.
func LoadDir(dir string) ([]JobSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read jobs dir %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") || strings.HasSuffix(n, ".yml") {
			names = append(names, n)
		}
	}

	var specs []JobSpec
	for _, n := range sortedStrings(names) {
		spec, err := Load(dir + string(os.PathSeparator) + n)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
