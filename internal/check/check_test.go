package check

import "testing"

type fakeLog struct {
	infos, successes, warns, errors []string
}

func (f *fakeLog) Info(format string, args ...interface{})    { f.infos = append(f.infos, format) }
func (f *fakeLog) Success(format string, args ...interface{}) { f.successes = append(f.successes, format) }
func (f *fakeLog) Warn(format string, args ...interface{})    { f.warns = append(f.warns, format) }
func (f *fakeLog) Error(format string, args ...interface{})   { f.errors = append(f.errors, format) }

func TestRun_DoesNotPanic(t *testing.T) {
	log := &fakeLog{}
	Run(log)
	if len(log.infos) == 0 {
		t.Fatal("expected at least one info line")
	}
}

func TestRequireCorrectionEngine_NonRubberbandAlwaysOK(t *testing.T) {
	if err := RequireCorrectionEngine("aresample"); err != nil {
		t.Fatalf("aresample should never require an external binary: %v", err)
	}
	if err := RequireCorrectionEngine("atempo"); err != nil {
		t.Fatalf("atempo should never require an external binary: %v", err)
	}
}

func TestFirstLine(t *testing.T) {
	got := firstLine([]byte("mkvmerge v82.0\nbuilt with libebml\n"))
	if got != "mkvmerge v82.0" {
		t.Fatalf("firstLine() = %q, want %q", got, "mkvmerge v82.0")
	}
}
