package pipeline

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards against goroutine leaks from Orchestrator.Run's
// cancellation paths and the metrics HTTP server's background Serve
// goroutine (spec.md §5's cancellation/suspension-point discipline is
// only meaningful if nothing outlives the job it belonged to).
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
