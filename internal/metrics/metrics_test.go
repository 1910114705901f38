package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveStep(t *testing.T) {
	c := New()
	c.ObserveStep("analyze", 50*time.Millisecond)
	c.JobsTotal.WithLabelValues("succeeded").Inc()
	c.ChunksCorrelated.WithLabelValues("true").Add(10)
	c.CorrectionsTotal.WithLabelValues("stepped").Inc()
	// No assertion beyond "doesn't panic" — the registry wiring is what
	// this test guards; value correctness is prometheus's own contract.
}

func TestCollector_ServeEmptyAddrIsNoop(t *testing.T) {
	c := New()
	srv, err := c.Serve("")
	require.NoError(t, err)
	require.Nil(t, srv)
}

func TestCollector_ServeAndShutdown(t *testing.T) {
	c := New()
	srv, err := c.Serve("127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, srv)

	defer func() {
		require.NoError(t, srv.Shutdown(context.Background()))
	}()
}
