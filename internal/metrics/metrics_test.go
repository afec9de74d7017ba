package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"spysignal/internal/metrics"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	c.KeyDerivation(metrics.DerivationDerived)
	c.KeyDerivation(metrics.DerivationCacheHit)
	c.KeyDerivation(metrics.DerivationCacheHit)
	c.Sealed()
	c.Opened(metrics.OpenAuthentication)
	c.HTTPRequest("POST /api/messages/", 200)

	n, err := testutil.GatherAndCount(reg, "spysignal_key_derivations_total")
	require.NoError(t, err)
	require.Equal(t, 2, n, "one series per result label")

	n, err = testutil.GatherAndCount(reg, "spysignal_messages_opened_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector
	c.KeyDerivation(metrics.DerivationDerived)
	c.Sealed()
	c.Opened(metrics.OpenOK)
	c.HTTPRequest("GET /health", 200)
	c.LiveSubscribers(1)
}
