package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"spysignal/internal/logging"
)

func TestRedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "debug", "json")
	require.NoError(t, err)

	log.With(slog.String("passphrase", "hunter2")).Info("hello",
		slog.String("shared_key", "deadbeef"),
		slog.String("peer_id", "42"),
		slog.Group("identity", slog.String("private_jwk", "{...}"), slog.String("fingerprint", "abc")),
	)

	out := buf.String()
	for _, leaked := range []string{"hunter2", "deadbeef", "{...}"} {
		require.NotContains(t, out, leaked)
	}
	for _, kept := range []string{`"peer_id":"42"`, `"fingerprint":"abc"`, `[REDACTED]`} {
		require.Contains(t, out, kept)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "warn", "text")
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("loud")
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	_, err := logging.New(&bytes.Buffer{}, "chatty", "text")
	require.Error(t, err, "unknown level")
	_, err = logging.New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err, "unknown format")
}
