package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubMasksSensitiveValues(t *testing.T) {
	l := &Logger{redact: true}
	got := l.scrub([]any{
		"neo4j_password", "pw",
		"uri", "bolt://neo4j:pw@db:7687",
		"batch", 3,
		"dangling",
	})
	assert.Equal(t, []any{
		"neo4j_password", "[REDACTED]",
		"uri", "bolt://***@db:7687",
		"batch", 3,
		"dangling",
	}, got)
}

func TestScrubDisabled(t *testing.T) {
	l := &Logger{}
	kv := []any{"mirror_dsn", "postgres://u:p@h/db"}
	assert.Equal(t, kv, l.scrub(kv))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Mode: "production", Level: "loud"})
	require.Error(t, err)

	l, err := New(Config{Mode: "development"})
	require.NoError(t, err)
	l.Named("Loader").Info("ready")
}
