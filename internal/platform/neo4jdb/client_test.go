package neo4jdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

func TestWithDefaults(t *testing.T) {
	got := Config{URI: " bolt://db:7687 ", User: " ", FetchSize: -1, Timeout: 2 * time.Second}.withDefaults()
	assert.Equal(t, "bolt://db:7687", got.URI)
	assert.Equal(t, "neo4j", got.User)
	assert.Equal(t, 2*time.Second, got.Timeout)
	assert.Equal(t, 50, got.MaxPoolSize)
	assert.Equal(t, 1000, got.FetchSize)
	assert.Equal(t, 30*time.Second, got.RetryTime)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://cluster:7687")
	t.Setenv("NEO4J_DATABASE", "hetionet")
	t.Setenv("NEO4J_TIMEOUT_SECONDS", "5")
	t.Setenv("NEO4J_FETCH_SIZE", "250")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "neo4j://cluster:7687", cfg.URI)
	assert.Equal(t, "hetionet", cfg.Database)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 250, cfg.FetchSize)
}

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background(), Config{URI: "  "}, logger.Nop())
	require.ErrorIs(t, err, perrors.ErrInvalidArgument)
}

func TestPingClosedClient(t *testing.T) {
	var c *Client
	require.ErrorIs(t, c.Ping(context.Background()), perrors.ErrStoreConnection)
	assert.NoError(t, c.Close(context.Background()))
}
