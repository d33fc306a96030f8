package mirror

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

func TestRedisStoreUpsertReplaces(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, KeyPrefix: "hetio-test:" + uuid.NewString() + ":"}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.UpsertNodes(ctx, []domain.NodeRecord{{ID: "Gene::1", Name: "A1BG", Kind: "Gene", Attrs: map[string]string{"x": "1"}}})
	require.NoError(t, err)
	_, err = s.UpsertNodes(ctx, []domain.NodeRecord{{ID: "Gene::1", Name: "A1BG", Kind: "Gene"}})
	require.NoError(t, err)

	m, err := s.Get(ctx, "Gene::1")
	require.NoError(t, err)
	assert.Equal(t, "A1BG", m["name"])
	assert.Equal(t, "{}", m["attrs"])

	_ = s.rdb.Del(ctx, s.Key("Gene::1")).Err()
}
