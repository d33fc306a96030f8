package mirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/domain"
)

func TestNopWritesNothing(t *testing.T) {
	n, err := Nop{}.UpsertNodes(context.Background(), []domain.NodeRecord{{ID: "Gene::1"}, {ID: "Gene::2"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "none", Nop{}.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Nop{}.UpsertNodes(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
