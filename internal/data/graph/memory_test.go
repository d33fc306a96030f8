package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
)

func mustKind(t *testing.T, raw string) labels.Label {
	t.Helper()
	l, err := labels.NodeKind(raw)
	require.NoError(t, err)
	return l
}

func mustRel(t *testing.T, raw string) labels.Label {
	t.Helper()
	l, err := labels.RelationType(raw)
	require.NoError(t, err)
	return l
}

func TestMemoryStoreUpsertIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.UpsertNodes(ctx, mustKind(t, "Gene"), []domain.Node{{ID: "Gene::1", Name: "old"}})
	require.NoError(t, err)
	_, err = s.UpsertNodes(ctx, mustKind(t, "Gene"), []domain.Node{{ID: "Gene::1", Name: "new"}})
	require.NoError(t, err)

	n, ok, err := s.Node(ctx, "Gene::1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", n.Name)
	assert.Equal(t, "Gene", n.Kind)
	assert.Equal(t, []string{"Entity", "Gene"}, s.Labels("Gene::1"))
	assert.Equal(t, 1, s.NodeCount())
}

func TestMemoryStoreReloadWithNewKindReplacesLabel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.UpsertNodes(ctx, mustKind(t, "Gene"), []domain.Node{{ID: "X::1", Name: "x"}})
	require.NoError(t, err)
	_, err = s.UpsertNodes(ctx, mustKind(t, "Compound"), []domain.Node{{ID: "X::1", Name: "x2"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Compound", "Entity"}, s.Labels("X::1"))
	n, _, err := s.Node(ctx, "X::1")
	require.NoError(t, err)
	assert.Equal(t, "Compound", n.Kind)
	assert.Equal(t, "x2", n.Name)
}

func TestMemoryStoreMergeSkipsMissingEndpoints(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.UpsertNodes(ctx, mustKind(t, "Compound"), []domain.Node{{ID: "C::1", Name: "c1"}})
	require.NoError(t, err)
	_, err = s.UpsertNodes(ctx, mustKind(t, "Disease"), []domain.Node{{ID: "D::1", Name: "d1"}})
	require.NoError(t, err)

	merged, err := s.MergeEdges(ctx, mustRel(t, "CtD"), []Endpoints{
		{Source: "C::1", Target: "D::1"},
		{Source: "C::1", Target: "D::missing"},
		{Source: "C::1", Target: "D::1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, merged)
	assert.Equal(t, 1, s.EdgeCount())
	assert.Equal(t, 2, s.NodeCount(), "missing endpoint must not be created")
}

func TestMemoryStoreExpand(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.UpsertNodes(ctx, mustKind(t, "Compound"), []domain.Node{{ID: "C::1", Name: "c1"}, {ID: "C::2", Name: "c2"}})
	_, _ = s.UpsertNodes(ctx, mustKind(t, "Disease"), []domain.Node{{ID: "D::1", Name: "d1"}})
	_, _ = s.MergeEdges(ctx, mustRel(t, "CtD"), []Endpoints{{Source: "C::1", Target: "D::1"}})
	_, _ = s.MergeEdges(ctx, mustRel(t, "CpD"), []Endpoints{{Source: "C::2", Target: "D::1"}})

	rels, err := s.Expand(ctx, []string{"D::1"}, Hop{Types: []labels.Label{mustRel(t, "CtD")}, Direction: Inbound, Kind: "Compound"})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "D::1", rels[0].Anchor)
	assert.Equal(t, "CtD", rels[0].Type)
	assert.Equal(t, "c1", rels[0].Node.Name)

	rels, err = s.Expand(ctx, []string{"D::1"}, Hop{Types: []labels.Label{mustRel(t, "CtD")}, Direction: Outbound})
	require.NoError(t, err)
	assert.Empty(t, rels)

	rels, err = s.Expand(ctx, []string{"D::1"}, Hop{Types: []labels.Label{mustRel(t, "CtD"), mustRel(t, "CpD")}, Direction: Inbound, Kind: "Gene"})
	require.NoError(t, err)
	assert.Empty(t, rels, "kind filter applies to the far endpoint")
}
