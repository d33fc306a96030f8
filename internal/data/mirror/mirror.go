// Package mirror keeps a key-value copy of node attributes keyed by node id.
// Writes are independent of the graph store; re-running a load converges both.
package mirror

import (
	"context"

	"github.com/yungbote/hetiograph/internal/domain"
)

type Store interface {
	// UpsertNodes replaces the document stored for every record id.
	UpsertNodes(ctx context.Context, nodes []domain.NodeRecord) (int, error)
	Name() string
	Close() error
}

// Nop discards writes; used when no mirror backend is configured. It
// reports zero documents written.
type Nop struct{}

func (Nop) UpsertNodes(ctx context.Context, _ []domain.NodeRecord) (int, error) {
	return 0, ctx.Err()
}
func (Nop) Name() string { return "none" }
func (Nop) Close() error { return nil }

// dedupeLastWins keeps the last record for every id, preserving first-seen order.
func dedupeLastWins(nodes []domain.NodeRecord) []domain.NodeRecord {
	idx := make(map[string]int, len(nodes))
	out := make([]domain.NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		if i, ok := idx[n.ID]; ok {
			out[i] = n
			continue
		}
		idx[n.ID] = len(out)
		out = append(out, n)
	}
	return out
}
