package graph

import (
	"context"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
)

// EntityLabel is attached to every node next to its kind label so id lookups
// can use one uniqueness constraint.
const EntityLabel = "Entity"

type Direction int

const (
	// Outbound follows (anchor)-[r]->(other).
	Outbound Direction = iota
	// Inbound follows (anchor)<-[r]-(other).
	Inbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Hop describes a one-step expansion. Kind, when set, filters the far
// endpoint on its kind attribute.
type Hop struct {
	Types     []labels.Label
	Direction Direction
	Kind      string
}

// Relation is one expansion result: the anchor id the hop started from, the
// relation type traversed and the node on the other end.
type Relation struct {
	Anchor string
	Type   string
	Node   domain.Node
}

// Endpoints identifies a relation to merge by its source and target ids.
type Endpoints struct {
	Source string
	Target string
}

type Reader interface {
	// Node returns the entity with id; ok is false when it does not exist.
	Node(ctx context.Context, id string) (node domain.Node, ok bool, err error)
	// Expand follows hop from every anchor id.
	Expand(ctx context.Context, anchors []string, hop Hop) ([]Relation, error)
}

type Writer interface {
	// EnsureSchema installs the id constraint; failures other than
	// connectivity are logged and ignored.
	EnsureSchema(ctx context.Context) error
	// UpsertNodes merges nodes by id, sets name/kind and attaches kind as a label.
	UpsertNodes(ctx context.Context, kind labels.Label, nodes []domain.Node) (int, error)
	// MergeEdges merges relType between existing endpoints and returns how many
	// rows matched both endpoints. Rows with a missing endpoint are skipped.
	MergeEdges(ctx context.Context, relType labels.Label, edges []Endpoints) (int, error)
}

type Store interface {
	Reader
	Writer
	Close(ctx context.Context) error
}
