package graph

import (
	"context"
	"sort"
	"sync"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
)

type edgeKey struct {
	source string
	typ    string
	target string
}

type memNode struct {
	node   domain.Node
	labels map[string]struct{}
}

// MemoryStore is an in-process Store with the same merge and match-miss
// semantics as the Neo4j store.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
	edges map[edgeKey]struct{}
	out   map[string][]edgeKey
	in    map[string][]edgeKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: map[string]*memNode{},
		edges: map[edgeKey]struct{}{},
		out:   map[string][]edgeKey{},
		in:    map[string][]edgeKey{},
	}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) UpsertNodes(ctx context.Context, kind labels.Label, nodes []domain.Node) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		mn, ok := s.nodes[n.ID]
		if !ok {
			mn = &memNode{labels: map[string]struct{}{EntityLabel: {}}}
			s.nodes[n.ID] = mn
		}
		if prev := mn.node.Kind; prev != "" && prev != kind.String() {
			delete(mn.labels, prev)
		}
		mn.node = domain.Node{ID: n.ID, Name: n.Name, Kind: kind.String()}
		mn.labels[kind.String()] = struct{}{}
	}
	return len(nodes), nil
}

func (s *MemoryStore) MergeEdges(ctx context.Context, relType labels.Label, edges []Endpoints) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := 0
	for _, e := range edges {
		if _, ok := s.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := s.nodes[e.Target]; !ok {
			continue
		}
		merged++
		k := edgeKey{source: e.Source, typ: relType.String(), target: e.Target}
		if _, exists := s.edges[k]; exists {
			continue
		}
		s.edges[k] = struct{}{}
		s.out[e.Source] = append(s.out[e.Source], k)
		s.in[e.Target] = append(s.in[e.Target], k)
	}
	return merged, nil
}

func (s *MemoryStore) Node(ctx context.Context, id string) (domain.Node, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Node{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	mn, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, false, nil
	}
	return mn.node, true, nil
}

func (s *MemoryStore) Expand(ctx context.Context, anchors []string, hop Hop) ([]Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(hop.Types) == 0 || len(anchors) == 0 {
		return nil, nil
	}
	types := make(map[string]struct{}, len(hop.Types))
	for _, t := range hop.Types {
		types[t.String()] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Relation
	for _, anchor := range anchors {
		adj := s.out[anchor]
		if hop.Direction == Inbound {
			adj = s.in[anchor]
		}
		for _, k := range adj {
			if _, ok := types[k.typ]; !ok {
				continue
			}
			otherID := k.target
			if hop.Direction == Inbound {
				otherID = k.source
			}
			other := s.nodes[otherID]
			if other == nil {
				continue
			}
			if hop.Kind != "" && other.node.Kind != hop.Kind {
				continue
			}
			out = append(out, Relation{Anchor: anchor, Type: k.typ, Node: other.node})
		}
	}
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *MemoryStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Labels returns the sorted structural labels attached to id.
func (s *MemoryStore) Labels(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mn, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(mn.labels))
	for l := range mn.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
