package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
	"github.com/yungbote/hetiograph/internal/platform/neo4jdb"
)

const (
	storeName = "neo4j"

	// Anchors per read round-trip in Expand.
	defaultReadChunk = 1000
)

var entity = "`" + EntityLabel + "`"

// Relation types in reads are parameters ($types); only the arrow direction
// is structural and it comes from a fixed pair of templates.
var (
	expandOutbound = `
UNWIND $anchors AS anchor
MATCH (a:` + entity + ` {id: anchor})-[r]->(b)
WHERE type(r) IN $types AND ($kind = '' OR b.kind = $kind)
RETURN anchor, type(r) AS type, b.id AS id, b.name AS name, b.kind AS kind
`
	expandInbound = `
UNWIND $anchors AS anchor
MATCH (a:` + entity + ` {id: anchor})<-[r]-(b)
WHERE type(r) IN $types AND ($kind = '' OR b.kind = $kind)
RETURN anchor, type(r) AS type, b.id AS id, b.name AS name, b.kind AS kind
`
)

type Neo4jStore struct {
	client    *neo4jdb.Client
	log       *logger.Logger
	readChunk int
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) *Neo4jStore {
	return &Neo4jStore{
		client:    client,
		log:       log.With("store", "Neo4jGraph"),
		readChunk: defaultReadChunk,
	}
}

func (s *Neo4jStore) ready(op string) error {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return perrors.StoreConnection(op, storeName, errors.New("driver not initialized"))
	}
	return nil
}

func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	const op = "neo4j ensure schema"
	if err := s.ready(op); err != nil {
		return err
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (n:` + entity + `) REQUIRE n.id IS UNIQUE`,
		`CREATE INDEX entity_kind_idx IF NOT EXISTS FOR (n:` + entity + `) ON (n.kind)`,
	}
	for _, q := range stmts {
		res, err := session.Run(ctx, q, nil)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err == nil {
			continue
		}
		if classified := classify(op, err); errors.Is(classified, perrors.ErrStoreConnection) {
			return classified
		}
		s.log.Warn("neo4j schema init failed (continuing)", "error", err)
	}
	return nil
}

func (s *Neo4jStore) UpsertNodes(ctx context.Context, kind labels.Label, nodes []domain.Node) (int, error) {
	const op = "neo4j upsert nodes"
	if err := s.ready(op); err != nil {
		return 0, err
	}
	if kind.IsZero() {
		return 0, perrors.InvalidLabel("")
	}
	if len(nodes) == 0 {
		return 0, nil
	}
	rows := make([]map[string]any, 0, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, map[string]any{"id": n.ID, "name": n.Name})
		ids = append(ids, n.ID)
	}

	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, staleKinds, map[string]any{"ids": ids, "kind": kind.String()})
		if err != nil {
			return nil, err
		}
		var stale []string
		for res.Next(ctx) {
			stale = append(stale, recordString(res.Record(), "kind"))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		for _, q := range s.relabelStatements(stale) {
			res, err := tx.Run(ctx, q.cypher, map[string]any{"ids": ids, "old": q.old})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		res, err = tx.Run(ctx, mergeNodes(kind), map[string]any{"rows": rows, "kind": kind.String()})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return recordInt(rec, "written"), nil
	})
	if err != nil {
		return 0, perrors.AddContext(classify(op, err), perrors.CtxKind, kind.String())
	}
	written, _ := out.(int)
	return written, nil
}

// staleKinds lists kinds of existing nodes in the batch that differ from
// the kind being written.
var staleKinds = `
UNWIND $ids AS id
MATCH (n:` + entity + ` {id: id})
WHERE n.kind IS NOT NULL AND n.kind <> $kind
RETURN DISTINCT n.kind AS kind
`

type relabel struct {
	old    string
	cypher string
}

// relabelStatements builds one REMOVE per previous kind. Stored kinds were
// validated on write; anything that no longer validates is left in place.
func (s *Neo4jStore) relabelStatements(stale []string) []relabel {
	out := make([]relabel, 0, len(stale))
	for _, raw := range stale {
		old, err := labels.NodeKind(raw)
		if err != nil {
			s.log.Warn("stored kind is not a valid label, leaving it", "kind", raw)
			continue
		}
		out = append(out, relabel{old: old.String(), cypher: `
UNWIND $ids AS id
MATCH (n:` + entity + ` {id: id})
WHERE n.kind = $old
REMOVE n:` + old.Quoted() + `
`})
	}
	return out
}

func mergeNodes(kind labels.Label) string {
	return `
UNWIND $rows AS row
MERGE (n:` + entity + ` {id: row.id})
SET n.name = row.name, n.kind = $kind, n:` + kind.Quoted() + `
RETURN count(n) AS written
`
}

func (s *Neo4jStore) MergeEdges(ctx context.Context, relType labels.Label, edges []Endpoints) (int, error) {
	const op = "neo4j merge edges"
	if err := s.ready(op); err != nil {
		return 0, err
	}
	if relType.IsZero() {
		return 0, perrors.InvalidLabel("")
	}
	if len(edges) == 0 {
		return 0, nil
	}
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, map[string]any{"source": e.Source, "target": e.Target})
	}

	cypher := `
UNWIND $rows AS row
MATCH (s:` + entity + ` {id: row.source})
MATCH (t:` + entity + ` {id: row.target})
MERGE (s)-[r:` + relType.Quoted() + `]->(t)
RETURN count(r) AS merged
`
	merged, err := s.writeCount(ctx, cypher, map[string]any{"rows": rows}, "merged")
	if err != nil {
		return 0, perrors.AddContext(classify(op, err), perrors.CtxRelation, relType.String())
	}
	return merged, nil
}

func (s *Neo4jStore) writeCount(ctx context.Context, cypher string, params map[string]any, key string) (int, error) {
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return recordInt(rec, key), nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := out.(int)
	return n, nil
}

func (s *Neo4jStore) Node(ctx context.Context, id string) (domain.Node, bool, error) {
	const op = "neo4j get node"
	if err := s.ready(op); err != nil {
		return domain.Node{}, false, err
	}
	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (n:`+entity+` {id: $id})
RETURN n.id AS id, n.name AS name, n.kind AS kind
LIMIT 1
`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		return &domain.Node{
			ID:   recordString(rec, "id"),
			Name: recordString(rec, "name"),
			Kind: recordString(rec, "kind"),
		}, nil
	})
	if err != nil {
		return domain.Node{}, false, classify(op, err)
	}
	n, _ := out.(*domain.Node)
	if n == nil {
		return domain.Node{}, false, nil
	}
	return *n, true, nil
}

func (s *Neo4jStore) Expand(ctx context.Context, anchors []string, hop Hop) ([]Relation, error) {
	const op = "neo4j expand"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	if len(anchors) == 0 || len(hop.Types) == 0 {
		return nil, nil
	}
	cypher := expandOutbound
	if hop.Direction == Inbound {
		cypher = expandInbound
	}
	types := labels.Names(hop.Types)

	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	var out []Relation
	for start := 0; start < len(anchors); start += s.readChunk {
		end := start + s.readChunk
		if end > len(anchors) {
			end = len(anchors)
		}
		params := map[string]any{
			"anchors": anchors[start:end],
			"types":   types,
			"kind":    hop.Kind,
		}
		rels, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			var chunk []Relation
			for res.Next(ctx) {
				rec := res.Record()
				chunk = append(chunk, Relation{
					Anchor: recordString(rec, "anchor"),
					Type:   recordString(rec, "type"),
					Node: domain.Node{
						ID:   recordString(rec, "id"),
						Name: recordString(rec, "name"),
						Kind: recordString(rec, "kind"),
					},
				})
			}
			return chunk, res.Err()
		})
		if err != nil {
			return nil, perrors.AddContext(classify(op, err), "direction", hop.Direction.String())
		}
		chunk, _ := rels.([]Relation)
		out = append(out, chunk...)
	}
	return out, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close(ctx)
}

// classify maps driver errors onto the typed failure kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *perrors.Error
	if errors.As(err, &typed) {
		return err
	}
	if isConnectionError(err) {
		return perrors.StoreConnection(op, storeName, err)
	}
	return perrors.StoreQuery(op, storeName, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if neo4j.IsConnectivityError(err) || neo4j.IsTransactionExecutionLimit(err) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		code := neoErr.Code
		return strings.HasPrefix(code, "Neo.ClientError.Security.") ||
			strings.HasPrefix(code, "Neo.TransientError.General.DatabaseUnavailable")
	}
	return false
}

func recordString(rec *neo4j.Record, key string) string {
	if rec == nil {
		return ""
	}
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func recordInt(rec *neo4j.Record, key string) int {
	if rec == nil {
		return 0
	}
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
