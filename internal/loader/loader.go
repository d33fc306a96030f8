// Package loader writes node and edge records into the graph store and the
// mirror store.
//
// Nodes are upserted by id. Node kinds must pass the strict label grammar; a
// node that fails is reported and skipped in the graph store while the rest of
// the load continues. Edges are grouped by metaedge, the relation type is
// sanitized once per group, and every group is merged in fixed-size batches,
// one store round-trip per batch. An edge whose endpoint does not exist is
// skipped by the store without failing its batch.
//
// The two stores are written independently. A failed load leaves whatever
// batches already committed in place; re-running the same input converges.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/data/mirror"
	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/ingestion/tsv"
	"github.com/yungbote/hetiograph/internal/labels"
	"github.com/yungbote/hetiograph/internal/observability"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

const DefaultBatchSize = 1000

// Rejection reasons, also used as metric labels.
const (
	ReasonMalformedRow    = "malformed_row"
	ReasonEmptyID         = "empty_id"
	ReasonInvalidKind     = "invalid_kind"
	ReasonInvalidRelation = "invalid_relation"
	ReasonEmptyEndpoint   = "empty_endpoint"
	ReasonMissingEndpoint = "missing_endpoint"
)

type Options struct {
	BatchSize   int
	EdgeWorkers int
}

// Sources parses the node and edge input files.
type Sources interface {
	LoadNodes(ctx context.Context, path string) (*tsv.NodeFile, error)
	LoadEdges(ctx context.Context, path string) (*tsv.EdgeFile, error)
}

type Loader struct {
	log     *logger.Logger
	graph   graph.Writer
	mirror  mirror.Store
	files   Sources
	opts    Options
	metrics *observability.Metrics
}

func New(log *logger.Logger, g graph.Writer, m mirror.Store, files Sources, opts Options, metrics *observability.Metrics) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.EdgeWorkers <= 0 {
		opts.EdgeWorkers = 1
	}
	if m == nil {
		m = mirror.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		log:     log.Named("Loader"),
		graph:   g,
		mirror:  m,
		files:   files,
		opts:    opts,
		metrics: metrics,
	}
}

// LoadFiles parses both files before touching either store, so an unreadable
// input fails the load without partial writes.
func (l *Loader) LoadFiles(ctx context.Context, nodesPath, edgesPath string) (*domain.LoadReport, error) {
	if l.files == nil {
		return nil, perrors.InvalidArgument("load files", "no input sources configured")
	}
	nodes, err := l.files.LoadNodes(ctx, nodesPath)
	if err != nil {
		return nil, err
	}
	edges, err := l.files.LoadEdges(ctx, edgesPath)
	if err != nil {
		return nil, err
	}

	report := newReport()
	for _, rej := range tsv.Rejections(nodesPath, nodes.Bad) {
		report.NodesRead++
		report.NodesRejected++
		report.Reject(rej.Line, rej.Key, rej.Reason)
		l.metrics.IncNodeRejected(ReasonMalformedRow)
	}
	for _, rej := range tsv.Rejections(edgesPath, edges.Bad) {
		report.EdgesRead++
		report.EdgesSkippedInvalid++
		report.Reject(rej.Line, rej.Key, rej.Reason)
	}
	l.metrics.AddEdgesSkipped(ReasonMalformedRow, len(edges.Bad))
	if n := len(nodes.Bad) + len(edges.Bad); n > 0 {
		l.log.Warn("malformed rows skipped", "nodes_file", nodesPath, "edges_file", edgesPath,
			"node_rows", len(nodes.Bad), "edge_rows", len(edges.Bad))
	}
	return l.run(ctx, report, nodes.Records, edges.Records)
}

// Load writes already parsed records. The returned report is non-nil even on
// failure and describes the work committed before the error.
func (l *Loader) Load(ctx context.Context, nodes []domain.NodeRecord, edges []domain.EdgeRecord) (*domain.LoadReport, error) {
	return l.run(ctx, newReport(), nodes, edges)
}

func newReport() *domain.LoadReport {
	return &domain.LoadReport{RunID: uuid.New(), StartedAt: time.Now().UTC()}
}

func (l *Loader) run(ctx context.Context, report *domain.LoadReport, nodes []domain.NodeRecord, edges []domain.EdgeRecord) (_ *domain.LoadReport, err error) {
	ctx, span := observability.Tracer().Start(ctx, "loader.Load")
	span.SetAttributes(
		attribute.String("load.run_id", report.RunID.String()),
		attribute.Int("load.nodes", len(nodes)),
		attribute.Int("load.edges", len(edges)),
	)
	log := l.log.With("run_id", report.RunID.String())
	defer func() {
		report.FinishedAt = time.Now().UTC()
		report.Duration = report.FinishedAt.Sub(report.StartedAt)
		l.metrics.ObserveLoad(observability.Status(err), report.Duration)
		if err != nil {
			log.Error("load failed", "error", err, "nodes_written", report.NodesWritten, "edges_merged", report.EdgesMerged)
		} else {
			log.Info("load finished",
				"nodes_read", report.NodesRead,
				"nodes_written", report.NodesWritten,
				"nodes_rejected", report.NodesRejected,
				"mirror_written", report.MirrorWritten,
				"edges_read", report.EdgesRead,
				"edge_groups", report.EdgeGroups,
				"edge_batches", report.EdgeBatches,
				"edges_merged", report.EdgesMerged,
				"edges_skipped_missing", report.EdgesSkippedMissing,
				"edges_skipped_invalid", report.EdgesSkippedInvalid,
				"duration", report.Duration,
			)
		}
		observability.EndSpan(span, err)
	}()

	if l.graph == nil {
		return report, perrors.InvalidArgument("load", "graph store required")
	}
	if err := l.graph.EnsureSchema(ctx); err != nil {
		return report, err
	}
	if err := l.loadNodes(ctx, log, report, nodes); err != nil {
		return report, err
	}
	if err := l.loadEdges(ctx, log, report, edges); err != nil {
		return report, err
	}
	return report, nil
}

type kindGroup struct {
	kind  labels.Label
	nodes []domain.Node
}

func (l *Loader) loadNodes(ctx context.Context, log *logger.Logger, report *domain.LoadReport, records []domain.NodeRecord) error {
	ctx, span := observability.Tracer().Start(ctx, "loader.nodes")
	defer span.End()

	report.NodesRead += len(records)

	trimmed := make([]domain.NodeRecord, len(records))
	mirrored := make([]domain.NodeRecord, 0, len(records))
	for i, rec := range records {
		rec.ID = strings.TrimSpace(rec.ID)
		trimmed[i] = rec
		if rec.ID == "" {
			report.NodesRejected++
			report.Reject(rec.Line, "", "empty node id")
			l.metrics.IncNodeRejected(ReasonEmptyID)
			continue
		}
		mirrored = append(mirrored, rec)
	}

	// Mirror first: it stores every identified record, including ones whose
	// kind the graph store refuses.
	for b, off := 0, 0; off < len(mirrored); b, off = b+1, off+l.opts.BatchSize {
		batch := mirrored[off:min(off+l.opts.BatchSize, len(mirrored))]
		n, err := l.mirror.UpsertNodes(ctx, batch)
		if err != nil {
			err = wrapStoreErr("mirror upsert", l.mirror.Name(), err)
			err = perrors.AddContext(err, perrors.CtxBatch, b)
			err = perrors.AddContext(err, perrors.CtxOffset, off)
			return perrors.AddContext(err, perrors.CtxSize, len(batch))
		}
		report.MirrorWritten += n
	}
	l.metrics.AddMirrorWritten(l.mirror.Name(), report.MirrorWritten)

	// Last write wins per id among records with a valid kind: a later row
	// with a bad kind is rejected without undoing the earlier valid one.
	kinds := make([]labels.Label, len(trimmed))
	latest := make(map[string]int, len(trimmed))
	for i, rec := range trimmed {
		if rec.ID == "" {
			continue
		}
		kind, err := labels.NodeKind(rec.Kind)
		if err != nil {
			report.NodesRejected++
			report.Reject(rec.Line, rec.ID, err.Error())
			l.metrics.IncNodeRejected(ReasonInvalidKind)
			log.Warn("node rejected", "id", rec.ID, "kind", rec.Kind, "line", rec.Line, "error", err)
			continue
		}
		kinds[i] = kind
		latest[rec.ID] = i
	}

	var (
		groups []*kindGroup
		byKind = map[string]*kindGroup{}
	)
	for i, rec := range trimmed {
		if kinds[i].IsZero() || latest[rec.ID] != i {
			continue
		}
		kind := kinds[i]
		g := byKind[kind.String()]
		if g == nil {
			g = &kindGroup{kind: kind}
			byKind[kind.String()] = g
			groups = append(groups, g)
		}
		g.nodes = append(g.nodes, rec.Node())
	}

	for _, g := range groups {
		for b, off := 0, 0; off < len(g.nodes); b, off = b+1, off+l.opts.BatchSize {
			batch := g.nodes[off:min(off+l.opts.BatchSize, len(g.nodes))]
			n, err := l.graph.UpsertNodes(ctx, g.kind, batch)
			if err != nil {
				err = wrapStoreErr("upsert nodes", "graph", err)
				err = perrors.AddContext(err, perrors.CtxKind, g.kind.String())
				err = perrors.AddContext(err, perrors.CtxBatch, b)
				err = perrors.AddContext(err, perrors.CtxOffset, off)
				return perrors.AddContext(err, perrors.CtxSize, len(batch))
			}
			report.NodeBatches++
			report.NodesWritten += n
			l.metrics.AddNodesWritten(n)
		}
		log.Debug("node kind written", "kind", g.kind.String(), "nodes", len(g.nodes))
	}
	span.SetAttributes(attribute.Int("load.nodes_written", report.NodesWritten))
	return nil
}

// edgeGroup is every edge sharing one raw metaedge tag.
type edgeGroup struct {
	metaedge  string
	relation  labels.Label
	endpoints []graph.Endpoints

	batches int
	merged  int
}

type edgeBatch struct {
	group  *edgeGroup
	index  int
	offset int
	rows   []graph.Endpoints
}

// GroupEdges groups records by raw metaedge, keeping input order inside a group.
func GroupEdges(records []domain.EdgeRecord) map[string][]domain.EdgeRecord {
	out := map[string][]domain.EdgeRecord{}
	for _, r := range records {
		out[r.Metaedge] = append(out[r.Metaedge], r)
	}
	return out
}

func (l *Loader) loadEdges(ctx context.Context, log *logger.Logger, report *domain.LoadReport, records []domain.EdgeRecord) error {
	ctx, span := observability.Tracer().Start(ctx, "loader.edges")
	defer span.End()

	report.EdgesRead += len(records)

	grouped := GroupEdges(records)
	metaedges := make([]string, 0, len(grouped))
	for m := range grouped {
		metaedges = append(metaedges, m)
	}
	sort.Strings(metaedges)

	var (
		groups  []*edgeGroup
		batches []edgeBatch
	)
	for _, meta := range metaedges {
		recs := grouped[meta]
		rel, err := labels.RelationType(meta)
		if err != nil {
			report.EdgesSkippedInvalid += len(recs)
			report.Reject(recs[0].Line, meta, fmt.Sprintf("%d edges: %v", len(recs), err))
			l.metrics.AddEdgesSkipped(ReasonInvalidRelation, len(recs))
			log.Warn("relation group rejected", "metaedge", meta, "edges", len(recs), "error", err)
			continue
		}
		g := &edgeGroup{metaedge: meta, relation: rel}
		for _, r := range recs {
			src, dst := strings.TrimSpace(r.Source), strings.TrimSpace(r.Target)
			if src == "" || dst == "" {
				report.EdgesSkippedInvalid++
				report.Reject(r.Line, meta, "edge endpoint id is empty")
				l.metrics.AddEdgesSkipped(ReasonEmptyEndpoint, 1)
				continue
			}
			g.endpoints = append(g.endpoints, graph.Endpoints{Source: src, Target: dst})
		}
		if len(g.endpoints) == 0 {
			continue
		}
		groups = append(groups, g)
		for b, off := 0, 0; off < len(g.endpoints); b, off = b+1, off+l.opts.BatchSize {
			batches = append(batches, edgeBatch{
				group:  g,
				index:  b,
				offset: off,
				rows:   g.endpoints[off:min(off+l.opts.BatchSize, len(g.endpoints))],
			})
		}
	}
	report.EdgeGroups = len(groups)
	span.SetAttributes(attribute.Int("load.edge_groups", len(groups)), attribute.Int("load.edge_batches", len(batches)))

	var mu sync.Mutex
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.opts.EdgeWorkers)
	for _, b := range batches {
		b := b
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			merged, err := l.graph.MergeEdges(egctx, b.group.relation, b.rows)
			rel := b.group.relation.String()
			l.metrics.ObserveEdgeBatch(rel, observability.Status(err), merged, time.Since(start))
			if err != nil {
				err = wrapStoreErr("merge edges", "graph", err)
				err = perrors.AddContext(err, perrors.CtxRelation, rel)
				err = perrors.AddContext(err, perrors.CtxMetaedge, b.group.metaedge)
				err = perrors.AddContext(err, perrors.CtxBatch, b.index)
				err = perrors.AddContext(err, perrors.CtxOffset, b.offset)
				return perrors.AddContext(err, perrors.CtxSize, len(b.rows))
			}
			skipped := len(b.rows) - merged
			l.metrics.AddEdgesSkipped(ReasonMissingEndpoint, skipped)

			mu.Lock()
			defer mu.Unlock()
			b.group.batches++
			b.group.merged += merged
			report.EdgeBatches++
			report.EdgesMerged += merged
			report.EdgesSkippedMissing += skipped
			return nil
		})
	}
	waitErr := eg.Wait()

	for _, g := range groups {
		if g.batches == 0 {
			continue
		}
		log.Info("relation group merged",
			"relation", g.relation.String(),
			"metaedge", g.metaedge,
			"edges", len(g.endpoints),
			"batches", g.batches,
			"merged", g.merged,
		)
	}
	return waitErr
}

// wrapStoreErr types an error a store returned untyped. Cancellation is
// passed through so callers can tell it apart from a store failure.
func wrapStoreErr(op, store string, err error) error {
	if err == nil || perrors.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return perrors.StoreQuery(op, store, err)
}
