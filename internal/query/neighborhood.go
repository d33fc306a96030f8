package query

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/observability"
)

// Neighborhood returns the entity's name with the compounds that treat or
// palliate it, its causal genes and its locations. The three lists come from
// independent one-hop expansions. A missing entity is NotFound; an entity
// with no relations yields empty lists.
func (s *Service) Neighborhood(ctx context.Context, id string) (res *domain.NeighborhoodResult, err error) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "query.Neighborhood")
	span.SetAttributes(attribute.String("entity.id", id))
	defer func() { s.finish(span, "neighborhood", start, err) }()

	root, err := s.root(ctx, "neighborhood", id)
	if err != nil {
		return nil, err
	}

	anchor := []string{root.ID}
	var drugs, genes, locations []graph.Relation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drugs, err = s.graph.Expand(gctx, anchor, graph.Hop{Types: s.vocab.drugs, Direction: graph.Inbound, Kind: s.vocab.compound})
		return err
	})
	g.Go(func() error {
		var err error
		genes, err = s.graph.Expand(gctx, anchor, graph.Hop{Types: s.vocab.causes, Direction: graph.Outbound, Kind: s.vocab.gene})
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = s.graph.Expand(gctx, anchor, graph.Hop{Types: s.vocab.localizes, Direction: graph.Outbound})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res = &domain.NeighborhoodResult{
		ID:        root.ID,
		Name:      root.Name,
		Kind:      root.Kind,
		Drugs:     names(drugs),
		Genes:     names(genes),
		Locations: names(locations),
	}
	s.log.Debug("neighborhood resolved", "id", root.ID,
		"drugs", len(res.Drugs), "genes", len(res.Genes), "locations", len(res.Locations))
	return res, nil
}
