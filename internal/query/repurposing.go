package query

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/observability"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

type direction uint8

const (
	up direction = 1 << iota
	down
)

// opposes reports whether a compound acting in dir reverses at least one of
// the directions in observed.
func (dir direction) opposes(observed direction) bool {
	return (dir&up != 0 && observed&down != 0) || (dir&down != 0 && observed&up != 0)
}

// RepurposingCandidates finds compounds that regulate a gene in the opposite
// direction to the disease's locations. Known treatments of the disease are
// excluded. Candidates are ranked by the number of distinct genes matched,
// then by name and id. limit <= 0 returns every candidate.
//
// The disease must exist and be of the disease kind, otherwise the call is
// NotFound. A disease without locations, regulated genes or regulating
// compounds yields an empty slice.
func (s *Service) RepurposingCandidates(ctx context.Context, diseaseID string, limit int) (out []domain.CandidateDrug, err error) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "query.RepurposingCandidates")
	span.SetAttributes(attribute.String("disease.id", diseaseID), attribute.Int("limit", limit))
	defer func() {
		span.SetAttributes(attribute.Int("candidates", len(out)))
		s.finish(span, "repurposing", start, err)
	}()

	if limit < 0 {
		return nil, perrors.InvalidArgument("repurposing", "limit must not be negative")
	}
	disease, err := s.root(ctx, "repurposing", diseaseID)
	if err != nil {
		return nil, err
	}
	if disease.Kind != s.vocab.disease {
		return nil, perrors.NotFound("repurposing", disease.ID).WithContext(perrors.CtxKind, disease.Kind)
	}
	anchor := []string{disease.ID}
	out = []domain.CandidateDrug{}

	locRels, err := s.graph.Expand(ctx, anchor, graph.Hop{Types: s.vocab.localizes, Direction: graph.Outbound})
	if err != nil {
		return nil, err
	}
	locations := distinctIDs(locRels)
	if len(locations) == 0 {
		return out, nil
	}

	// Every direction a gene shows at any location is kept; a gene
	// up-regulated in one place and down-regulated in another has both.
	geneRels, err := s.graph.Expand(ctx, locations, graph.Hop{Types: s.vocab.locationAll, Direction: graph.Outbound, Kind: s.vocab.gene})
	if err != nil {
		return nil, err
	}
	geneDirs := map[string]direction{}
	geneNames := map[string]string{}
	for _, r := range geneRels {
		geneDirs[r.Node.ID] |= s.locationDirection(r.Type)
		geneNames[r.Node.ID] = r.Node.Name
	}
	if len(geneDirs) == 0 {
		return out, nil
	}
	genes := make([]string, 0, len(geneDirs))
	for id := range geneDirs {
		genes = append(genes, id)
	}
	sort.Strings(genes)

	regRels, err := s.graph.Expand(ctx, genes, graph.Hop{Types: s.vocab.compoundAll, Direction: graph.Inbound, Kind: s.vocab.compound})
	if err != nil {
		return nil, err
	}
	if len(regRels) == 0 {
		return out, nil
	}

	treatRels, err := s.graph.Expand(ctx, anchor, graph.Hop{Types: s.vocab.treats, Direction: graph.Inbound, Kind: s.vocab.compound})
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(treatRels))
	for _, r := range treatRels {
		known[r.Node.ID] = struct{}{}
	}

	compounds := map[string]domain.Node{}
	matched := map[string]map[string]struct{}{}
	for _, r := range regRels {
		c := r.Node
		if _, ok := known[c.ID]; ok {
			continue
		}
		if !s.compoundDirection(r.Type).opposes(geneDirs[r.Anchor]) {
			continue
		}
		if matched[c.ID] == nil {
			matched[c.ID] = map[string]struct{}{}
			compounds[c.ID] = c
		}
		matched[c.ID][r.Anchor] = struct{}{}
	}

	for id, gs := range matched {
		matchedNames := make([]string, 0, len(gs))
		for g := range gs {
			matchedNames = append(matchedNames, geneNames[g])
		}
		sort.Strings(matchedNames)
		out = append(out, domain.CandidateDrug{
			ID:               id,
			Name:             compounds[id].Name,
			MatchedGeneCount: len(gs),
			Genes:            matchedNames,
		})
	}
	RankCandidates(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	s.log.Debug("repurposing resolved", "disease_id", disease.ID,
		"locations", len(locations), "genes", len(genes), "excluded", len(known), "candidates", len(out))
	return out, nil
}

// RankCandidates orders by matched gene count descending, then name and id
// ascending.
func RankCandidates(c []domain.CandidateDrug) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].MatchedGeneCount != c[j].MatchedGeneCount {
			return c[i].MatchedGeneCount > c[j].MatchedGeneCount
		}
		if c[i].Name != c[j].Name {
			return c[i].Name < c[j].Name
		}
		return c[i].ID < c[j].ID
	})
}

func (s *Service) locationDirection(relType string) direction {
	switch {
	case s.vocab.locationUp[relType]:
		return up
	case s.vocab.locationDown[relType]:
		return down
	}
	return 0
}

func (s *Service) compoundDirection(relType string) direction {
	switch {
	case s.vocab.compoundUp[relType]:
		return up
	case s.vocab.compoundDown[relType]:
		return down
	}
	return 0
}

func distinctIDs(rels []graph.Relation) []string {
	seen := make(map[string]struct{}, len(rels))
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		if _, dup := seen[r.Node.ID]; dup {
			continue
		}
		seen[r.Node.ID] = struct{}{}
		out = append(out, r.Node.ID)
	}
	sort.Strings(out)
	return out
}
