// Package query answers the read-only questions asked of the loaded graph:
// the neighborhood of one entity and the repurposing candidates for a disease.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hetiograph/internal/data/graph"
	"github.com/yungbote/hetiograph/internal/domain"
	"github.com/yungbote/hetiograph/internal/labels"
	"github.com/yungbote/hetiograph/internal/observability"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/logger"
)

// vocabulary is a validated domain.Schema.
type vocabulary struct {
	disease  string
	compound string
	gene     string

	treats    []labels.Label
	drugs     []labels.Label
	causes    []labels.Label
	localizes []labels.Label

	locationUp   map[string]bool
	locationDown map[string]bool
	locationAll  []labels.Label
	compoundUp   map[string]bool
	compoundDown map[string]bool
	compoundAll  []labels.Label
}

type Service struct {
	log     *logger.Logger
	graph   graph.Reader
	vocab   vocabulary
	metrics *observability.Metrics
}

func NewService(log *logger.Logger, r graph.Reader, schema domain.Schema, metrics *observability.Metrics) (*Service, error) {
	if r == nil {
		return nil, fmt.Errorf("query: graph reader required")
	}
	if log == nil {
		log = logger.Nop()
	}
	vocab, err := compile(schema)
	if err != nil {
		return nil, err
	}
	return &Service{
		log:     log.Named("QueryService"),
		graph:   r,
		vocab:   vocab,
		metrics: metrics,
	}, nil
}

func compile(s domain.Schema) (vocabulary, error) {
	kinds, err := labels.Strict(s.DiseaseKind, s.CompoundKind, s.GeneKind)
	if err != nil {
		return vocabulary{}, err
	}
	v := vocabulary{disease: kinds[0].String(), compound: kinds[1].String(), gene: kinds[2].String()}

	strict := func(raws []string) []labels.Label {
		if err != nil {
			return nil
		}
		var ls []labels.Label
		ls, err = labels.Strict(raws...)
		return ls
	}
	v.treats = strict(s.Treats)
	palliates := strict(s.Palliates)
	v.causes = strict(s.Causes)
	v.localizes = strict(s.Localizes)
	locUp := strict(s.LocationUpregulates)
	locDown := strict(s.LocationDownregulates)
	cmpUp := strict(s.CompoundUpregulates)
	cmpDown := strict(s.CompoundDownregulates)
	if err != nil {
		return vocabulary{}, err
	}
	v.drugs = append(append([]labels.Label{}, v.treats...), palliates...)

	if v.locationUp, v.locationDown, v.locationAll, err = directions("location", locUp, locDown); err != nil {
		return vocabulary{}, err
	}
	if v.compoundUp, v.compoundDown, v.compoundAll, err = directions("compound", cmpUp, cmpDown); err != nil {
		return vocabulary{}, err
	}
	return v, nil
}

// directions indexes the up and down relation types of one regulation hop.
// A type may not mean both.
func directions(name string, up, down []labels.Label) (map[string]bool, map[string]bool, []labels.Label, error) {
	upSet := make(map[string]bool, len(up))
	downSet := make(map[string]bool, len(down))
	all := make([]labels.Label, 0, len(up)+len(down))
	for _, l := range up {
		upSet[l.String()] = true
		all = append(all, l)
	}
	for _, l := range down {
		if upSet[l.String()] {
			return nil, nil, nil, perrors.InvalidArgument("compile schema",
				fmt.Sprintf("%s relation type %q is both up- and down-regulating", name, l.String()))
		}
		downSet[l.String()] = true
		all = append(all, l)
	}
	return upSet, downSet, all, nil
}

// root resolves the entity a query starts from.
func (s *Service) root(ctx context.Context, op, id string) (domain.Node, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Node{}, perrors.InvalidArgument(op, "entity id is required")
	}
	n, ok, err := s.graph.Node(ctx, id)
	if err != nil {
		return domain.Node{}, err
	}
	if !ok {
		return domain.Node{}, perrors.NotFound(op, id)
	}
	return n, nil
}

func (s *Service) finish(span trace.Span, query string, start time.Time, err error) {
	s.metrics.ObserveQuery(query, observability.Status(err), time.Since(start))
	observability.EndSpan(span, err)
}

// names returns the distinct names of the related nodes, sorted.
func names(rels []graph.Relation) []string {
	seen := make(map[string]struct{}, len(rels))
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		if _, dup := seen[r.Node.Name]; dup {
			continue
		}
		seen[r.Node.Name] = struct{}{}
		out = append(out, r.Node.Name)
	}
	sort.Strings(out)
	return out
}
