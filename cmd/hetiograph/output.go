package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yungbote/hetiograph/internal/domain"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *domain.LoadReport, asJSON bool) error {
	if asJSON {
		return writeJSON(w, r)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "duration\t%s\n", r.Duration)
	fmt.Fprintf(tw, "nodes read\t%d\n", r.NodesRead)
	fmt.Fprintf(tw, "nodes written\t%d (%d batches)\n", r.NodesWritten, r.NodeBatches)
	fmt.Fprintf(tw, "nodes rejected\t%d\n", r.NodesRejected)
	fmt.Fprintf(tw, "mirror written\t%d\n", r.MirrorWritten)
	fmt.Fprintf(tw, "edges read\t%d\n", r.EdgesRead)
	fmt.Fprintf(tw, "edges merged\t%d (%d groups, %d batches)\n", r.EdgesMerged, r.EdgeGroups, r.EdgeBatches)
	fmt.Fprintf(tw, "edges skipped\t%d missing endpoint, %d invalid\n", r.EdgesSkippedMissing, r.EdgesSkippedInvalid)
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, rej := range r.Rejections {
		if rej.Line > 0 {
			fmt.Fprintf(w, "  rejected line %d %s: %s\n", rej.Line, rej.Key, rej.Reason)
		} else {
			fmt.Fprintf(w, "  rejected %s: %s\n", rej.Key, rej.Reason)
		}
	}
	return nil
}

func printNeighborhood(w io.Writer, r *domain.NeighborhoodResult, asJSON bool) error {
	if asJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", r.Name, r.ID, r.Kind)
	for _, sec := range []struct {
		title string
		items []string
	}{{"drugs", r.Drugs}, {"genes", r.Genes}, {"locations", r.Locations}} {
		fmt.Fprintf(w, "%s (%d):", sec.title, len(sec.items))
		if len(sec.items) == 0 {
			fmt.Fprintln(w, " none")
			continue
		}
		fmt.Fprintln(w)
		for _, it := range sec.items {
			fmt.Fprintf(w, "  %s\n", it)
		}
	}
	return nil
}

func printCandidates(w io.Writer, diseaseID string, c []domain.CandidateDrug, asJSON bool) error {
	if asJSON {
		return writeJSON(w, struct {
			DiseaseID  string                 `json:"disease_id"`
			Candidates []domain.CandidateDrug `json:"candidates"`
		}{diseaseID, c})
	}
	if len(c) == 0 {
		fmt.Fprintf(w, "no repurposing candidates for %s\n", diseaseID)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPOUND\tID\tGENES\tMATCHED")
	for i, d := range c {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, d.Name, d.ID, d.MatchedGeneCount, strings.Join(d.Genes, ","))
	}
	return tw.Flush()
}

// exitCode is 2 for caller mistakes (bad input, unknown entity), 1 otherwise.
func exitCode(err error) int {
	switch perrors.KindOf(err) {
	case perrors.KindNotFound, perrors.KindInvalidArgument, perrors.KindInvalidLabel, perrors.KindMalformedInput:
		return 2
	}
	return 1
}
