// Package tsv reads the normalized node and edge files produced upstream.
//
// Nodes need the columns id, name and kind; edges need source, target and
// metaedge. Column order is taken from the header row and extra columns are
// allowed. A missing column or an unreadable stream is a malformed-input failure
// for the whole file; a short row is rejected on its own.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/hetiograph/internal/domain"
	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

var (
	NodeColumns = []string{"id", "name", "kind"}
	EdgeColumns = []string{"source", "target", "metaedge"}
)

// RowError describes one row that could not be used.
type RowError struct {
	Line   int
	Reason string
}

type NodeFile struct {
	Records []domain.NodeRecord
	Bad     []RowError
}

type EdgeFile struct {
	Records []domain.EdgeRecord
	Bad     []RowError
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr
}

// header reads the header row and returns the column index for each name.
func header(cr *csv.Reader, source string, required []string) (map[string]int, []string, error) {
	row, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, perrors.MalformedInput("read header", source, "empty file", nil)
	}
	if err != nil {
		return nil, nil, perrors.MalformedInput("read header", source, "unreadable header", err)
	}
	cols := make(map[string]int, len(row))
	names := make([]string, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		names[i] = name
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, want := range required {
		if _, ok := cols[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, nil, perrors.MalformedInput("read header", source,
			fmt.Sprintf("missing required columns %s (have %s)", strings.Join(missing, ","), strings.Join(names, ",")), nil)
	}
	return cols, names, nil
}

func field(row []string, idx int) (string, bool) {
	if idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

// ReadNodes parses a nodes file. source only labels errors.
func ReadNodes(r io.Reader, source string) (*NodeFile, error) {
	cr := newReader(r)
	cols, names, err := header(cr, source, NodeColumns)
	if err != nil {
		return nil, err
	}
	out := &NodeFile{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				out.Bad = append(out.Bad, RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, perrors.MalformedInput("read nodes", source, "read failed", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}
		id, ok1 := field(row, cols["id"])
		name, ok2 := field(row, cols["name"])
		kind, ok3 := field(row, cols["kind"])
		if !ok1 || !ok2 || !ok3 {
			out.Bad = append(out.Bad, RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(names), len(row))})
			continue
		}
		rec := domain.NodeRecord{ID: id, Name: name, Kind: kind, Line: line}
		for i, col := range names {
			if i >= len(row) || col == "" || col == "id" || col == "name" || col == "kind" {
				continue
			}
			if rec.Attrs == nil {
				rec.Attrs = map[string]string{}
			}
			rec.Attrs[col] = row[i]
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// ReadEdges parses an edges file. source only labels errors.
func ReadEdges(r io.Reader, source string) (*EdgeFile, error) {
	cr := newReader(r)
	cols, names, err := header(cr, source, EdgeColumns)
	if err != nil {
		return nil, err
	}
	out := &EdgeFile{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				out.Bad = append(out.Bad, RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			return nil, perrors.MalformedInput("read edges", source, "read failed", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}
		src, ok1 := field(row, cols["source"])
		dst, ok2 := field(row, cols["target"])
		meta, ok3 := field(row, cols["metaedge"])
		if !ok1 || !ok2 || !ok3 {
			out.Bad = append(out.Bad, RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(names), len(row))})
			continue
		}
		out.Records = append(out.Records, domain.EdgeRecord{Source: src, Target: dst, Metaedge: meta, Line: line})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
