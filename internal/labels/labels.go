// Package labels turns raw type tags into graph schema elements.
//
// Relation types are sanitized (characters outside [A-Za-z0-9_] are dropped)
// and then held to the same ^[A-Za-z][A-Za-z0-9_]*$ grammar as node kinds,
// which are never sanitized. A Label can only be built through these two paths, so any
// Label handed to a store is safe to place in a query pattern.
package labels

import (
	"regexp"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
)

var (
	strictPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	disallowed    = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

type Label struct {
	name string
}

func (l Label) String() string { return l.name }

func (l Label) IsZero() bool { return l.name == "" }

// Quoted returns the label wrapped in backticks for a Cypher pattern.
func (l Label) Quoted() string { return "`" + l.name + "`" }

// Sanitize strips every character outside [A-Za-z0-9_].
func Sanitize(raw string) string {
	return disallowed.ReplaceAllString(raw, "")
}

// Validate returns raw unchanged when it matches the strict grammar.
func Validate(raw string) (string, error) {
	if !strictPattern.MatchString(raw) {
		return "", perrors.InvalidLabel(raw)
	}
	return raw, nil
}

// NodeKind validates raw as a node kind label.
func NodeKind(raw string) (Label, error) {
	v, err := Validate(raw)
	if err != nil {
		return Label{}, err
	}
	return Label{name: v}, nil
}

// RelationType sanitizes raw into a relation type label. A tag that is
// empty after sanitizing, or starts with a digit or underscore, is rejected.
func RelationType(raw string) (Label, error) {
	s := Sanitize(raw)
	if !strictPattern.MatchString(s) {
		return Label{}, perrors.InvalidLabel(raw)
	}
	return Label{name: s}, nil
}

// Strict validates every entry of raws, used for configured vocabularies.
func Strict(raws ...string) ([]Label, error) {
	out := make([]Label, 0, len(raws))
	for _, r := range raws {
		l, err := NodeKind(r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Names returns the string form of each label.
func Names(ls []Label) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.name
	}
	return out
}
