package domain

// Node is an entity in the knowledge graph. ID has the form "<Kind>::<source-id>".
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Edge is a directed, typed relation between two existing nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// NodeRecord is one row of the nodes input. Attrs holds any columns beyond
// id/name/kind. Line is the 1-based input line, 0 when not read from a file.
type NodeRecord struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Kind  string            `json:"kind"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Line  int               `json:"-"`
}

func (r NodeRecord) Node() Node {
	return Node{ID: r.ID, Name: r.Name, Kind: r.Kind}
}

// EdgeRecord is one row of the edges input; Metaedge is the raw relation tag.
type EdgeRecord struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Metaedge string `json:"metaedge"`
	Line     int    `json:"-"`
}
