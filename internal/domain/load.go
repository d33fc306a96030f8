package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rejection records one input record that was skipped during a load.
type Rejection struct {
	Line   int    `json:"line,omitempty"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type LoadReport struct {
	RunID      uuid.UUID     `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`

	NodesRead     int `json:"nodes_read"`
	NodesWritten  int `json:"nodes_written"`
	NodesRejected int `json:"nodes_rejected"`
	NodeBatches   int `json:"node_batches"`
	MirrorWritten int `json:"mirror_written"`

	EdgesRead           int `json:"edges_read"`
	EdgeGroups          int `json:"edge_groups"`
	EdgeBatches         int `json:"edge_batches"`
	EdgesMerged         int `json:"edges_merged"`
	EdgesSkippedMissing int `json:"edges_skipped_missing_endpoint"`
	EdgesSkippedInvalid int `json:"edges_skipped_invalid"`

	Rejections []Rejection `json:"rejections,omitempty"`
}

// MaxRejections bounds the rejection list kept in a report; counters keep counting past it.
const MaxRejections = 1000

func (r *LoadReport) Reject(line int, key, reason string) {
	if len(r.Rejections) < MaxRejections {
		r.Rejections = append(r.Rejections, Rejection{Line: line, Key: key, Reason: reason})
	}
}
