package history

import (
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = 1

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one generation of a binding file from one AST document.
type Run struct {
	ID            string        `json:"id"`
	ProjectKey    string        `json:"project_key"`
	Source        string        `json:"source"`
	Module        string        `json:"module"`
	Header        string        `json:"header"`
	CommitHash    string        `json:"commit_hash,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	FragmentCount int           `json:"fragment_count"`
	SkippedCount  int           `json:"skipped_count"`
	Status        string        `json:"status"`
	ErrorCode     string        `json:"error_code,omitempty"`
}

// KindCount is the number of skipped records for one node kind.
type KindCount struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

func NewRunID() string {
	return uuid.NewString()
}
