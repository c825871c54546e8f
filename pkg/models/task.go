package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task record. The set of valid
// values is closed; anything else is rejected at load time.
type Status string

const (
	StatusNotStarted        Status = "Not started"
	StatusStarted           Status = "Started"
	StatusInProgress        Status = "In progress"
	StatusNeedsManualReview Status = "Needs manual review"
	StatusNeedsInput        Status = "Needs input"
	StatusDone              Status = "Done"
	StatusCancelled         Status = "Cancelled"
	StatusMerged            Status = "Merged"
	StatusReopened          Status = "Reopened"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []Status{
	StatusNotStarted,
	StatusStarted,
	StatusInProgress,
	StatusNeedsManualReview,
	StatusNeedsInput,
	StatusDone,
	StatusCancelled,
	StatusMerged,
	StatusReopened,
}

var validStatuses = func() map[Status]bool {
	m := make(map[Status]bool, len(AllStatuses))
	for _, s := range AllStatuses {
		m[s] = true
	}
	return m
}()

// ParseStatus validates a raw status string against the closed enumeration.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !validStatuses[s] {
		return "", fmt.Errorf("invalid status %q: must be one of %s", raw, statusList())
	}
	return s, nil
}

func statusList() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// IsTerminal reports whether the status is terminal. A merged task can never
// block another task and is eligible for archival.
func (s Status) IsTerminal() bool {
	return s == StatusMerged
}

// TaskRecord is the durable unit: the parsed header block of a task markdown
// file. The free-form body below the header is carried separately by the
// record store and round-tripped verbatim.
type TaskRecord struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	Status       Status    `yaml:"status"`
	Dependencies []string  `yaml:"dependencies,omitempty"`
	LastUpdated  time.Time `yaml:"last_updated"`

	// Path is the record's on-disk location, used for diagnostics and as the
	// deterministic tie-break in ordering. Not serialized.
	Path string `yaml:"-"`
}

// Slug returns the file stem (NN-slug) of the record, or the bare ID if the
// path is unknown.
func (r *TaskRecord) Slug() string {
	if r.Path == "" {
		return r.ID
	}
	return strings.TrimSuffix(filepath.Base(r.Path), ".md")
}
