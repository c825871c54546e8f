package core

import (
	"context"

	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

// ProbeRef identifies one task for the repository state probe: the record id
// plus the file slug its worktree directory is named after.
type ProbeRef struct {
	ID   string
	Slug string
}

// StateProber is the slice of the repository probe the status service needs.
// Implemented by an adapter over integration.RepoProbe so core stays free of
// the integration package.
type StateProber interface {
	ProbeAll(ctx context.Context, refs []ProbeRef) map[string]models.RepoState
}

// StatusService produces the consolidated status report: it loads all
// records, builds the active dependency graph, probes branch and worktree
// state concurrently, and joins the results.
type StatusService struct {
	store  storage.RecordStore
	prober StateProber
}

// NewStatusService creates a StatusService.
func NewStatusService(store storage.RecordStore, prober StateProber) *StatusService {
	return &StatusService{store: store, prober: prober}
}

// GenerateReport runs the full pipeline. Per-file load failures do not abort
// the report: they come back in the scan result and the report covers the
// records that did load.
func (s *StatusService) GenerateReport(ctx context.Context) (*StatusReport, *storage.ScanResult, error) {
	scan, err := s.store.LoadAll()
	if err != nil {
		return nil, nil, err
	}

	graph := BuildGraph(scan.Records)

	refs := make([]ProbeRef, 0, len(scan.Records))
	for _, r := range scan.Records {
		refs = append(refs, ProbeRef{ID: r.ID, Slug: r.Slug()})
	}
	states := s.prober.ProbeAll(ctx, refs)

	return BuildReport(scan.Records, graph, states), scan, nil
}

// ListRecords loads every record that parses, in file-name order. Load
// failures are dropped; callers that need them use GenerateReport or Check.
func (s *StatusService) ListRecords() ([]*models.TaskRecord, error) {
	scan, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	return scan.Records, nil
}

// Check runs the strict validation pass: every record must load and the
// active graph must be acyclic. All failures are returned together; the scan
// result covers whatever loaded.
func (s *StatusService) Check() (*storage.ScanResult, *CycleError, error) {
	scan, err := s.store.LoadAll()
	if err != nil {
		return nil, nil, err
	}

	graph := BuildGraph(scan.Records)
	if cycles := graph.DetectCycles(); len(cycles) > 0 {
		return scan, &CycleError{Cycles: cycles}, nil
	}
	return scan, nil, nil
}
