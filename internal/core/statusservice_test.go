package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/taskboard/internal/storage"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

type fakeProber struct {
	states map[string]models.RepoState
	refs   []ProbeRef
}

func (p *fakeProber) ProbeAll(ctx context.Context, refs []ProbeRef) map[string]models.RepoState {
	p.refs = refs
	return p.states
}

func newTestStatusService(t *testing.T, states map[string]models.RepoState) (*StatusService, string, *fakeProber) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewRecordStore(dir, ".worktrees", ".done")
	prober := &fakeProber{states: states}
	return NewStatusService(store, prober), dir, prober
}

func writeService(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerateReport(t *testing.T) {
	states := map[string]models.RepoState{
		"01": {Branch: models.BranchState{Exists: true, Name: "task-01-base", CountsKnown: true, Ahead: 2}},
	}
	svc, dir, prober := newTestStatusService(t, states)
	writeService(t, dir, "01-base.md", "---\nid: \"01\"\ntitle: Base\nstatus: Done\n---\n")
	writeService(t, dir, "02-follow-up.md", "---\nid: \"02\"\ntitle: Follow up\nstatus: Started\ndependencies: [\"01\"]\n---\n")

	report, scan, err := svc.GenerateReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scan.Failed() {
		t.Fatalf("unexpected scan errors: %v", scan.Errors)
	}
	if len(report.Rows) != 2 || report.Rows[0].ID != "01" {
		t.Errorf("unexpected rows: %+v", report.Rows)
	}
	if len(report.ReadyToMerge) != 1 || report.ReadyToMerge[0] != "01" {
		t.Errorf("expected 01 ready to merge, got %v", report.ReadyToMerge)
	}

	// The probe is asked about every record, with the file stem as slug.
	if len(prober.refs) != 2 {
		t.Fatalf("expected 2 probe refs, got %v", prober.refs)
	}
	if prober.refs[0].Slug != "01-base" {
		t.Errorf("unexpected slug: %q", prober.refs[0].Slug)
	}
}

func TestGenerateReport_PartialLoadFailure(t *testing.T) {
	svc, dir, _ := newTestStatusService(t, nil)
	writeService(t, dir, "01-good.md", "---\nid: \"01\"\ntitle: Good\nstatus: Started\n---\n")
	writeService(t, dir, "02-bad.md", "not a record\n")

	report, scan, err := svc.GenerateReport(context.Background())
	if err != nil {
		t.Fatalf("load failures must not abort the report: %v", err)
	}
	if !scan.Failed() {
		t.Error("expected scan errors")
	}
	if len(report.Rows) != 1 || report.Rows[0].ID != "01" {
		t.Errorf("report should cover the records that loaded: %+v", report.Rows)
	}
}

func TestListRecords(t *testing.T) {
	svc, dir, _ := newTestStatusService(t, nil)
	writeService(t, dir, "02-second.md", "---\nid: \"02\"\ntitle: Second\nstatus: Done\n---\n")
	writeService(t, dir, "01-first.md", "---\nid: \"01\"\ntitle: First\nstatus: Started\n---\n")

	records, err := svc.ListRecords()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].ID != "01" || records[1].ID != "02" {
		t.Errorf("expected file-name order, got %+v", records)
	}
}

func TestCheck(t *testing.T) {
	t.Run("clean set", func(t *testing.T) {
		svc, dir, _ := newTestStatusService(t, nil)
		writeService(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\n---\n")

		scan, cycleErr, err := svc.Check()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scan.Failed() || cycleErr != nil {
			t.Errorf("expected clean check, got errors=%v cycles=%v", scan.Errors, cycleErr)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		svc, dir, _ := newTestStatusService(t, nil)
		writeService(t, dir, "01-a.md", "---\nid: \"01\"\ntitle: A\nstatus: Started\ndependencies: [\"02\"]\n---\n")
		writeService(t, dir, "02-b.md", "---\nid: \"02\"\ntitle: B\nstatus: Started\ndependencies: [\"01\"]\n---\n")

		_, cycleErr, err := svc.Check()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cycleErr == nil || len(cycleErr.Cycles) != 1 {
			t.Fatalf("expected one cycle, got %v", cycleErr)
		}
	})
}
