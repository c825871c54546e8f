package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"pgregory.net/rapid"
)

func genAlphaString(t *rapid.T, label string, minLen, maxLen int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	n := rapid.IntRange(minLen, maxLen).Draw(t, label+"Len")
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rapid.IntRange(0, len(letters)-1).Draw(t, label+"Char")]
	}
	return string(b)
}

func genStatus(t *rapid.T) models.Status {
	return models.AllStatuses[rapid.IntRange(0, len(models.AllStatuses)-1).Draw(t, "statusIdx")]
}

func genRecord(t *rapid.T) *models.TaskRecord {
	id := fmt.Sprintf("%02d", rapid.IntRange(1, 99).Draw(t, "idNum"))

	nDeps := rapid.IntRange(0, 4).Draw(t, "nDeps")
	var deps []string
	for i := 0; i < nDeps; i++ {
		deps = append(deps, fmt.Sprintf("%02d", rapid.IntRange(1, 99).Draw(t, fmt.Sprintf("dep%d", i))))
	}

	sec := rapid.Int64Range(0, 4102444800).Draw(t, "updatedSec")

	return &models.TaskRecord{
		ID:           id,
		Title:        genAlphaString(t, "title", 1, 40),
		Status:       genStatus(t),
		Dependencies: deps,
		LastUpdated:  time.Unix(sec, 0).UTC(),
	}
}

// Save then Load must return the header unchanged and the body verbatim
// modulo leading blank lines.
func TestRecordRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, err := os.MkdirTemp("", "recordstore-prop-test-*")
		if err != nil {
			t.Fatalf("creating temp dir: %v", err)
		}
		defer os.RemoveAll(dir)
		store := NewRecordStore(dir, ".worktrees", ".done")

		record := genRecord(t)
		body := genAlphaString(t, "body", 0, 200) + "\n"
		path := filepath.Join(dir, record.ID+"-"+genAlphaString(t, "slug", 1, 10)+".md")

		if err := store.Save(path, record, body); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, gotBody, err := store.Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}

		if got.ID != record.ID || got.Title != record.Title || got.Status != record.Status {
			t.Fatalf("header changed: saved %+v, loaded %+v", record, got)
		}
		if len(got.Dependencies) != len(record.Dependencies) {
			t.Fatalf("dependencies changed: saved %v, loaded %v", record.Dependencies, got.Dependencies)
		}
		for i := range got.Dependencies {
			if got.Dependencies[i] != record.Dependencies[i] {
				t.Fatalf("dependency %d changed: saved %v, loaded %v", i, record.Dependencies, got.Dependencies)
			}
		}
		if !got.LastUpdated.Equal(record.LastUpdated) {
			t.Fatalf("timestamp changed: saved %v, loaded %v", record.LastUpdated, got.LastUpdated)
		}
		if want := strings.TrimLeft(body, "\n"); gotBody != want {
			t.Fatalf("body changed: saved %q, loaded %q", want, gotBody)
		}
	})
}

// Saving twice must be idempotent at the byte level.
func TestSaveIdempotent_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dir, err := os.MkdirTemp("", "recordstore-idem-test-*")
		if err != nil {
			t.Fatalf("creating temp dir: %v", err)
		}
		defer os.RemoveAll(dir)
		store := NewRecordStore(dir, ".worktrees", ".done")

		record := genRecord(t)
		body := genAlphaString(t, "body", 0, 80)
		path := filepath.Join(dir, record.ID+"-task.md")

		if err := store.Save(path, record, body); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, loadedBody, err := store.Load(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if err := store.Save(path, loaded, loadedBody); err != nil {
			t.Fatalf("second save: %v", err)
		}
		again, againBody, err := store.Load(path)
		if err != nil {
			t.Fatalf("second load: %v", err)
		}
		if again.ID != loaded.ID || again.Status != loaded.Status || againBody != loadedBody {
			t.Fatalf("second round trip diverged: %+v vs %+v", loaded, again)
		}
	})
}
