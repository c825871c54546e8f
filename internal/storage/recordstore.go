package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/taskboard/pkg/models"
	"gopkg.in/yaml.v3"
)

const headerFence = "---"

// recordFilePattern matches task record file names: two-digit id prefix,
// dash, slug, .md extension.
var recordFilePattern = regexp.MustCompile(`^\d{2}-.+\.md$`)

// timestampLayouts are the accepted last_updated formats, tried in order.
// Saves always write RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// RecordStore loads and saves individual task records and discovers the set
// of record files in the tasks directory.
type RecordStore interface {
	// Load parses a single record file into its header and body.
	Load(path string) (*models.TaskRecord, string, error)
	// Save rewrites a record file atomically as fence + header + fence + body.
	Save(path string, record *models.TaskRecord, body string) error
	// Discover returns the paths of all task record files, sorted by name.
	Discover() ([]string, error)
	// LoadAll loads every discovered record, accumulating per-file errors
	// instead of failing on the first bad file.
	LoadAll() (*ScanResult, error)
	// FindByID resolves a task id to its record file path.
	FindByID(id string) (string, error)
}

// ScanResult is the outcome of a bulk load: the records that parsed, keyed
// lookup, and every error encountered along the way.
type ScanResult struct {
	// Records holds successfully loaded records in file-name order.
	Records []*models.TaskRecord
	// ByID maps task id to record. On duplicate ids the first encountered
	// wins and the duplicate is reported in Errors.
	ByID map[string]*models.TaskRecord
	// Errors collects per-file parse and validation failures.
	Errors []error
}

// Failed reports whether any record in the scan failed to load.
func (r *ScanResult) Failed() bool {
	return len(r.Errors) > 0
}

type fileRecordStore struct {
	tasksDir        string
	worktreeDirName string
	archiveDirName  string
}

// NewRecordStore creates a RecordStore over the given tasks directory.
// Files under the named worktree and archive subdirectories are excluded
// from discovery, as are the task template and any "-plan" suffixed files.
func NewRecordStore(tasksDir, worktreeDirName, archiveDirName string) RecordStore {
	return &fileRecordStore{
		tasksDir:        tasksDir,
		worktreeDirName: worktreeDirName,
		archiveDirName:  archiveDirName,
	}
}

// header is the on-disk YAML form of a record's fenced block. Dependencies
// accepts both the typed list form and the legacy free-text scalar; saves
// always write the list form.
type header struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Status       string   `yaml:"status"`
	Dependencies depField `yaml:"dependencies,omitempty"`
	LastUpdated  string   `yaml:"last_updated,omitempty"`
}

type depField []string

func (d *depField) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*d = list
		return nil
	case yaml.ScalarNode:
		// Legacy free-text form ("as of <date>: 01, 02"). Carried as a single
		// element; reference extraction happens at graph build.
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			*d = nil
			return nil
		}
		*d = []string{raw}
		return nil
	default:
		return fmt.Errorf("dependencies must be a list or string, got %v", value.Kind)
	}
}

// Load reads the file at path, splits the fenced header from the body, and
// validates required fields against the enumeration.
func (s *fileRecordStore) Load(path string) (*models.TaskRecord, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading record %s: %w", path, err)
	}

	headerText, body, err := splitFences(path, string(data))
	if err != nil {
		return nil, "", err
	}

	var h header
	if err := yaml.Unmarshal([]byte(headerText), &h); err != nil {
		return nil, "", &ParseError{Path: path, Reason: fmt.Sprintf("parsing header: %v", err)}
	}

	record, err := validateHeader(path, &h)
	if err != nil {
		return nil, "", err
	}
	record.Path = path

	// Leading blank lines after the closing fence are formatting, not body.
	return record, strings.TrimLeft(body, "\n"), nil
}

// splitFences extracts the header block between the opening and closing
// fence lines. The remainder after the closing fence is the body.
func splitFences(path, content string) (headerText, body string, err error) {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != headerFence {
		return "", "", &ParseError{Path: path, Reason: "missing opening fence"}
	}

	var headerLines []string
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == headerFence {
			return strings.Join(headerLines, ""), strings.Join(lines[i+1:], ""), nil
		}
		headerLines = append(headerLines, lines[i])
	}
	return "", "", &ParseError{Path: path, Reason: "missing closing fence"}
}

// validateHeader checks required keys, the status enumeration, and the
// timestamp format, producing a typed ValidationError on the first problem.
func validateHeader(path string, h *header) (*models.TaskRecord, error) {
	if strings.TrimSpace(h.ID) == "" {
		return nil, &ValidationError{Path: path, Field: "id", Reason: "required key is missing or empty"}
	}
	if strings.TrimSpace(h.Title) == "" {
		return nil, &ValidationError{Path: path, Field: "title", Reason: "required key is missing or empty"}
	}
	if strings.TrimSpace(h.Status) == "" {
		return nil, &ValidationError{Path: path, Field: "status", Reason: "required key is missing or empty"}
	}

	status, err := models.ParseStatus(h.Status)
	if err != nil {
		return nil, &ValidationError{Path: path, Field: "status", Reason: err.Error()}
	}

	lastUpdated := time.Now().UTC()
	if strings.TrimSpace(h.LastUpdated) != "" {
		lastUpdated, err = parseTimestamp(h.LastUpdated)
		if err != nil {
			return nil, &ValidationError{Path: path, Field: "last_updated", Reason: err.Error()}
		}
	}

	return &models.TaskRecord{
		ID:           strings.TrimSpace(h.ID),
		Title:        strings.TrimSpace(h.Title),
		Status:       status,
		Dependencies: h.Dependencies,
		LastUpdated:  lastUpdated,
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// Save serializes the record header back into fence form and rewrites the
// file atomically (write to a temp file in the same directory, then rename)
// so a crash never leaves a truncated record. Leading blank lines are
// trimmed from the body; the rest is written verbatim.
func (s *fileRecordStore) Save(path string, record *models.TaskRecord, body string) error {
	h := header{
		ID:           record.ID,
		Title:        record.Title,
		Status:       string(record.Status),
		Dependencies: record.Dependencies,
		LastUpdated:  record.LastUpdated.UTC().Format(time.RFC3339),
	}

	headerData, err := yaml.Marshal(&h)
	if err != nil {
		return fmt.Errorf("serializing record header: %w", err)
	}

	body = strings.TrimLeft(body, "\n")

	var sb strings.Builder
	sb.WriteString(headerFence)
	sb.WriteString("\n")
	sb.Write(headerData)
	sb.WriteString(headerFence)
	sb.WriteString("\n\n")
	sb.WriteString(body)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Discover lists task record files in the tasks directory, sorted by name.
// Subdirectories (including the worktree and archive dirs), the template,
// and "-plan" files are skipped.
func (s *fileRecordStore) Discover() ([]string, error) {
	entries, err := os.ReadDir(s.tasksDir)
	if err != nil {
		return nil, fmt.Errorf("reading tasks directory %s: %w", s.tasksDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !s.isRecordFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.tasksDir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// isRecordFile reports whether a file name denotes a task record.
func (s *fileRecordStore) isRecordFile(name string) bool {
	if name == "task-template.md" {
		return false
	}
	if strings.HasSuffix(name, "-plan.md") {
		return false
	}
	return recordFilePattern.MatchString(name)
}

// LoadAll loads every discovered record. Per-file failures are accumulated
// into the result so one bad record never hides problems in the rest of the
// set. Duplicate ids keep the first record and report the duplicate.
func (s *fileRecordStore) LoadAll() (*ScanResult, error) {
	paths, err := s.Discover()
	if err != nil {
		return nil, err
	}

	result := &ScanResult{ByID: make(map[string]*models.TaskRecord)}
	for _, path := range paths {
		record, _, err := s.Load(path)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		if first, dup := result.ByID[record.ID]; dup {
			result.Errors = append(result.Errors, &ValidationError{
				Path:   path,
				Field:  "id",
				Reason: fmt.Sprintf("duplicate id %q, first defined in %s", record.ID, first.Path),
			})
			continue
		}
		result.ByID[record.ID] = record
		result.Records = append(result.Records, record)
	}
	return result, nil
}

// FindByID resolves a task id to the record file with the matching two-digit
// prefix. Exactly one match is required.
func (s *fileRecordStore) FindByID(id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.tasksDir, id+"-*.md"))
	if err != nil {
		return "", fmt.Errorf("globbing for task %s: %w", id, err)
	}
	var candidates []string
	for _, m := range matches {
		if s.isRecordFile(filepath.Base(m)) {
			candidates = append(candidates, m)
		}
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("task %s not found in %s", id, s.tasksDir)
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", fmt.Errorf("task id %s is ambiguous: matches %s", id, strings.Join(candidates, ", "))
	}
}
