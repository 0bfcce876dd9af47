// Package store persists task documents and keeps them in sync with the
// timeline: file and SQLite collaborators that receive change notifications,
// and a watcher that reports external edits.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is a task list with its cycles.
type Document struct {
	Tasks  []task.Task  `json:"tasks" yaml:"tasks"`
	Cycles []task.Cycle `json:"cycles,omitempty" yaml:"cycles,omitempty"`

	// Warnings lists fields that were dropped while decoding.
	Warnings []string `json:"-" yaml:"-"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Tasks: task.CloneAll(d.Tasks)}
	if d.Cycles != nil {
		out.Cycles = append([]task.Cycle(nil), d.Cycles...)
	}
	return out
}

// FormatOf returns the document format for a file path.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a document, choosing the codec by extension.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Decode(data, format)
}

// Save writes a document in the format implied by its extension. The file is
// replaced atomically.
func Save(path string, doc *Document) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Decode parses a document in the given format.
func Decode(data []byte, format string) (*Document, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, format)
	}
}

// Encode serialises a document in the given format.
func Encode(doc *Document, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal document: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal document: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, format)
	}
}

// DecodeJSON parses either {"tasks": [...], "cycles": [...]} or a bare task
// array. Field names are accepted in snake_case or camelCase. Dates may be
// YYYY-MM-DD, RFC3339 or null; unparseable dates are dropped with a warning.
func DecodeJSON(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", errors.ErrDocumentInvalid)
	}
	root := gjson.ParseBytes(data)

	tasksVal := root
	if root.IsObject() {
		tasksVal = root.Get("tasks")
	}
	if tasksVal.Exists() && !tasksVal.IsArray() {
		return nil, fmt.Errorf("%w: tasks must be an array", errors.ErrDocumentInvalid)
	}

	doc := &Document{Tasks: []task.Task{}}
	var err error
	tasksVal.ForEach(func(_, v gjson.Result) bool {
		var t task.Task
		t, err = decodeTask(v, doc)
		if err != nil {
			return false
		}
		doc.Tasks = append(doc.Tasks, t)
		return true
	})
	if err != nil {
		return nil, err
	}

	if root.IsObject() {
		root.Get("cycles").ForEach(func(_, v gjson.Result) bool {
			c, ok := decodeCycle(v, doc)
			if ok {
				doc.Cycles = append(doc.Cycles, c)
			}
			return true
		})
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeYAML parses a YAML document with the same shape as the JSON form.
func DecodeYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDocumentInvalid, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]bool, len(d.Tasks))
	for i, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %d has no id", errors.ErrDocumentInvalid, i)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %q", errors.ErrDocumentInvalid, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func decodeTask(v gjson.Result, doc *Document) (task.Task, error) {
	if !v.IsObject() {
		return task.Task{}, fmt.Errorf("%w: task entry is not an object", errors.ErrDocumentInvalid)
	}
	t := task.Task{
		ID:       first(v, "id").String(),
		Title:    first(v, "title", "name").String(),
		Status:   first(v, "status").String(),
		Priority: first(v, "priority").String(),
	}
	t.StartDate = decodeDate(first(v, "start_date", "startDate", "start"), t.ID, "start_date", doc)
	t.DueDate = decodeDate(first(v, "due_date", "dueDate", "due", "end_date"), t.ID, "due_date", doc)

	for _, id := range first(v, "assignees_ids", "assigneeIds", "assignees").Array() {
		t.AssigneeIDs = append(t.AssigneeIDs, id.String())
	}
	for _, id := range first(v, "depends_on", "dependsOn", "dependencies").Array() {
		if s := id.String(); s != "" && !t.DependsOnID(s) {
			t.DependsOn = append(t.DependsOn, s)
		}
	}
	return t, nil
}

func decodeCycle(v gjson.Result, doc *Document) (task.Cycle, bool) {
	c := task.Cycle{
		ID:     first(v, "id").String(),
		Number: int(first(v, "number").Int()),
	}
	start := decodeDate(first(v, "start_date", "startDate"), c.ID, "start_date", doc)
	end := decodeDate(first(v, "end_date", "endDate"), c.ID, "end_date", doc)
	if start == nil || end == nil {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("cycle %q skipped: missing dates", c.ID))
		return c, false
	}
	c.StartDate, c.EndDate = *start, *end
	return c, true
}

func decodeDate(v gjson.Result, id, field string, doc *Document) *calendar.Date {
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return nil
	}
	d, err := calendar.Parse(v.String())
	if err != nil {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s.%s: %v", id, field, err))
		return nil
	}
	return &d
}

// first returns the first of the named fields that is present.
func first(v gjson.Result, names ...string) gjson.Result {
	for _, n := range names {
		if r := v.Get(n); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
