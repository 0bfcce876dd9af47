package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/task"
)

// FileStore keeps a document on disk in step with timeline changes. Every
// notification is written through immediately.
type FileStore struct {
	path   string
	logger *logging.Logger

	mu  sync.Mutex
	doc *Document
}

// OpenFile loads the document at path. A missing file starts empty and is
// created on the first save.
func OpenFile(path string, logger *logging.Logger) (*FileStore, error) {
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &FileStore{path: path, logger: logger.WithComponent("store")}

	doc, err := Load(path)
	switch {
	case err == nil:
		s.doc = doc
		for _, w := range doc.Warnings {
			s.logger.Warn("document field dropped", "path", path, "detail", w)
		}
	case errors.Is(err, os.ErrNotExist):
		s.doc = &Document{Tasks: []task.Task{}}
	default:
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Document returns a copy of the current document.
func (s *FileStore) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Reload re-reads the backing file, replacing the in-memory document.
func (s *FileStore) Reload() (*Document, error) {
	doc, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return doc.Clone(), nil
}

// Replace swaps in a new document and saves it.
func (s *FileStore) Replace(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return s.save()
}

// TaskMoved records new dates for a task.
func (s *FileStore) TaskMoved(t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.SetDates(t.ID, t.StartDate, t.DueDate); err != nil {
		return err
	}
	s.logger.Debug("task dates saved", "task_id", t.ID)
	return s.save()
}

// DependencyAdded records targetID depending on sourceID.
func (s *FileStore) DependencyAdded(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.AddEdge(sourceID, targetID); err != nil {
		return err
	}
	return s.save()
}

// DependencyRemoved drops the edge sourceID -> targetID.
func (s *FileStore) DependencyRemoved(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.RemoveEdge(sourceID, targetID); err != nil {
		return err
	}
	return s.save()
}

// Notice logs advisory errors; the document is unaffected.
func (s *FileStore) Notice(err error) {
	s.logger.Info("notice", "error", err)
}

func (s *FileStore) save() error {
	if err := Save(s.path, s.doc); err != nil {
		s.logger.Error("save failed", "path", s.path, "error", err)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// SetDates overwrites a task's dates.
func (d *Document) SetDates(id string, start, due *calendar.Date) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	d.Tasks[i].StartDate = copyDate(start)
	d.Tasks[i].DueDate = copyDate(due)
	return nil
}

// AddEdge appends sourceID to targetID's predecessors. Adding an existing
// edge is a no-op.
func (d *Document) AddEdge(sourceID, targetID string) error {
	i := d.index(targetID)
	if i < 0 || d.index(sourceID) < 0 {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrTaskNotFound)
	}
	if !d.Tasks[i].DependsOnID(sourceID) {
		d.Tasks[i].DependsOn = append(d.Tasks[i].DependsOn, sourceID)
	}
	return nil
}

// RemoveEdge drops sourceID from targetID's predecessors.
func (d *Document) RemoveEdge(sourceID, targetID string) error {
	i := d.index(targetID)
	if i < 0 {
		return errors.NewDependencyError("remove", sourceID, targetID, errors.ErrTaskNotFound)
	}
	deps := d.Tasks[i].DependsOn[:0]
	for _, dep := range d.Tasks[i].DependsOn {
		if dep != sourceID {
			deps = append(deps, dep)
		}
	}
	d.Tasks[i].DependsOn = deps
	return nil
}

func (d *Document) index(id string) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func copyDate(d *calendar.Date) *calendar.Date {
	if d == nil {
		return nil
	}
	return calendar.Ptr(*d)
}
