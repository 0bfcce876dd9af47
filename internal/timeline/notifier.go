package timeline

import (
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/task"
)

// Notifier receives committed changes. Local state is updated before the
// notifier is called; returned errors are logged and never roll back.
type Notifier interface {
	TaskMoved(t task.Task) error
	DependencyAdded(sourceID, targetID string) error
	DependencyRemoved(sourceID, targetID string) error
	// Notice surfaces an advisory error, such as a rejected dependency.
	Notice(err error)
}

// NopNotifier ignores everything.
type NopNotifier struct{}

func (NopNotifier) TaskMoved(task.Task) error             { return nil }
func (NopNotifier) DependencyAdded(string, string) error   { return nil }
func (NopNotifier) DependencyRemoved(string, string) error { return nil }
func (NopNotifier) Notice(error)                           {}

// Notifiers fans out to each notifier in order. Errors are joined.
type Notifiers []Notifier

func (ns Notifiers) TaskMoved(t task.Task) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.TaskMoved(t))
	}
	return errors.Join(errs...)
}

func (ns Notifiers) DependencyAdded(sourceID, targetID string) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.DependencyAdded(sourceID, targetID))
	}
	return errors.Join(errs...)
}

func (ns Notifiers) DependencyRemoved(sourceID, targetID string) error {
	var errs []error
	for _, n := range ns {
		errs = append(errs, n.DependencyRemoved(sourceID, targetID))
	}
	return errors.Join(errs...)
}

func (ns Notifiers) Notice(err error) {
	for _, n := range ns {
		n.Notice(err)
	}
}

// Recorder is a Notifier that keeps every call instead of persisting it.
// Dry runs use it to report what would have been written.
type Recorder struct {
	Moved   []task.Task
	Added   []Edge
	Removed []Edge
	Notices []error
}

func (r *Recorder) TaskMoved(t task.Task) error {
	r.Moved = append(r.Moved, t.Clone())
	return nil
}

func (r *Recorder) DependencyAdded(sourceID, targetID string) error {
	r.Added = append(r.Added, Edge{SourceID: sourceID, TargetID: targetID})
	return nil
}

func (r *Recorder) DependencyRemoved(sourceID, targetID string) error {
	r.Removed = append(r.Removed, Edge{SourceID: sourceID, TargetID: targetID})
	return nil
}

func (r *Recorder) Notice(err error) {
	r.Notices = append(r.Notices, err)
}
