// Package task holds the timeline's task and cycle model and the copy and
// date helpers the scheduler and controller share.
package task

import (
	"github.com/NathanEdg/pulse/internal/calendar"
)

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.StartDate != nil {
		c.StartDate = calendar.Ptr(*t.StartDate)
	}
	if t.DueDate != nil {
		c.DueDate = calendar.Ptr(*t.DueDate)
	}
	if t.AssigneeIDs != nil {
		c.AssigneeIDs = append([]string(nil), t.AssigneeIDs...)
	}
	if t.DependsOn != nil {
		c.DependsOn = append([]string(nil), t.DependsOn...)
	}
	return c
}

// CloneAll deep-copies a task list.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// HasDates reports whether both start and due are set.
func (t Task) HasDates() bool {
	return t.StartDate != nil && t.DueDate != nil
}

// Bounds returns the task's start and due dates, defaulting a missing date
// to its counterpart. ok is false when neither date is set.
func (t Task) Bounds() (start, due calendar.Date, ok bool) {
	switch {
	case t.StartDate != nil && t.DueDate != nil:
		return *t.StartDate, *t.DueDate, true
	case t.StartDate != nil:
		return *t.StartDate, *t.StartDate, true
	case t.DueDate != nil:
		return *t.DueDate, *t.DueDate, true
	default:
		return 0, 0, false
	}
}

// Duration is due minus start in days, 0 when either date is missing.
func (t Task) Duration() int {
	if !t.HasDates() {
		return 0
	}
	return calendar.DaysBetween(*t.StartDate, *t.DueDate)
}

// Shift translates both dates by days. Missing dates stay missing.
func (t *Task) Shift(days int) {
	if t.StartDate != nil {
		t.StartDate = calendar.Ptr(t.StartDate.AddDays(days))
	}
	if t.DueDate != nil {
		t.DueDate = calendar.Ptr(t.DueDate.AddDays(days))
	}
}

// SetBounds assigns both dates.
func (t *Task) SetBounds(start, due calendar.Date) {
	t.StartDate = calendar.Ptr(start)
	t.DueDate = calendar.Ptr(due)
}

// DependsOnID reports whether id is one of t's predecessors.
func (t Task) DependsOnID(id string) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// DatesEqual reports whether a and b have the same start and due dates.
func DatesEqual(a, b Task) bool {
	return datePtrEqual(a.StartDate, b.StartDate) && datePtrEqual(a.DueDate, b.DueDate)
}

func datePtrEqual(a, b *calendar.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Index maps task ids to their position in tasks.
func Index(tasks []Task) map[string]int {
	idx := make(map[string]int, len(tasks))
	for i := range tasks {
		idx[tasks[i].ID] = i
	}
	return idx
}

// Changed returns the tasks in after whose dates differ from the task with the
// same id in before. Tasks absent from before are not reported.
func Changed(before, after []Task) []Task {
	prev := Index(before)
	var changed []Task
	for _, t := range after {
		i, ok := prev[t.ID]
		if !ok {
			continue
		}
		if !DatesEqual(before[i], t) {
			changed = append(changed, t.Clone())
		}
	}
	return changed
}
