package timeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/NathanEdg/pulse/internal/task"
)

// State is the controller's local working copy of the task list. It is
// seeded from the external list and only re-seeded when that list's
// content changes. The external slices are never mutated.
type State struct {
	tasks    []task.Task
	cycles   []task.Cycle
	identity string
	version  int
}

// NewState seeds a state from the external lists.
func NewState(tasks []task.Task, cycles []task.Cycle) *State {
	s := &State{}
	s.Reconcile(tasks, cycles)
	return s
}

// Reconcile re-seeds the local copy when the external lists differ from the
// last ones seen. Reports whether it re-seeded.
func (s *State) Reconcile(tasks []task.Task, cycles []task.Cycle) bool {
	id := Fingerprint(tasks, cycles)
	if s.identity != "" && id == s.identity {
		return false
	}
	s.identity = id
	s.tasks = task.CloneAll(tasks)
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	s.cycles = append([]task.Cycle(nil), cycles...)
	s.version++
	return true
}

// Tasks returns a copy of the local tasks.
func (s *State) Tasks() []task.Task {
	return task.CloneAll(s.tasks)
}

// Cycles returns a copy of the cycles.
func (s *State) Cycles() []task.Cycle {
	return append([]task.Cycle(nil), s.cycles...)
}

// Task looks up a local task by id.
func (s *State) Task(id string) (task.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return task.Task{}, false
}

// Len is the number of local tasks.
func (s *State) Len() int {
	return len(s.tasks)
}

// Version increments on every re-seed and commit.
func (s *State) Version() int {
	return s.version
}

// view exposes the local tasks without copying. Callers must not mutate.
func (s *State) view() []task.Task {
	return s.tasks
}

func (s *State) commit(tasks []task.Task) {
	s.tasks = tasks
	s.version++
}

// Fingerprint identifies a task/cycle list by content: ordered ids, every
// task field and every cycle field.
func Fingerprint(tasks []task.Task, cycles []task.Cycle) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, t := range tasks {
		write("t")
		write(t.ID)
		write(t.Title)
		write(t.Status)
		write(t.Priority)
		if t.StartDate != nil {
			write(t.StartDate.String())
		} else {
			write("-")
		}
		if t.DueDate != nil {
			write(t.DueDate.String())
		} else {
			write("-")
		}
		write("d")
		for _, dep := range t.DependsOn {
			write(dep)
		}
		write("a")
		for _, a := range t.AssigneeIDs {
			write(a)
		}
		write(";")
	}
	for _, c := range cycles {
		write("c")
		write(c.ID)
		write(strconv.Itoa(c.Number))
		write(c.StartDate.String())
		write(c.EndDate.String())
	}
	return hex.EncodeToString(h.Sum(nil))
}
