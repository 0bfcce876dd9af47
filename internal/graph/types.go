package graph

import "github.com/NathanEdg/pulse/internal/task"

// TaskGraph is the dependency graph of a task list. It is rebuilt from the
// task list whenever the list changes; it is never edited in place.
type TaskGraph struct {
	Tasks  map[string]*task.Task
	Adj    map[string][]string // task -> successors (tasks that depend on it)
	RevAdj map[string][]string // task -> predecessors (its depends_on, known ids only)
}
