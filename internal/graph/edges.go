package graph

import (
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/task"
)

// HasCycle reports whether targetID is reachable from sourceID by following
// depends_on edges. Adding the edge target.depends_on += source is illegal
// when it returns true, since source already (transitively) depends on target.
func HasCycle(sourceID, targetID string, tasks []task.Task) bool {
	byID := make(map[string]*task.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	visited := make(map[string]bool)
	var dfs func(id string) bool
	dfs = func(id string) bool {
		if id == targetID {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true

		t, ok := byID[id]
		if !ok {
			return false
		}
		for _, dep := range t.DependsOn {
			if dfs(dep) {
				return true
			}
		}
		return false
	}

	return dfs(sourceID)
}

// CanAddEdge validates the edge target.depends_on += source against tasks.
// The returned error wraps ErrTaskNotFound, ErrSelfDependency,
// ErrDuplicateEdge or ErrCycle.
func CanAddEdge(sourceID, targetID string, tasks []task.Task) error {
	idx := task.Index(tasks)
	if _, ok := idx[sourceID]; !ok {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrTaskNotFound)
	}
	ti, ok := idx[targetID]
	if !ok {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrTaskNotFound)
	}
	if sourceID == targetID {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrSelfDependency)
	}
	if tasks[ti].DependsOnID(sourceID) {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrDuplicateEdge)
	}
	if HasCycle(sourceID, targetID, tasks) {
		return errors.NewDependencyError("add", sourceID, targetID, errors.ErrCycle)
	}
	return nil
}
