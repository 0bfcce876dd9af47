// Package schedule pushes tasks along the date axis so that every task starts
// no earlier than its predecessors finish.
//
// Both directions translate tasks without changing their duration. The
// relaxation passes are bounded by 2 × len(tasks); hitting the bound is not
// an error, the result simply reports Converged=false.
package schedule

import (
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/graph"
	"github.com/NathanEdg/pulse/internal/task"
)

// MaxPasses is the pass budget for n tasks.
func MaxPasses(n int) int {
	return 2 * n
}

// Forward runs the forward pass with the given strategy.
func Forward(strategy Strategy, tasks []task.Task) Result {
	if strategy == StrategyTopological {
		return Propagate(tasks)
	}
	return AutoSchedule(tasks)
}

// AutoSchedule moves every task whose predecessors finish after it starts so
// that it starts on the latest predecessor due date, repeating full passes
// until one pass changes nothing or the pass budget is spent.
func AutoSchedule(tasks []task.Task) Result {
	out := task.CloneAll(tasks)
	idx := task.Index(out)
	res := Result{Tasks: out, Converged: true}
	moved := make(map[string]bool)

	limit := MaxPasses(len(out))
	if limit == 0 {
		return res
	}

	res.Converged = false
	for res.Passes < limit {
		res.Passes++
		changed := false
		for i := range out {
			if pushAfterPredecessors(out, idx, i) {
				changed = true
				if !moved[out[i].ID] {
					moved[out[i].ID] = true
					res.Moved = append(res.Moved, out[i].ID)
				}
			}
		}
		if !changed {
			res.Converged = true
			break
		}
	}
	return res
}

// Propagate computes the same fixed point as AutoSchedule in a single pass over
// the tasks in topological order. A cycle found at runtime falls back to
// AutoSchedule.
func Propagate(tasks []task.Task) Result {
	out := task.CloneAll(tasks)
	order, err := graph.Build(out).TopoOrder()
	if err != nil {
		return AutoSchedule(tasks)
	}

	idx := task.Index(out)
	res := Result{Tasks: out, Passes: 1, Converged: true}
	for _, id := range order {
		i := idx[id]
		if pushAfterPredecessors(out, idx, i) {
			res.Moved = append(res.Moved, id)
		}
	}
	return res
}

// pushAfterPredecessors shifts out[i] so it starts on its latest predecessor
// due date when a predecessor finishes after it starts. Reports whether it moved.
func pushAfterPredecessors(out []task.Task, idx map[string]int, i int) bool {
	t := &out[i]
	if len(t.DependsOn) == 0 {
		return false
	}
	start, _, ok := t.Bounds()
	if !ok {
		return false
	}
	latest, ok := latestDue(out, idx, t.DependsOn)
	if !ok || !latest.After(start) {
		return false
	}
	t.Shift(calendar.DaysBetween(start, latest))
	return true
}

// latestDue returns the maximum due date among the given predecessors.
func latestDue(tasks []task.Task, idx map[string]int, preds []string) (calendar.Date, bool) {
	var latest calendar.Date
	found := false
	for _, id := range preds {
		j, ok := idx[id]
		if !ok {
			continue
		}
		_, due, ok := tasks[j].Bounds()
		if !ok {
			continue
		}
		if !found || due.After(latest) {
			latest = due
			found = true
		}
	}
	return latest, found
}
