package schedule

import (
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
)

// ReverseAutoSchedule pulls predecessors earlier: for every edge whose
// predecessor finishes after its successor starts, the predecessor is moved
// so its due date equals the successor's start. Tasks in fixed never move.
func ReverseAutoSchedule(tasks []task.Task, fixed map[string]bool) Result {
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
			succStart, _, ok := out[i].Bounds()
			if !ok {
				continue
			}
			for _, predID := range out[i].DependsOn {
				if fixed[predID] {
					continue
				}
				j, ok := idx[predID]
				if !ok {
					continue
				}
				_, predDue, ok := out[j].Bounds()
				if !ok || !predDue.After(succStart) {
					continue
				}
				out[j].Shift(calendar.DaysBetween(predDue, succStart))
				changed = true
				if !moved[predID] {
					moved[predID] = true
					res.Moved = append(res.Moved, predID)
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

// Reschedule runs the reverse pass with fixed tasks pinned, then the forward
// pass to resolve any violations the reverse pass introduced.
func Reschedule(strategy Strategy, tasks []task.Task, fixed map[string]bool) Result {
	rev := ReverseAutoSchedule(tasks, fixed)
	fwd := Forward(strategy, rev.Tasks)

	seen := make(map[string]bool, len(rev.Moved))
	moved := append([]string(nil), rev.Moved...)
	for _, id := range rev.Moved {
		seen[id] = true
	}
	for _, id := range fwd.Moved {
		if !seen[id] {
			moved = append(moved, id)
		}
	}

	return Result{
		Tasks:     fwd.Tasks,
		Passes:    rev.Passes + fwd.Passes,
		Converged: rev.Converged && fwd.Converged,
		Moved:     moved,
	}
}
