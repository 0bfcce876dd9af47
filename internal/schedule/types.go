package schedule

import "github.com/NathanEdg/pulse/internal/task"

// Result holds the outcome of a scheduling pass.
type Result struct {
	Tasks     []task.Task // rescheduled copy; the input is never modified
	Passes    int         // full passes over the task list
	Converged bool        // false when the pass budget ran out first
	Moved     []string    // ids whose dates changed, in first-moved order
}

// Strategy selects how the forward pass is computed.
type Strategy string

const (
	// StrategyRelax repeats full passes until nothing changes (bounded).
	StrategyRelax Strategy = "relax"
	// StrategyTopological propagates once in dependency order and falls back
	// to relaxation if the graph turns out to be cyclic.
	StrategyTopological Strategy = "topological"
)

// ValidStrategies returns the accepted strategy names.
func ValidStrategies() []string {
	return []string{string(StrategyRelax), string(StrategyTopological)}
}
