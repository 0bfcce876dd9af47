package task

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Filter keeps the tasks matching expr. Supported forms:
//
//	id=<glob>        e.g. id=api-*
//	title=<glob>     e.g. title=*login*
//	status=<value>
//	priority=<value>
//	assignee=<id>
//
// Dependencies on filtered-out tasks are dropped so the result is self-contained.
func Filter(tasks []Task, expr string) ([]Task, error) {
	if expr == "" {
		return CloneAll(tasks), nil
	}

	key, value, ok := strings.Cut(expr, "=")
	if !ok {
		return nil, fmt.Errorf("unsupported filter: %s (use id=GLOB, title=GLOB, status=X, priority=X or assignee=X)", expr)
	}

	var pred func(Task) bool
	switch strings.TrimSpace(key) {
	case "id":
		g, err := glob.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("invalid id pattern %q: %w", value, err)
		}
		pred = func(t Task) bool { return g.Match(t.ID) }
	case "title":
		g, err := glob.Compile(strings.ToLower(value))
		if err != nil {
			return nil, fmt.Errorf("invalid title pattern %q: %w", value, err)
		}
		pred = func(t Task) bool { return g.Match(strings.ToLower(t.Title)) }
	case "status":
		pred = func(t Task) bool { return t.Status == value }
	case "priority":
		pred = func(t Task) bool { return t.Priority == value }
	case "assignee":
		pred = func(t Task) bool {
			for _, a := range t.AssigneeIDs {
				if a == value {
					return true
				}
			}
			return false
		}
	default:
		return nil, fmt.Errorf("unsupported filter key %q", key)
	}

	kept := make(map[string]bool)
	var out []Task
	for _, t := range tasks {
		if pred(t) {
			kept[t.ID] = true
			out = append(out, t.Clone())
		}
	}
	for i := range out {
		deps := out[i].DependsOn[:0]
		for _, d := range out[i].DependsOn {
			if kept[d] {
				deps = append(deps, d)
			}
		}
		out[i].DependsOn = deps
	}
	return out, nil
}
