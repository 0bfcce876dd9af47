package graph

import (
	"fmt"
	"sort"

	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/task"
)

// Build constructs a TaskGraph from a task list. Predecessor references to
// ids not present in the list are ignored. Build does not reject cycles;
// callers that need an acyclic graph use DetectCycle or TopoOrder.
func Build(tasks []task.Task) *TaskGraph {
	g := &TaskGraph{
		Tasks:  make(map[string]*task.Task, len(tasks)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range tasks {
		g.Tasks[tasks[i].ID] = &tasks[i]
	}

	edgeSet := make(map[[2]string]bool)
	for i := range tasks {
		t := &tasks[i]
		for _, pred := range t.DependsOn {
			if _, ok := g.Tasks[pred]; !ok {
				continue
			}
			key := [2]string{pred, t.ID}
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			g.Adj[pred] = append(g.Adj[pred], t.ID)
			g.RevAdj[t.ID] = append(g.RevAdj[t.ID], pred)
		}
	}

	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	return g
}

// Roots returns the sorted ids of tasks with no predecessors.
func (g *TaskGraph) Roots() []string {
	var out []string
	for id := range g.Tasks {
		if len(g.RevAdj[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Leaves returns the sorted ids of tasks with no successors.
func (g *TaskGraph) Leaves() []string {
	var out []string
	for id := range g.Tasks {
		if len(g.Adj[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Tasks)
}

// Successors returns the ids of tasks that depend on id.
func (g *TaskGraph) Successors(id string) []string {
	return g.Adj[id]
}

// Predecessors returns the ids id depends on.
func (g *TaskGraph) Predecessors(id string) []string {
	return g.RevAdj[id]
}

// Connected returns the connected chain of id: id itself plus every task
// reachable by following predecessors and successors transitively, sorted.
func (g *TaskGraph) Connected(id string) []string {
	if _, ok := g.Tasks[id]; !ok {
		return nil
	}
	seen := map[string]bool{id: true}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Adj[cur] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
		for _, next := range g.RevAdj[cur] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := make([]string, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TopoOrder returns the task ids in dependency order (Kahn's algorithm, ties
// broken by id). It fails if the graph has a cycle.
func (g *TaskGraph) TopoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.Tasks))
	for id := range g.Tasks {
		inDegree[id] = len(g.RevAdj[id])
	}

	var queue []string
	for id := range g.Tasks {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.Tasks))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Tasks) {
		return nil, fmt.Errorf("topological sort failed: %w (%d of %d tasks sorted)", errors.ErrCycle, len(order), len(g.Tasks))
	}
	return order, nil
}
