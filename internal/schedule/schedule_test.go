package schedule

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
)

func mk(id, start, due string, deps ...string) task.Task {
	t := task.Task{ID: id, Title: id, DependsOn: deps}
	if start != "" {
		t.StartDate = calendar.Ptr(calendar.MustParse(start))
	}
	if due != "" {
		t.DueDate = calendar.Ptr(calendar.MustParse(due))
	}
	return t
}

func byID(t *testing.T, tasks []task.Task, id string) task.Task {
	t.Helper()
	for _, tk := range tasks {
		if tk.ID == id {
			return tk
		}
	}
	t.Fatalf("task %s not found", id)
	return task.Task{}
}

func assertDates(t *testing.T, tk task.Task, start, due string) {
	t.Helper()
	if tk.StartDate == nil || tk.StartDate.String() != start {
		t.Errorf("%s: expected start %s, got %v", tk.ID, start, tk.StartDate)
	}
	if tk.DueDate == nil || tk.DueDate.String() != due {
		t.Errorf("%s: expected due %s, got %v", tk.ID, due, tk.DueDate)
	}
}

func TestAutoSchedule_PushesSuccessorPreservingDuration(t *testing.T) {
	// Y depends on X (X due Jan 12). Y starts Jan 10 and lasts 3 days.
	tasks := []task.Task{
		mk("x", "2024-01-08", "2024-01-12"),
		mk("y", "2024-01-10", "2024-01-13", "x"),
	}

	res := AutoSchedule(tasks)

	if !res.Converged {
		t.Fatal("expected convergence")
	}
	assertDates(t, byID(t, res.Tasks, "y"), "2024-01-12", "2024-01-15")
	assertDates(t, byID(t, res.Tasks, "x"), "2024-01-08", "2024-01-12")
	if len(res.Moved) != 1 || res.Moved[0] != "y" {
		t.Errorf("expected moved=[y], got %v", res.Moved)
	}

	// Input untouched.
	assertDates(t, tasks[1], "2024-01-10", "2024-01-13")
}

func TestAutoSchedule_UsesLatestPredecessor(t *testing.T) {
	tasks := []task.Task{
		mk("a", "2024-01-01", "2024-01-05"),
		mk("b", "2024-01-01", "2024-01-09"),
		mk("c", "2024-01-03", "2024-01-04", "a", "b"),
	}
	res := AutoSchedule(tasks)
	assertDates(t, byID(t, res.Tasks, "c"), "2024-01-09", "2024-01-10")
}

func TestAutoSchedule_NeverPullsEarlier(t *testing.T) {
	tasks := []task.Task{
		mk("a", "2024-01-01", "2024-01-02"),
		mk("b", "2024-02-01", "2024-02-03", "a"),
	}
	res := AutoSchedule(tasks)
	assertDates(t, byID(t, res.Tasks, "b"), "2024-02-01", "2024-02-03")
	if res.Passes != 1 {
		t.Errorf("expected a single confirming pass, got %d", res.Passes)
	}
}

func TestAutoSchedule_ChainInReverseListOrder(t *testing.T) {
	// The list is ordered against the dependency direction so each pass only
	// settles one more link.
	tasks := []task.Task{
		mk("d", "2024-01-01", "2024-01-02", "c"),
		mk("c", "2024-01-01", "2024-01-02", "b"),
		mk("b", "2024-01-01", "2024-01-02", "a"),
		mk("a", "2024-01-05", "2024-01-06"),
	}
	res := AutoSchedule(tasks)
	if !res.Converged {
		t.Fatal("expected convergence")
	}
	if res.Passes > MaxPasses(len(tasks)) {
		t.Errorf("passes %d exceed budget", res.Passes)
	}
	assertDates(t, byID(t, res.Tasks, "b"), "2024-01-06", "2024-01-07")
	assertDates(t, byID(t, res.Tasks, "c"), "2024-01-07", "2024-01-08")
	assertDates(t, byID(t, res.Tasks, "d"), "2024-01-08", "2024-01-09")
}

func TestAutoSchedule_MissingDatesDefaultToCounterpart(t *testing.T) {
	tasks := []task.Task{
		mk("a", "", "2024-01-10"),
		mk("b", "2024-01-05", "", "a"),
		mk("c", "", "", "a"),
	}
	res := AutoSchedule(tasks)

	b := byID(t, res.Tasks, "b")
	if b.StartDate == nil || b.StartDate.String() != "2024-01-10" {
		t.Errorf("expected b to start 2024-01-10, got %v", b.StartDate)
	}
	if b.DueDate != nil {
		t.Errorf("expected b due to stay unset, got %v", b.DueDate)
	}
	c := byID(t, res.Tasks, "c")
	if c.StartDate != nil || c.DueDate != nil {
		t.Errorf("expected dateless task untouched, got %v..%v", c.StartDate, c.DueDate)
	}
}

func TestAutoSchedule_CycleStopsAtBudget(t *testing.T) {
	tasks := []task.Task{
		mk("a", "2024-01-01", "2024-01-03", "b"),
		mk("b", "2024-01-01", "2024-01-03", "a"),
	}
	res := AutoSchedule(tasks)
	if res.Converged {
		t.Error("expected no convergence on a cyclic input")
	}
	if res.Passes != MaxPasses(len(tasks)) {
		t.Errorf("expected %d passes, got %d", MaxPasses(len(tasks)), res.Passes)
	}
	for _, tk := range res.Tasks {
		if tk.Duration() != 2 {
			t.Errorf("%s: duration changed to %d", tk.ID, tk.Duration())
		}
	}
}

func TestAutoSchedule_Empty(t *testing.T) {
	res := AutoSchedule(nil)
	if !res.Converged || res.Passes != 0 {
		t.Errorf("expected trivially converged result, got %+v", res)
	}
}

// randomDAG builds n tasks with random dates and edges that only point from a
// lower rank to a higher rank, shuffled so list order is arbitrary.
func randomDAG(rng *rand.Rand, n int) []task.Task {
	base := calendar.MustParse("2024-01-01")
	tasks := make([]task.Task, n)
	for i := range tasks {
		start := base.AddDays(rng.Intn(60))
		tasks[i] = task.Task{ID: fmt.Sprintf("t%02d", i)}
		tasks[i].SetBounds(start, start.AddDays(rng.Intn(10)))
		for j := 0; j < i; j++ {
			if rng.Intn(4) == 0 {
				tasks[i].DependsOn = append(tasks[i].DependsOn, tasks[j].ID)
			}
		}
	}
	rng.Shuffle(n, func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })
	return tasks
}

func assertOrdered(t *testing.T, tasks []task.Task) {
	t.Helper()
	idx := task.Index(tasks)
	for _, succ := range tasks {
		for _, predID := range succ.DependsOn {
			pred := tasks[idx[predID]]
			if pred.DueDate.After(*succ.StartDate) {
				t.Errorf("edge %s -> %s violated: due %s > start %s", pred.ID, succ.ID, pred.DueDate, succ.StartDate)
			}
		}
	}
}

func assertDurations(t *testing.T, before, after []task.Task) {
	t.Helper()
	idx := task.Index(after)
	for _, b := range before {
		a := after[idx[b.ID]]
		if a.Duration() != b.Duration() {
			t.Errorf("%s: duration %d -> %d", b.ID, b.Duration(), a.Duration())
		}
	}
}

func TestAutoSchedule_ConvergesOnRandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		tasks := randomDAG(rng, 2+rng.Intn(25))
		res := AutoSchedule(tasks)
		if !res.Converged {
			t.Fatalf("round %d: no convergence within %d passes", round, MaxPasses(len(tasks)))
		}
		assertOrdered(t, res.Tasks)
		assertDurations(t, tasks, res.Tasks)
	}
}

func TestPropagate_MatchesRelaxation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		tasks := randomDAG(rng, 2+rng.Intn(25))
		relaxed := AutoSchedule(tasks)
		topo := Propagate(tasks)
		if topo.Passes != 1 {
			t.Errorf("round %d: expected single pass, got %d", round, topo.Passes)
		}
		for i := range relaxed.Tasks {
			if !task.DatesEqual(relaxed.Tasks[i], topo.Tasks[i]) {
				t.Fatalf("round %d: %s differs: relax %s..%s topo %s..%s", round, relaxed.Tasks[i].ID,
					relaxed.Tasks[i].StartDate, relaxed.Tasks[i].DueDate, topo.Tasks[i].StartDate, topo.Tasks[i].DueDate)
			}
		}
	}
}

func TestPropagate_FallsBackOnCycle(t *testing.T) {
	tasks := []task.Task{
		mk("a", "2024-01-01", "2024-01-03", "b"),
		mk("b", "2024-01-01", "2024-01-03", "a"),
	}
	res := Propagate(tasks)
	if res.Converged {
		t.Error("expected relaxation fallback to report non-convergence")
	}
}

func TestForward_SelectsStrategy(t *testing.T) {
	tasks := []task.Task{
		mk("x", "2024-01-08", "2024-01-12"),
		mk("y", "2024-01-10", "2024-01-13", "x"),
	}
	for _, s := range []Strategy{StrategyRelax, StrategyTopological} {
		res := Forward(s, tasks)
		assertDates(t, byID(t, res.Tasks, "y"), "2024-01-12", "2024-01-15")
	}
}
