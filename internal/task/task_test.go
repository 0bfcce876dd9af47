package task

import (
	"testing"

	"github.com/NathanEdg/pulse/internal/calendar"
)

func d(s string) *calendar.Date {
	return calendar.Ptr(calendar.MustParse(s))
}

func TestClone_IsDeep(t *testing.T) {
	orig := Task{ID: "a", StartDate: d("2024-01-10"), DueDate: d("2024-01-12"), DependsOn: []string{"x"}}
	c := orig.Clone()
	c.Shift(3)
	c.DependsOn[0] = "y"

	if orig.StartDate.String() != "2024-01-10" {
		t.Errorf("clone shift leaked into original start: %s", orig.StartDate)
	}
	if orig.DependsOn[0] != "x" {
		t.Errorf("clone edge edit leaked into original: %v", orig.DependsOn)
	}
}

func TestBounds_DefaultsMissingDate(t *testing.T) {
	start, due, ok := Task{ID: "a", DueDate: d("2024-01-12")}.Bounds()
	if !ok {
		t.Fatal("expected ok with one date set")
	}
	if start != due || due.String() != "2024-01-12" {
		t.Errorf("expected both bounds at 2024-01-12, got %s..%s", start, due)
	}

	if _, _, ok := (Task{ID: "b"}).Bounds(); ok {
		t.Error("expected !ok for a task without dates")
	}
}

func TestShift_PreservesDuration(t *testing.T) {
	tk := Task{ID: "a", StartDate: d("2024-01-10"), DueDate: d("2024-01-12")}
	before := tk.Duration()
	tk.Shift(-40)
	if tk.Duration() != before {
		t.Errorf("expected duration %d, got %d", before, tk.Duration())
	}
	if tk.StartDate.String() != "2023-12-01" {
		t.Errorf("expected 2023-12-01, got %s", tk.StartDate)
	}
}

func TestChanged(t *testing.T) {
	before := []Task{
		{ID: "a", StartDate: d("2024-01-10"), DueDate: d("2024-01-12")},
		{ID: "b", StartDate: d("2024-01-12"), DueDate: d("2024-01-14")},
	}
	after := CloneAll(before)
	after[1].Shift(1)

	changed := Changed(before, after)
	if len(changed) != 1 || changed[0].ID != "b" {
		t.Fatalf("expected only b changed, got %v", changed)
	}
}

func TestFilter_IDGlobDropsDanglingEdges(t *testing.T) {
	tasks := []Task{
		{ID: "api-1", Title: "Auth"},
		{ID: "api-2", Title: "Login", DependsOn: []string{"api-1", "web-1"}},
		{ID: "web-1", Title: "Page"},
	}
	out, err := Filter(tasks, "id=api-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out))
	}
	if deps := out[1].DependsOn; len(deps) != 1 || deps[0] != "api-1" {
		t.Errorf("expected depends_on [api-1], got %v", deps)
	}
	if len(tasks[1].DependsOn) != 2 {
		t.Errorf("filter mutated its input: %v", tasks[1].DependsOn)
	}
}

func TestFilter_Title(t *testing.T) {
	tasks := []Task{{ID: "a", Title: "Design Login"}, {ID: "b", Title: "Ship"}}
	out, err := Filter(tasks, "title=*login*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Errorf("expected [a], got %v", out)
	}
}

func TestFilter_Unsupported(t *testing.T) {
	if _, err := Filter(nil, "colour=red"); err == nil {
		t.Error("expected error for unsupported key")
	}
	if _, err := Filter(nil, "nonsense"); err == nil {
		t.Error("expected error for expression without '='")
	}
}
