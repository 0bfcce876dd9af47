package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func mk(id, start, due string, deps ...string) task.Task {
	t := task.Task{ID: id, Title: "Task " + strings.ToUpper(id), DependsOn: deps}
	if start != "" {
		t.StartDate = calendar.Ptr(calendar.MustParse(start))
	}
	if due != "" {
		t.DueDate = calendar.Ptr(calendar.MustParse(due))
	}
	return t
}

func makeTasks() []task.Task {
	return []task.Task{
		mk("a", "2024-01-10", "2024-01-14"),
		mk("b", "2024-01-12", "2024-01-13", "a"),
		mk("c", "", ""),
	}
}

func TestViolations(t *testing.T) {
	v := Violations(makeTasks())
	if len(v) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(v))
	}
	if v[0].SourceID != "a" || v[0].TargetID != "b" || v[0].Days != 2 {
		t.Errorf("unexpected violation: %+v", v[0])
	}

	res := schedule.AutoSchedule(makeTasks())
	if v := Violations(res.Tasks); len(v) != 0 {
		t.Errorf("expected no violations after scheduling, got %v", v)
	}
}

func TestPrintTable(t *testing.T) {
	before := makeTasks()
	rpt := FromResult(before, schedule.AutoSchedule(before))

	var buf bytes.Buffer
	rpt.PrintTable(&buf)
	out := buf.String()

	if !strings.Contains(out, "Pulse Schedule") {
		t.Error("expected header")
	}
	if !strings.Contains(out, "1 moved") {
		t.Errorf("expected moved count in header, got:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-14 → 2024-01-15") {
		t.Errorf("expected rescheduled dates for b, got:\n%s", out)
	}
	if !strings.Contains(out, "+2d") {
		t.Errorf("expected shift marker, got:\n%s", out)
	}
	if !strings.Contains(out, "unscheduled") {
		t.Error("expected undated task marked unscheduled")
	}
	if strings.Contains(out, "Unsatisfied") {
		t.Error("expected no violations after scheduling")
	}
}

func TestPrintTable_ShowsViolations(t *testing.T) {
	var buf bytes.Buffer
	New(makeTasks()).PrintTable(&buf)
	if !strings.Contains(buf.String(), "Unsatisfied dependencies") {
		t.Errorf("expected violation section, got:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	before := makeTasks()
	data, err := FromResult(before, schedule.AutoSchedule(before)).JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Tasks []struct {
			ID        string `json:"id"`
			StartDate string `json:"start_date"`
			Moved     bool   `json:"moved"`
			ShiftDays int    `json:"shift_days"`
		} `json:"tasks"`
		Moved      []string `json:"moved"`
		Converged  *bool    `json:"converged"`
		Violations []any    `json:"violations"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(out.Tasks))
	}
	if !out.Tasks[1].Moved || out.Tasks[1].ShiftDays != 2 || out.Tasks[1].StartDate != "2024-01-14" {
		t.Errorf("unexpected row for b: %+v", out.Tasks[1])
	}
	if len(out.Moved) != 1 || out.Moved[0] != "b" {
		t.Errorf("expected [b] moved, got %v", out.Moved)
	}
	if out.Converged == nil || !*out.Converged {
		t.Error("expected converged=true")
	}
	if out.Violations == nil || len(out.Violations) != 0 {
		t.Errorf("expected empty violations array, got %v", out.Violations)
	}
}

func TestSummary(t *testing.T) {
	s := New(makeTasks()).Summary()
	if !strings.Contains(s, "3 total, 2 scheduled") {
		t.Errorf("unexpected summary:\n%s", s)
	}
	if !strings.Contains(s, "1 dependencies") {
		t.Errorf("expected violation count, got:\n%s", s)
	}
	if !strings.Contains(s, "Starts:    a, c") || !strings.Contains(s, "Ends:      b, c") {
		t.Errorf("expected chain starts and ends, got:\n%s", s)
	}
}

func TestWriteDOT(t *testing.T) {
	var buf bytes.Buffer
	WriteDOT(&buf, makeTasks())
	out := buf.String()

	if !strings.HasPrefix(out, "digraph pulse {") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, `"a" -> "b" [color=red, penwidth=2];`) {
		t.Errorf("expected violated edge in red, got:\n%s", out)
	}
	if !strings.Contains(out, `2024-01-10..2024-01-14`) {
		t.Error("expected dates in label")
	}
}

func TestPrintGantt(t *testing.T) {
	var buf bytes.Buffer
	PrintGantt(&buf, makeTasks(), 80)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Jan 24") {
		t.Errorf("expected month label, got %q", lines[0])
	}
	// a spans 5 days from column 0; b starts 2 days later.
	if got := strings.Count(lines[1], "█"); got != 5 {
		t.Errorf("expected 5 cells for a, got %d", got)
	}
	pad := labelWidth + 1
	if lines[2][pad:pad+2] != "  " || strings.Count(lines[2], "█") != 2 {
		t.Errorf("unexpected row for b: %q", lines[2])
	}
	if !strings.Contains(lines[3], "·") {
		t.Errorf("expected undated marker, got %q", lines[3])
	}
}

func TestPrintGantt_ScalesToWidth(t *testing.T) {
	tasks := []task.Task{mk("long", "2024-01-01", "2024-12-31")}
	var buf bytes.Buffer
	PrintGantt(&buf, tasks, 62)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if got := strings.Count(lines[1], "█"); got > 62-labelWidth-2 {
		t.Errorf("bar overflows width: %d cells", got)
	}
}

func TestPrintGantt_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintGantt(&buf, []task.Task{mk("x", "", "")}, 80)
	if !strings.Contains(buf.String(), "no scheduled tasks") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
