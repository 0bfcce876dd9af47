package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/graph"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/ui"
)

// Report describes a schedule: the tasks as they are and, when a scheduling
// pass ran, how they got there.
type Report struct {
	Before []task.Task
	Tasks  []task.Task
	Result *schedule.Result
}

// New creates a Report for tasks that were not rescheduled.
func New(tasks []task.Task) *Report {
	return &Report{Before: tasks, Tasks: tasks}
}

// FromResult creates a Report for a scheduling pass over before.
func FromResult(before []task.Task, res schedule.Result) *Report {
	return &Report{Before: before, Tasks: res.Tasks, Result: &res}
}

// Violation is a dependency whose predecessor finishes after the successor
// starts.
type Violation struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
	Days     int    `json:"days"`
}

// Violations lists every unsatisfied dependency among dated tasks.
func Violations(tasks []task.Task) []Violation {
	idx := task.Index(tasks)
	var out []Violation
	for _, t := range tasks {
		start, _, ok := t.Bounds()
		if !ok {
			continue
		}
		for _, dep := range t.DependsOn {
			i, known := idx[dep]
			if !known {
				continue
			}
			_, due, ok := tasks[i].Bounds()
			if ok && due.After(start) {
				out = append(out, Violation{SourceID: dep, TargetID: t.ID, Days: calendar.DaysBetween(start, due)})
			}
		}
	}
	return out
}

// shift returns how many days a task's start moved between before and after.
func (r *Report) shift(id string) (int, bool) {
	bi, ok := task.Index(r.Before)[id]
	if !ok {
		return 0, false
	}
	ai, ok := task.Index(r.Tasks)[id]
	if !ok {
		return 0, false
	}
	if task.DatesEqual(r.Before[bi], r.Tasks[ai]) {
		return 0, false
	}
	bs, _, okB := r.Before[bi].Bounds()
	as, _, okA := r.Tasks[ai].Bounds()
	if !okB || !okA {
		return 0, true
	}
	return calendar.DaysBetween(bs, as), true
}

// PrintTable writes a terminal-friendly schedule table.
func (r *Report) PrintTable(w io.Writer) {
	changed := task.Changed(r.Before, r.Tasks)
	fmt.Fprintf(w, "📅 %s — %d tasks", ui.BoldCyan("Pulse Schedule"), len(r.Tasks))
	if r.Result != nil {
		fmt.Fprintf(w, ", %d moved", len(changed))
		if !r.Result.Converged {
			fmt.Fprintf(w, " %s", ui.Red(fmt.Sprintf("(did not settle after %d passes)", r.Result.Passes)))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Cyan("══════════════════════════"))
	fmt.Fprintln(w)

	for _, t := range r.Tasks {
		r.printTask(w, t)
	}

	if v := Violations(r.Tasks); len(v) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.BoldRed("Unsatisfied dependencies:"))
		for _, x := range v {
			fmt.Fprintf(w, "  %s %s %s\n", ui.Red("✗"), ui.Edge(x.SourceID, x.TargetID), ui.Dim(fmt.Sprintf("(overlaps %dd)", x.Days)))
		}
	}
}

func (r *Report) printTask(w io.Writer, t task.Task) {
	title := t.Title
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	dates := ui.Dim("unscheduled")
	dur := ""
	if start, due, ok := t.Bounds(); ok {
		dates = fmt.Sprintf("%s → %s", start, due)
		dur = ui.Dim(fmt.Sprintf("[%dd]", t.Duration()+1))
	}

	deps := ""
	if n := len(t.DependsOn); n > 0 {
		deps = ui.Dim(fmt.Sprintf("⇠%d", n))
	}

	moved := ""
	if days, ok := r.shift(t.ID); ok {
		moved = ui.Days(days)
	}

	fmt.Fprintf(w, "  %s %-10s %-40s %-24s %s %s %s\n",
		ui.StatusIcon(t.Status), ui.BoldMagenta(t.ID), title, dates, dur, deps, moved)
}

// Summary returns a one-paragraph summary of the scheduling pass.
func (r *Report) Summary() string {
	var b strings.Builder
	changed := task.Changed(r.Before, r.Tasks)
	dated := 0
	for _, t := range r.Tasks {
		if t.HasDates() {
			dated++
		}
	}
	fmt.Fprintf(&b, "Tasks:     %d total, %d scheduled\n", len(r.Tasks), dated)
	fmt.Fprintf(&b, "Moved:     %d\n", len(changed))
	g := graph.Build(r.Tasks)
	fmt.Fprintf(&b, "Starts:    %s\n", strings.Join(g.Roots(), ", "))
	fmt.Fprintf(&b, "Ends:      %s\n", strings.Join(g.Leaves(), ", "))
	if r.Result != nil {
		status := ui.BoldGreen("settled")
		if !r.Result.Converged {
			status = ui.BoldRed("not settled")
		}
		fmt.Fprintf(&b, "Passes:    %d (%s)\n", r.Result.Passes, status)
	}
	if v := Violations(r.Tasks); len(v) > 0 {
		fmt.Fprintf(&b, "Violated:  %s\n", ui.Red(fmt.Sprintf("%d dependencies", len(v))))
	}
	return b.String()
}

// JSON returns a machine-readable report.
func (r *Report) JSON() ([]byte, error) {
	type taskRow struct {
		ID        string         `json:"id"`
		Title     string         `json:"title"`
		Status    string         `json:"status,omitempty"`
		StartDate *calendar.Date `json:"start_date"`
		DueDate   *calendar.Date `json:"due_date"`
		DependsOn []string       `json:"depends_on,omitempty"`
		Moved     bool           `json:"moved"`
		ShiftDays int            `json:"shift_days,omitempty"`
	}
	type output struct {
		Tasks      []taskRow   `json:"tasks"`
		Moved      []string    `json:"moved"`
		Passes     int         `json:"passes,omitempty"`
		Converged  *bool       `json:"converged,omitempty"`
		Violations []Violation `json:"violations"`
	}

	o := output{Moved: []string{}, Violations: Violations(r.Tasks)}
	if o.Violations == nil {
		o.Violations = []Violation{}
	}
	for _, t := range r.Tasks {
		row := taskRow{
			ID: t.ID, Title: t.Title, Status: t.Status,
			StartDate: t.StartDate, DueDate: t.DueDate, DependsOn: t.DependsOn,
		}
		if days, ok := r.shift(t.ID); ok {
			row.Moved, row.ShiftDays = true, days
			o.Moved = append(o.Moved, t.ID)
		}
		o.Tasks = append(o.Tasks, row)
	}
	if r.Result != nil {
		o.Passes = r.Result.Passes
		o.Converged = &r.Result.Converged
	}
	return json.MarshalIndent(o, "", "  ")
}

// WriteDOT writes the dependency graph in Graphviz format. Unsatisfied edges
// are drawn in red.
func WriteDOT(w io.Writer, tasks []task.Task) {
	g := graph.Build(tasks)
	violated := make(map[[2]string]bool)
	for _, v := range Violations(tasks) {
		violated[[2]string{v.SourceID, v.TargetID}] = true
	}

	fmt.Fprintln(w, "digraph pulse {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, t := range tasks {
		label := fmt.Sprintf("%s\\n%s", t.ID, escapeDOT(t.Title))
		if start, due, ok := t.Bounds(); ok {
			label += fmt.Sprintf("\\n%s..%s", start, due)
		}
		fmt.Fprintf(w, "  %q [label=\"%s\"];\n", t.ID, label)
	}

	fmt.Fprintln(w)

	for _, t := range tasks {
		for _, succ := range g.Successors(t.ID) {
			style := ""
			if violated[[2]string{t.ID, succ}] {
				style = " [color=red, penwidth=2]"
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", t.ID, succ, style)
		}
	}

	fmt.Fprintln(w, "}")
}

func escapeDOT(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
