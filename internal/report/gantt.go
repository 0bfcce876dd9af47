package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/NathanEdg/pulse/internal/axis"
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/ui"
)

// labelWidth is the column reserved for task ids in the gantt chart.
const labelWidth = 12

// PrintGantt draws one row per task with its bar at one column per day. When
// the span does not fit in width columns the scale drops below one column
// per day.
func PrintGantt(w io.Writer, tasks []task.Task, width int) {
	first, last, ok := span(tasks)
	if !ok {
		fmt.Fprintln(w, ui.Dim("no scheduled tasks"))
		return
	}

	cols := width - labelWidth - 2
	if cols < 10 {
		cols = 10
	}
	days := calendar.DaysBetween(first, last) + 1
	ppd := 1.0
	if days > cols {
		ppd = float64(cols) / float64(days)
	}
	p := &axis.Projector{Anchor: first, PixelsPerDay: ppd}
	total := int(math.Ceil(float64(days) * ppd))

	fmt.Fprintf(w, "%s %s\n", strings.Repeat(" ", labelWidth), header(p, first, last, cols))

	for _, t := range tasks {
		label := t.ID
		if len(label) > labelWidth {
			label = label[:labelWidth-1] + "…"
		}
		bar, ok := p.BarGeometry(t)
		if !ok {
			fmt.Fprintf(w, "%-*s %s\n", labelWidth, label, ui.Dim("·"))
			continue
		}
		left := int(math.Floor(bar.Left))
		n := int(math.Max(1, math.Round(bar.Width)))
		if left+n > total {
			n = total - left
		}
		row := strings.Repeat(" ", left) + ui.TaskColor(t.ID)(strings.Repeat("█", n))
		fmt.Fprintf(w, "%-*s %s\n", labelWidth, label, row)
	}
}

// header labels each month start that fits in width columns.
func header(p *axis.Projector, first, last calendar.Date, width int) string {
	line := []rune(strings.Repeat(" ", width))
	for m := first.StartOfMonth(); !m.After(last); m = m.AddMonths(1) {
		x := int(math.Floor(p.DateToX(calendar.Max(m, first))))
		label := []rune(m.Time().Format("Jan"))
		if m.Time().Month() == 1 || m <= first {
			label = []rune(m.Time().Format("Jan 06"))
		}
		if x < 0 || x+len(label) > width {
			continue
		}
		// Skip labels that would overwrite the previous one.
		if x > 0 && line[x-1] != ' ' {
			continue
		}
		copy(line[x:], label)
	}
	return ui.Dim(strings.TrimRight(string(line), " "))
}

func span(tasks []task.Task) (first, last calendar.Date, ok bool) {
	for _, t := range tasks {
		start, due, has := t.Bounds()
		if !has {
			continue
		}
		lo, hi := calendar.Min(start, due), calendar.Max(start, due)
		if !ok {
			first, last, ok = lo, hi, true
			continue
		}
		first, last = calendar.Min(first, lo), calendar.Max(last, hi)
	}
	return first, last, ok
}
