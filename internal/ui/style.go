package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintBanner renders the pulse banner to w.
func PrintBanner(w io.Writer) {
	frame := color.New(color.FgCyan)
	bars := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +----------------------------+")
	bars.Fprintln(w, "   |  ====                      |")
	bars.Fprintln(w, "   |      \\___ ======           |")
	bars.Fprintln(w, "   |                \\___ ====   |")
	brand.Fprintln(w, "   |       P  U  L  S  E        |")
	frame.Fprintln(w, "   +----------------------------+")
	fmt.Fprintf(w, "   %s\n", Dim("Interactive timeline scheduling"))
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// TaskPrefix returns a colored [task-id] prefix string. The same id always
// gets the same color.
func TaskPrefix(taskID string) string {
	c := taskColors[taskColorIndex(taskID)]
	return Dim("[") + c(taskID) + Dim("]")
}

// TaskColor returns the palette color for a task id.
func TaskColor(taskID string) func(a ...interface{}) string {
	return taskColors[taskColorIndex(taskID)]
}

// normalizeStatus folds the spellings trackers use for the same state.
func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "done", "completed", "complete", "closed":
		return "done"
	case "in_progress", "doing", "started", "active":
		return "in_progress"
	case "blocked":
		return "blocked"
	case "cancelled", "canceled":
		return "cancelled"
	default:
		return "todo"
	}
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch normalizeStatus(status) {
	case "done":
		return Green("✓")
	case "in_progress":
		return Cyan("●")
	case "blocked":
		return Red("✗")
	case "cancelled":
		return Dim("⊘")
	default:
		return Dim("◌")
	}
}

// Edge formats a dependency as "source -> target".
func Edge(sourceID, targetID string) string {
	return TaskPrefix(sourceID) + Dim(" -> ") + TaskPrefix(targetID)
}

// Days formats a signed day count, e.g. "+3d".
func Days(n int) string {
	switch {
	case n > 0:
		return Green(fmt.Sprintf("+%dd", n))
	case n < 0:
		return Yellow(fmt.Sprintf("%dd", n))
	default:
		return Dim("0d")
	}
}
