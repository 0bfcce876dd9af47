package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NathanEdg/pulse/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

const helpText = "←/→ scroll  ↑/↓ select  </> move  l link  tab select dep  x remove  a auto  +/- zoom  q quit"

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBoundary
	cellBand
	cellBar
	cellDragging
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width <= LabelWidth {
		return "terminal too narrow"
	}

	l := m.tl.Layout()
	var b strings.Builder

	title := titleStyle.Render("pulse")
	info := mutedStyle.Render(fmt.Sprintf("  %d tasks  %g cells/day", m.tl.State().Len(), l.PixelsPerDay))
	if l.Drag != nil {
		info += draggingStyle.Render(fmt.Sprintf("  %s %s %+dd", l.Drag.Kind, l.Drag.TaskID, l.Drag.DaysShift))
	}
	if m.linking {
		info += draggingStyle.Render("  linking")
	}
	b.WriteString(title + info + "\n")
	b.WriteString(m.renderMonths(l) + "\n")

	bars := make(map[int]timeline.BarLayout, len(l.Bars))
	for _, bar := range l.Bars {
		bars[bar.Row] = bar
	}

	tasks := m.tl.Tasks()
	rows := m.visibleRows()
	for i := 0; i < rows; i++ {
		row := m.rowOffset + i
		if row >= len(tasks) {
			b.WriteString("\n")
			continue
		}
		label := fmt.Sprintf("%-*s", LabelWidth-1, truncate(tasks[row].ID, LabelWidth-1)) + " "
		if row == m.selected {
			label = selectedLabel.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		bar, ok := bars[row]
		b.WriteString(label + m.renderRow(l, bar, ok) + "\n")
	}

	switch {
	case m.notice == "":
		b.WriteString("\n")
	case m.noticeErr:
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	default:
		b.WriteString(noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString(mutedStyle.Render(truncate(helpText, m.width)))
	return b.String()
}

func (m Model) renderMonths(l timeline.Layout) string {
	cells := []rune(strings.Repeat(" ", m.width))
	offset := int(math.Floor(m.scrollLeft))
	for _, month := range l.Months {
		c := LabelWidth + int(math.Floor(month.Left)) - offset
		if c+int(month.Width) < LabelWidth || c >= m.width {
			continue
		}
		label := "│" + month.Start.Time().Format("Jan 06")
		if c < LabelWidth {
			// Month started off screen: pin its label to the left edge.
			c, label = LabelWidth, strings.TrimPrefix(label, "│")
		}
		for _, r := range label {
			if c >= LabelWidth && c < m.width {
				cells[c] = r
			}
			c++
		}
	}
	return headerStyle.Render(string(cells))
}

// renderRow draws one task row across the visible columns.
func (m Model) renderRow(l timeline.Layout, bar timeline.BarLayout, hasBar bool) string {
	width := m.clientWidth()
	offset := int(math.Floor(m.scrollLeft))
	kinds := make([]cellKind, width)

	for _, month := range l.Months {
		c := int(math.Floor(month.Left)) - offset
		if c >= 0 && c < width {
			kinds[c] = cellBoundary
		}
	}
	for _, band := range l.Bands {
		fill(kinds, int(math.Floor(band.Left))-offset, int(math.Ceil(band.Left+band.Width))-offset, cellBand)
	}
	if hasBar {
		kind := cellBar
		if bar.Dragging {
			kind = cellDragging
		}
		fill(kinds, int(math.Floor(bar.Left))-offset, int(math.Ceil(bar.Right()))-offset, kind)
	}

	var b strings.Builder
	for start := 0; start < width; {
		end := start
		for end < width && kinds[end] == kinds[start] {
			end++
		}
		n := end - start
		switch kinds[start] {
		case cellBoundary:
			b.WriteString(boundaryStyle.Render(strings.Repeat("│", n)))
		case cellBand:
			b.WriteString(bandStyle.Render(strings.Repeat(" ", n)))
		case cellBar:
			b.WriteString(barStyle(bar.TaskID).Render(strings.Repeat("█", n)))
		case cellDragging:
			b.WriteString(draggingStyle.Render(strings.Repeat("▓", n)))
		default:
			b.WriteString(strings.Repeat(" ", n))
		}
		start = end
	}
	return b.String()
}

// fill marks cells [from, to) clipped to the row.
func fill(kinds []cellKind, from, to int, k cellKind) {
	from = max(from, 0)
	to = min(to, len(kinds))
	for i := from; i < to; i++ {
		kinds[i] = k
	}
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return string(r[:min(n, len(r))])
	}
	return string(r[:n-1]) + "…"
}
