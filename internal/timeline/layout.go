package timeline

import (
	"math"

	"github.com/NathanEdg/pulse/internal/axis"
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
)

// Default row geometry in pixels.
const (
	DefaultRowHeight = 32.0
	minCurveReach    = 20.0
)

// Layout is the renderable geometry of the timeline. Offsets are relative to
// the first loaded month.
type Layout struct {
	SessionID    string        `json:"session_id"`
	Anchor       calendar.Date `json:"anchor"`
	PixelsPerDay float64       `json:"pixels_per_day"`
	Width        float64       `json:"width"`
	RowHeight    float64       `json:"row_height"`
	Months       []Month       `json:"months"`
	Bars         []BarLayout   `json:"bars"`
	Curves       []Curve       `json:"curves"`
	Bands        []Band        `json:"bands"`
	Unscheduled  []string      `json:"unscheduled,omitempty"`
	Drag         *DragInfo     `json:"drag,omitempty"`
	Link         *LinkInfo     `json:"link,omitempty"`
	Selected     *Edge         `json:"selected,omitempty"`
}

// Month is a header cell.
type Month struct {
	Start calendar.Date `json:"start"`
	Label string        `json:"label"`
	Left  float64       `json:"left"`
	Width float64       `json:"width"`
}

// BarLayout is a task bar placed on its row.
type BarLayout struct {
	axis.Bar
	Title    string  `json:"title"`
	Status   string  `json:"status,omitempty"`
	Row      int     `json:"row"`
	Y        float64 `json:"y"`
	Dragging bool    `json:"dragging,omitempty"`
}

// Curve is a cubic Bézier from the end of the predecessor bar to the start
// of the successor bar.
type Curve struct {
	Edge
	X1  float64 `json:"x1"`
	Y1  float64 `json:"y1"`
	C1X float64 `json:"c1x"`
	C1Y float64 `json:"c1y"`
	C2X float64 `json:"c2x"`
	C2Y float64 `json:"c2y"`
	X2  float64 `json:"x2"`
	Y2  float64 `json:"y2"`
	// Violated marks an edge whose predecessor finishes after the successor starts.
	Violated bool `json:"violated,omitempty"`
}

// Band is a cycle overlay spanning StartDate..EndDate inclusive.
type Band struct {
	CycleID string  `json:"cycle_id"`
	Number  int     `json:"number"`
	Left    float64 `json:"left"`
	Width   float64 `json:"width"`
}

// BuildLayout places tasks one per row in list order. Undated tasks keep
// their row but get no bar.
func BuildLayout(p *axis.Projector, months []calendar.Date, tasks []task.Task, cycles []task.Cycle, rowHeight float64) Layout {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	l := Layout{
		Anchor:       p.Anchor,
		PixelsPerDay: p.PixelsPerDay,
		Width:        p.TotalWidth(months),
		RowHeight:    rowHeight,
		Months:       make([]Month, 0, len(months)),
		Bars:         []BarLayout{},
		Curves:       []Curve{},
		Bands:        []Band{},
	}

	for _, m := range months {
		l.Months = append(l.Months, Month{
			Start: m,
			Label: m.Time().Format("Jan 2006"),
			Left:  p.DateToX(m),
			Width: p.MonthWidth(m),
		})
	}

	byID := make(map[string]BarLayout, len(tasks))
	for row, t := range tasks {
		bar, ok := p.BarGeometry(t)
		if !ok {
			l.Unscheduled = append(l.Unscheduled, t.ID)
			continue
		}
		bl := BarLayout{Bar: bar, Title: t.Title, Status: t.Status, Row: row, Y: float64(row) * rowHeight}
		byID[t.ID] = bl
		l.Bars = append(l.Bars, bl)
	}

	for _, e := range Edges(tasks) {
		from, okFrom := byID[e.SourceID]
		to, okTo := byID[e.TargetID]
		if !okFrom || !okTo {
			continue
		}
		l.Curves = append(l.Curves, curve(e, from, to, rowHeight))
	}

	for _, c := range cycles {
		days := float64(c.EndDate-c.StartDate) + 1
		if days < 1 {
			days = 1
		}
		l.Bands = append(l.Bands, Band{
			CycleID: c.ID,
			Number:  c.Number,
			Left:    p.DateToX(c.StartDate),
			Width:   days * p.PixelsPerDay,
		})
	}
	return l
}

func curve(e Edge, from, to BarLayout, rowHeight float64) Curve {
	x1, y1 := from.Right(), from.Y+rowHeight/2
	x2, y2 := to.Left, to.Y+rowHeight/2
	reach := math.Max(math.Abs(x2-x1)/2, minCurveReach)
	return Curve{
		Edge:     e,
		X1:       x1,
		Y1:       y1,
		C1X:      x1 + reach,
		C1Y:      y1,
		C2X:      x2 - reach,
		C2Y:      y2,
		X2:       x2,
		Y2:       y2,
		Violated: from.Due.After(to.Start),
	}
}
