// Package viewport manages the horizontally scrolling window of loaded months.
//
// The window grows in batches when the scroll position nears either edge.
// Months added at the front shift every existing offset right, so OnScroll
// returns the corrected scroll position in the same call; hosts must apply it
// before the next paint. Appends need no correction.
package viewport

import (
	"time"

	"github.com/NathanEdg/pulse/internal/axis"
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/logging"
)

// Options configures a Manager.
type Options struct {
	MonthsBefore int           // months loaded before the current month
	MonthsAfter  int           // months loaded after the current month
	BatchMonths  int           // months added per extension
	Threshold    float64       // edge distance in pixels that triggers loading
	Cooldown     time.Duration // loading flag hold time after an extension
	Now          func() time.Time
	Logger       *logging.Logger
}

// DefaultOptions returns the standard window: 6 months back through 5 ahead,
// extended 6 months at a time within 500px of an edge.
func DefaultOptions() Options {
	return Options{
		MonthsBefore: 6,
		MonthsAfter:  5,
		BatchMonths:  6,
		Threshold:    500,
		Cooldown:     300 * time.Millisecond,
	}
}

// Adjustment reports what a scroll event changed.
type Adjustment struct {
	Appended   int     `json:"appended"`    // months added at the end
	Prepended  int     `json:"prepended"`   // months added at the front
	AddedWidth float64 `json:"added_width"` // pixel width prepended
	ScrollLeft float64 `json:"scroll_left"` // scroll offset the host must apply
	Dropped    bool    `json:"dropped"`     // a trigger was suppressed by the loading flag
}

// Changed reports whether the month window changed.
func (a Adjustment) Changed() bool {
	return a.Appended > 0 || a.Prepended > 0
}

// Manager owns the ordered month-start list and keeps the projector anchored
// at the first month.
type Manager struct {
	opts   Options
	proj   *axis.Projector
	months []calendar.Date

	prependUntil time.Time
	appendUntil  time.Time
}

// New builds the initial window around today's month and re-anchors proj.
func New(proj *axis.Projector, today calendar.Date, opts Options) *Manager {
	if opts.BatchMonths < 1 {
		opts.BatchMonths = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}

	first := today.StartOfMonth().AddMonths(-opts.MonthsBefore)
	n := opts.MonthsBefore + 1 + opts.MonthsAfter
	months := make([]calendar.Date, n)
	for i := range months {
		months[i] = first.AddMonths(i)
	}
	proj.Rebase(first)

	return &Manager{opts: opts, proj: proj, months: months}
}

// Months returns a copy of the loaded month starts.
func (m *Manager) Months() []calendar.Date {
	return append([]calendar.Date(nil), m.months...)
}

// First returns the first loaded month.
func (m *Manager) First() calendar.Date {
	return m.months[0]
}

// Last returns the last day of the last loaded month.
func (m *Manager) Last() calendar.Date {
	last := m.months[len(m.months)-1]
	return last.AddDays(last.DaysInMonth() - 1)
}

// TotalWidth is the scrollable width at the current zoom.
func (m *Manager) TotalWidth() float64 {
	return m.proj.TotalWidth(m.months)
}

// Loading reports whether either edge is inside its cooldown.
func (m *Manager) Loading() bool {
	now := m.opts.Now()
	return now.Before(m.prependUntil) || now.Before(m.appendUntil)
}

// OnScroll extends the window when scrollLeft is within the threshold of an
// edge. A trigger arriving while that edge is still loading is dropped, not
// queued.
func (m *Manager) OnScroll(scrollLeft, clientWidth float64) Adjustment {
	adj := Adjustment{ScrollLeft: scrollLeft}
	now := m.opts.Now()

	trailing := m.TotalWidth() - scrollLeft - clientWidth
	if trailing < m.opts.Threshold {
		if now.Before(m.appendUntil) {
			adj.Dropped = true
		} else {
			m.appendMonths(m.opts.BatchMonths)
			m.appendUntil = now.Add(m.opts.Cooldown)
			adj.Appended = m.opts.BatchMonths
		}
	}

	if scrollLeft < m.opts.Threshold {
		if now.Before(m.prependUntil) {
			adj.Dropped = true
		} else {
			added := m.prependMonths(m.opts.BatchMonths)
			m.prependUntil = now.Add(m.opts.Cooldown)
			adj.Prepended = m.opts.BatchMonths
			adj.AddedWidth = added
			adj.ScrollLeft = scrollLeft + added
		}
	}

	if adj.Changed() {
		m.opts.Logger.Debug("viewport extended",
			"appended", adj.Appended,
			"prepended", adj.Prepended,
			"added_width", adj.AddedWidth,
			"months", len(m.months))
	} else if adj.Dropped {
		m.opts.Logger.Debug("viewport trigger dropped while loading", "scroll_left", scrollLeft)
	}
	return adj
}

// Cover extends the window, ignoring the loading flag, until it contains
// both from and to. It returns the width prepended so hosts can correct
// their scroll offset.
func (m *Manager) Cover(from, to calendar.Date) float64 {
	var added float64
	for from.Before(m.First()) {
		added += m.prependMonths(m.opts.BatchMonths)
	}
	for to.After(m.Last()) {
		m.appendMonths(m.opts.BatchMonths)
	}
	return added
}

func (m *Manager) appendMonths(n int) {
	last := m.months[len(m.months)-1]
	for i := 1; i <= n; i++ {
		m.months = append(m.months, last.AddMonths(i))
	}
}

// prependMonths inserts n months at the front, re-anchors the projector and
// returns the added pixel width.
func (m *Manager) prependMonths(n int) float64 {
	first := m.months[0]
	front := make([]calendar.Date, n, n+len(m.months))
	for i := range front {
		front[i] = first.AddMonths(i - n)
	}
	m.months = append(front, m.months...)
	return m.proj.Rebase(m.months[0])
}
