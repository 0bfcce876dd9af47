// Package timeline is the interactive core of pulse: a local working copy of
// the task list, the gesture controller that edits it, and the Timeline
// façade that ties both to the date axis and the scrolling month window.
//
// The core is single-threaded. Hosts that serve it concurrently must
// serialise calls.
package timeline

import (
	"github.com/NathanEdg/pulse/internal/axis"
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/viewport"
	"github.com/google/uuid"
)

// Options configures a Timeline.
type Options struct {
	PixelsPerDay    float64
	MinPixelsPerDay float64
	MaxPixelsPerDay float64
	RowHeight       float64
	Viewport        viewport.Options
	Strategy        schedule.Strategy
	// Today centres the initial month window; zero means the current date.
	Today    calendar.Date
	Notifier Notifier
	Logger   *logging.Logger
}

// DefaultOptions returns the standard scale and window.
func DefaultOptions() Options {
	return Options{
		PixelsPerDay:    axis.DefaultPixelsPerDay,
		MinPixelsPerDay: axis.MinPixelsPerDay,
		MaxPixelsPerDay: axis.MaxPixelsPerDay,
		RowHeight:       DefaultRowHeight,
		Viewport:        viewport.DefaultOptions(),
		Strategy:        schedule.StrategyRelax,
	}
}

// Timeline bundles the state, projector, viewport and controller of one
// interactive session. Controller methods are promoted.
type Timeline struct {
	*Controller

	ID        string
	state     *State
	proj      *axis.Projector
	view      *viewport.Manager
	rowHeight float64
	logger    *logging.Logger
}

// New starts a session over the given external lists.
func New(tasks []task.Task, cycles []task.Cycle, opts Options) *Timeline {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithSession(id)

	today := opts.Today
	if today == 0 {
		today = calendar.Today()
	}
	if opts.PixelsPerDay == 0 {
		opts.PixelsPerDay = axis.DefaultPixelsPerDay
	}

	proj := &axis.Projector{MinPixelsPerDay: opts.MinPixelsPerDay, MaxPixelsPerDay: opts.MaxPixelsPerDay}
	proj.PixelsPerDay = proj.Clamp(opts.PixelsPerDay)

	vopts := viewportDefaults(opts.Viewport)
	vopts.Logger = logger.WithComponent("viewport")
	view := viewport.New(proj, today, vopts)

	state := NewState(tasks, cycles)
	ctrl := NewController(state, proj, opts.Strategy, opts.Notifier, logger.WithComponent("controller"))

	logger.Info("timeline session started", "tasks", state.Len(), "cycles", len(cycles), "pixels_per_day", proj.PixelsPerDay)

	return &Timeline{
		Controller: ctrl,
		ID:         id,
		state:      state,
		proj:       proj,
		view:       view,
		rowHeight:  opts.RowHeight,
		logger:     logger,
	}
}

// State returns the local working copy.
func (tl *Timeline) State() *State {
	return tl.state
}

// Projector returns the date axis.
func (tl *Timeline) Projector() *axis.Projector {
	return tl.proj
}

// Viewport returns the month window manager.
func (tl *Timeline) Viewport() *viewport.Manager {
	return tl.view
}

// Tasks returns the committed local tasks.
func (tl *Timeline) Tasks() []task.Task {
	return tl.state.Tasks()
}

// Reconcile re-seeds from new external lists. A re-seed cancels any active
// gesture. Reports whether the state changed.
func (tl *Timeline) Reconcile(tasks []task.Task, cycles []task.Cycle) bool {
	if !tl.state.Reconcile(tasks, cycles) {
		return false
	}
	if tl.Active() {
		tl.logger.Info("external change cancelled active gesture")
	}
	tl.Controller.reset()
	tl.logger.Debug("reconciled", "tasks", tl.state.Len())
	return true
}

// Scroll forwards a scroll event to the viewport manager.
func (tl *Timeline) Scroll(scrollLeft, clientWidth float64) viewport.Adjustment {
	return tl.view.OnScroll(scrollLeft, clientWidth)
}

// Zoom sets the scale keeping the date under pointerX in place.
func (tl *Timeline) Zoom(pixelsPerDay, pointerX, scrollLeft float64) axis.ZoomResult {
	res := tl.proj.Zoom(pixelsPerDay, pointerX, scrollLeft)
	tl.logger.Debug("zoomed", "pixels_per_day", res.PixelsPerDay, "scroll_left", res.ScrollLeft)
	return res
}

// ZoomBy multiplies the scale by factor keeping the date under pointerX in place.
func (tl *Timeline) ZoomBy(factor, pointerX, scrollLeft float64) axis.ZoomResult {
	return tl.Zoom(tl.proj.PixelsPerDay*factor, pointerX, scrollLeft)
}

// CoverTasks grows the month window to include every dated task and cycle.
// It returns the width prepended.
func (tl *Timeline) CoverTasks() float64 {
	var lo, hi calendar.Date
	found := false
	extend := func(a, b calendar.Date) {
		if !found {
			lo, hi, found = a, b, true
			return
		}
		lo, hi = calendar.Min(lo, a), calendar.Max(hi, b)
	}
	for _, t := range tl.state.view() {
		if start, due, ok := t.Bounds(); ok {
			extend(calendar.Min(start, due), calendar.Max(start, due))
		}
	}
	for _, c := range tl.state.cycles {
		extend(c.StartDate, c.EndDate)
	}
	if !found {
		return 0
	}
	return tl.view.Cover(lo, hi)
}

// Layout returns the geometry to render, using the drag preview while a bar
// drag is active.
func (tl *Timeline) Layout() Layout {
	tasks := tl.Preview()
	l := BuildLayout(tl.proj, tl.view.Months(), tasks, tl.state.cycles, tl.rowHeight)
	l.SessionID = tl.ID

	if d, ok := tl.Drag(); ok {
		l.Drag = &d
		for i := range l.Bars {
			if l.Bars[i].TaskID == d.TaskID {
				l.Bars[i].Dragging = true
			}
		}
	}
	if li, ok := tl.Link(); ok {
		l.Link = &li
	}
	if e, ok := tl.Selected(); ok {
		l.Selected = &e
	}
	return l
}

// viewportDefaults fills each unset viewport field from viewport.DefaultOptions.
// The window size is only defaulted when no month counts were given at all.
func viewportDefaults(o viewport.Options) viewport.Options {
	d := viewport.DefaultOptions()
	if o.MonthsBefore == 0 && o.MonthsAfter == 0 && o.BatchMonths == 0 {
		o.MonthsBefore, o.MonthsAfter = d.MonthsBefore, d.MonthsAfter
	}
	if o.BatchMonths == 0 {
		o.BatchMonths = d.BatchMonths
	}
	if o.Threshold == 0 {
		o.Threshold = d.Threshold
	}
	if o.Cooldown == 0 {
		o.Cooldown = d.Cooldown
	}
	return o
}
