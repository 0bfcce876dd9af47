package timeline

import (
	"fmt"

	"github.com/NathanEdg/pulse/internal/axis"
	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/graph"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/task"
)

// Controller turns pointer gestures into date changes on the local state.
//
// One gesture is active at a time: a bar drag or a dependency link drag.
// While dragging, Preview derives the candidate schedule without touching
// the state; PointerUp commits it and notifies once per changed task.
type Controller struct {
	state    *State
	proj     *axis.Projector
	strategy schedule.Strategy
	notifier Notifier
	logger   *logging.Logger

	drag     *dragState
	link     *linkState
	selected *Edge
}

type dragState struct {
	kind     Kind
	taskID   string
	startX   float64
	x        float64
	mods     Modifiers
	snapshot []task.Task
}

// DragInfo describes the active bar drag.
type DragInfo struct {
	TaskID    string    `json:"task_id"`
	Kind      Kind      `json:"kind"`
	DaysShift int       `json:"days_shift"`
	Modifiers Modifiers `json:"modifiers"`
}

// NewController returns a controller over state projected by proj.
func NewController(state *State, proj *axis.Projector, strategy schedule.Strategy, n Notifier, logger *logging.Logger) *Controller {
	if n == nil {
		n = NopNotifier{}
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	if strategy == "" {
		strategy = schedule.StrategyRelax
	}
	return &Controller{state: state, proj: proj, strategy: strategy, notifier: n, logger: logger}
}

// SetNotifier replaces the notifier.
func (c *Controller) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	c.notifier = n
}

// Active reports whether a drag or link gesture is in progress.
func (c *Controller) Active() bool {
	return c.drag != nil || c.link != nil
}

// Drag returns the active bar drag, if any.
func (c *Controller) Drag() (DragInfo, bool) {
	if c.drag == nil {
		return DragInfo{}, false
	}
	return DragInfo{
		TaskID:    c.drag.taskID,
		Kind:      c.drag.kind,
		DaysShift: c.daysShift(),
		Modifiers: c.drag.mods,
	}, true
}

// PointerDown starts a bar drag on taskID at pointer offset x.
func (c *Controller) PointerDown(taskID string, kind Kind, x float64, mods Modifiers) error {
	if c.Active() {
		return errors.ErrGestureActive
	}
	t, ok := c.state.Task(taskID)
	if !ok {
		return fmt.Errorf("pointer down on %q: %w", taskID, errors.ErrTaskNotFound)
	}
	if _, _, ok := t.Bounds(); !ok {
		return fmt.Errorf("pointer down on %q: %w", taskID, errors.ErrNoDates)
	}
	if kind == "" {
		kind = KindMove
	}

	c.selected = nil
	c.drag = &dragState{
		kind:     kind,
		taskID:   taskID,
		startX:   x,
		x:        x,
		mods:     mods,
		snapshot: c.state.Tasks(),
	}
	c.logger.WithTask(taskID).Debug("drag started", "kind", string(kind), "x", x, "shift", mods.Shift, "ctrl", mods.Ctrl)
	return nil
}

// PointerMove updates the live pointer offset and modifier state.
func (c *Controller) PointerMove(x float64, mods Modifiers) error {
	if c.drag == nil {
		return errors.ErrNoGesture
	}
	c.drag.x = x
	c.drag.mods = mods
	return nil
}

// SetModifiers updates the modifier state without moving the pointer.
func (c *Controller) SetModifiers(mods Modifiers) error {
	if c.drag == nil {
		return errors.ErrNoGesture
	}
	c.drag.mods = mods
	return nil
}

func (c *Controller) daysShift() int {
	return c.proj.DaysForDelta(c.drag.x - c.drag.startX)
}

// Preview returns the task list as it would be committed if the pointer were
// released now. Without an active drag it returns the local tasks.
func (c *Controller) Preview() []task.Task {
	if c.drag == nil {
		return c.state.Tasks()
	}
	return c.preview().Tasks
}

func (c *Controller) preview() schedule.Result {
	d := c.drag
	days := c.daysShift()
	tasks := task.CloneAll(d.snapshot)
	idx := task.Index(tasks)

	if d.mods.Shift && d.kind == KindMove {
		for _, id := range graph.Build(tasks).Connected(d.taskID) {
			tasks[idx[id]].Shift(days)
		}
		return schedule.Forward(c.strategy, tasks)
	}

	applyDrag(&tasks[idx[d.taskID]], d.kind, days)

	if d.mods.Ctrl {
		return schedule.Reschedule(c.strategy, tasks, map[string]bool{d.taskID: true})
	}
	return schedule.Forward(c.strategy, tasks)
}

// applyDrag moves or resizes t by days. Resizes never cross the opposite
// edge: start stays at or before due.
func applyDrag(t *task.Task, kind Kind, days int) {
	start, due, ok := t.Bounds()
	if !ok {
		return
	}
	switch kind {
	case KindResizeStart:
		t.StartDate = calendar.Ptr(calendar.Min(start.AddDays(days), due))
	case KindResizeEnd:
		t.DueDate = calendar.Ptr(calendar.Max(due.AddDays(days), start))
	default:
		t.Shift(days)
	}
}

// PointerUp commits the preview, notifies once for every task whose dates
// changed since PointerDown, and ends the drag. It returns the changed tasks.
func (c *Controller) PointerUp() ([]task.Task, error) {
	if c.drag == nil {
		return nil, errors.ErrNoGesture
	}
	d := c.drag
	res := c.preview()
	c.drag = nil

	changed := task.Changed(d.snapshot, res.Tasks)
	c.state.commit(res.Tasks)

	log := c.logger.WithTask(d.taskID)
	if !res.Converged {
		log.Debug("scheduling stopped at pass budget", "passes", res.Passes)
	}
	log.Info("drag committed", "kind", string(d.kind), "days", c.proj.DaysForDelta(d.x-d.startX), "changed", len(changed))

	c.notifyMoved(changed)
	return changed, nil
}

// Cancel aborts the active drag or link gesture. The local state is left as
// it was before the gesture and nothing is notified.
func (c *Controller) Cancel() error {
	switch {
	case c.drag != nil:
		c.logger.WithTask(c.drag.taskID).Debug("drag cancelled")
		c.drag = nil
	case c.link != nil:
		c.logger.WithTask(c.link.sourceID).Debug("link cancelled")
		c.link = nil
	default:
		return errors.ErrNoGesture
	}
	return nil
}

// Move applies a complete move or resize gesture in one call: the dragged
// task is shifted by days as if the pointer had travelled that far.
func (c *Controller) Move(taskID string, kind Kind, days int, mods Modifiers) ([]task.Task, error) {
	if err := c.PointerDown(taskID, kind, 0, mods); err != nil {
		return nil, err
	}
	if err := c.PointerMove(float64(days)*c.proj.PixelsPerDay, mods); err != nil {
		return nil, err
	}
	return c.PointerUp()
}

// AutoSchedule runs the forward pass over the local tasks and commits the
// result, notifying for every moved task.
func (c *Controller) AutoSchedule() ([]task.Task, error) {
	if c.Active() {
		return nil, errors.ErrGestureActive
	}
	before := c.state.view()
	res := schedule.Forward(c.strategy, before)
	changed := task.Changed(before, res.Tasks)
	c.state.commit(res.Tasks)
	c.logger.Info("auto-scheduled", "passes", res.Passes, "converged", res.Converged, "changed", len(changed))
	c.notifyMoved(changed)
	return changed, nil
}

func (c *Controller) notifyMoved(changed []task.Task) {
	for _, t := range changed {
		if err := c.notifier.TaskMoved(t); err != nil {
			c.logger.WithTask(t.ID).Warn("move notification failed", "error", err.Error())
		}
	}
}

// reset drops any gesture state; used when the state is re-seeded.
func (c *Controller) reset() {
	c.drag = nil
	c.link = nil
	c.selected = nil
}
