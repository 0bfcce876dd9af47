package timeline

import (
	"fmt"

	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/graph"
	"github.com/NathanEdg/pulse/internal/schedule"
	"github.com/NathanEdg/pulse/internal/task"
)

type linkState struct {
	sourceID string
	side     Side
	x, y     float64
}

// LinkInfo describes an in-progress dependency link drag.
type LinkInfo struct {
	SourceID string  `json:"source"`
	Side     Side    `json:"side"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// BeginLink starts dragging a dependency link from a handle on sourceID.
func (c *Controller) BeginLink(sourceID string, side Side, x, y float64) error {
	if c.Active() {
		return errors.ErrGestureActive
	}
	if _, ok := c.state.Task(sourceID); !ok {
		return fmt.Errorf("link from %q: %w", sourceID, errors.ErrTaskNotFound)
	}
	if side == "" {
		side = SideEnd
	}
	c.selected = nil
	c.link = &linkState{sourceID: sourceID, side: side, x: x, y: y}
	return nil
}

// MoveLink tracks the free end of the link.
func (c *Controller) MoveLink(x, y float64) error {
	if c.link == nil {
		return errors.ErrNoGesture
	}
	c.link.x, c.link.y = x, y
	return nil
}

// Link returns the in-progress link, if any.
func (c *Controller) Link() (LinkInfo, bool) {
	if c.link == nil {
		return LinkInfo{}, false
	}
	return LinkInfo{SourceID: c.link.sourceID, Side: c.link.side, X: c.link.x, Y: c.link.y}, true
}

// EndLink finishes the link over targetID. An empty targetID drops the link
// without creating anything. Dragging from the end handle makes the target
// depend on the source; from the start handle, the reverse.
func (c *Controller) EndLink(targetID string) ([]task.Task, error) {
	if c.link == nil {
		return nil, errors.ErrNoGesture
	}
	l := c.link
	c.link = nil
	if targetID == "" {
		return nil, nil
	}
	if l.side == SideStart {
		return c.CreateDependency(targetID, l.sourceID)
	}
	return c.CreateDependency(l.sourceID, targetID)
}

// CreateDependency makes targetID depend on sourceID, then runs the forward
// pass. Rejected edges (self, duplicate, cycle, unknown task) are reported
// through Notice and returned; nothing changes. It returns the tasks the
// forward pass moved.
func (c *Controller) CreateDependency(sourceID, targetID string) ([]task.Task, error) {
	if c.drag != nil {
		return nil, errors.ErrGestureActive
	}
	before := c.state.view()
	if err := graph.CanAddEdge(sourceID, targetID, before); err != nil {
		c.logger.Info("dependency rejected", "source", sourceID, "target", targetID, "error", err.Error())
		c.notifier.Notice(err)
		return nil, err
	}

	tasks := task.CloneAll(before)
	i := task.Index(tasks)[targetID]
	tasks[i].DependsOn = append(tasks[i].DependsOn, sourceID)

	res := schedule.Forward(c.strategy, tasks)
	changed := task.Changed(before, res.Tasks)
	c.state.commit(res.Tasks)
	c.logger.Info("dependency added", "source", sourceID, "target", targetID, "changed", len(changed))

	if err := c.notifier.DependencyAdded(sourceID, targetID); err != nil {
		c.logger.Warn("dependency notification failed", "source", sourceID, "target", targetID, "error", err.Error())
	}
	c.notifyMoved(changed)
	return changed, nil
}

// SelectDependency opens the removal affordance for an existing edge.
func (c *Controller) SelectDependency(sourceID, targetID string) error {
	if c.Active() {
		return errors.ErrGestureActive
	}
	if err := c.checkEdge(sourceID, targetID); err != nil {
		return err
	}
	c.selected = &Edge{SourceID: sourceID, TargetID: targetID}
	return nil
}

// Selected returns the edge awaiting removal confirmation, if any.
func (c *Controller) Selected() (Edge, bool) {
	if c.selected == nil {
		return Edge{}, false
	}
	return *c.selected, true
}

// DismissRemoval closes the removal affordance.
func (c *Controller) DismissRemoval() {
	c.selected = nil
}

// ConfirmRemoval removes the selected edge. Dates are left as they are: the
// successor is not pulled earlier.
func (c *Controller) ConfirmRemoval() error {
	if c.selected == nil {
		return errors.ErrNoGesture
	}
	e := *c.selected
	c.selected = nil
	return c.removeDependency(e.SourceID, e.TargetID)
}

// RemoveDependency selects and confirms in one call.
func (c *Controller) RemoveDependency(sourceID, targetID string) error {
	if err := c.SelectDependency(sourceID, targetID); err != nil {
		return err
	}
	return c.ConfirmRemoval()
}

func (c *Controller) checkEdge(sourceID, targetID string) error {
	t, ok := c.state.Task(targetID)
	if !ok {
		return errors.NewDependencyError("remove", sourceID, targetID, errors.ErrTaskNotFound)
	}
	if !t.DependsOnID(sourceID) {
		return errors.NewDependencyError("remove", sourceID, targetID, errors.ErrEdgeNotFound)
	}
	return nil
}

func (c *Controller) removeDependency(sourceID, targetID string) error {
	if err := c.checkEdge(sourceID, targetID); err != nil {
		c.notifier.Notice(err)
		return err
	}
	tasks := task.CloneAll(c.state.view())
	i := task.Index(tasks)[targetID]
	deps := tasks[i].DependsOn[:0]
	for _, dep := range tasks[i].DependsOn {
		if dep != sourceID {
			deps = append(deps, dep)
		}
	}
	tasks[i].DependsOn = deps
	c.state.commit(tasks)
	c.logger.Info("dependency removed", "source", sourceID, "target", targetID)

	if err := c.notifier.DependencyRemoved(sourceID, targetID); err != nil {
		c.logger.Warn("dependency notification failed", "source", sourceID, "target", targetID, "error", err.Error())
	}
	return nil
}
