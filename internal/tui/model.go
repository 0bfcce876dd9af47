// Package tui is a terminal front end for a timeline session. One screen
// cell is one pixel of the timeline's axis, so the zoom level is the number
// of cells per day.
package tui

import (
	"fmt"
	"math"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/store"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
	tea "github.com/charmbracelet/bubbletea"
)

// Layout constants, in cells.
const (
	LabelWidth  = 14
	HeaderLines = 2 // title + month header
	FooterLines = 2 // notice + help

	scrollStep = 8.0
	zoomFactor = 1.25
)

// TimelineOptions scales opts to terminal cells: a few cells per day and a
// loading threshold measured in columns rather than pixels.
func TimelineOptions(opts timeline.Options) timeline.Options {
	opts.PixelsPerDay = 2
	opts.MinPixelsPerDay = 1
	opts.MaxPixelsPerDay = 12
	opts.RowHeight = 1
	opts.Viewport.Threshold = 20
	return opts
}

// DocumentMsg carries a reloaded document, e.g. from store.Watch.
type DocumentMsg struct {
	Doc *store.Document
	Err error
}

// Model is the Bubble Tea model.
type Model struct {
	tl     *timeline.Timeline
	today  calendar.Date
	logger *logging.Logger

	width, height int
	positioned    bool
	scrollLeft    float64
	rowOffset     int
	selected      int
	edgeIndex     int
	linking       bool

	notice    string
	noticeErr bool
	quitting  bool
}

// NewModel creates a model over tl.
func NewModel(tl *timeline.Timeline, today calendar.Date, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return Model{
		tl:        tl,
		today:     today,
		logger:    logger.WithComponent("tui"),
		edgeIndex: -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.positioned && m.clientWidth() > 0 {
			m.scrollTo(m.today)
			m.positioned = true
		}
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case DocumentMsg:
		if msg.Err != nil {
			m.setError(msg.Err)
			return m, nil
		}
		if m.tl.Reconcile(msg.Doc.Tasks, msg.Doc.Cycles) {
			m.linking = false
			m.edgeIndex = -1
			m.clampSelection()
			m.setNotice("reloaded from disk")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.tl.Active() {
			_ = m.tl.Cancel()
		}
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.tl.Active() {
			_ = m.tl.Cancel()
			m.setNotice("cancelled")
		} else {
			m.notice = ""
		}
		m.linking = false
		m.tl.DismissRemoval()

	case "up", "k":
		m.selected--
		m.clampSelection()
	case "down", "j":
		m.selected++
		m.clampSelection()
	case "left":
		m.scrollBy(-scrollStep)
	case "right":
		m.scrollBy(scrollStep)
	case "t":
		m.scrollTo(m.today)

	case "l", "L":
		id, ok := m.selectedID()
		if !ok {
			break
		}
		side := timeline.SideEnd
		if msg.String() == "L" {
			side = timeline.SideStart
		}
		if err := m.tl.BeginLink(id, side, 0, float64(m.selected)); err != nil {
			m.setError(err)
			break
		}
		m.linking = true
		m.setNotice(fmt.Sprintf("link from %s (%s): pick a target and press enter", id, side))

	case "enter":
		if m.linking {
			id, _ := m.selectedID()
			m.finishLink(id)
		}

	case "tab":
		edges := timeline.Edges(m.tl.Tasks())
		if len(edges) == 0 {
			m.setNotice("no dependencies")
			break
		}
		m.edgeIndex = (m.edgeIndex + 1) % len(edges)
		e := edges[m.edgeIndex]
		if err := m.tl.SelectDependency(e.SourceID, e.TargetID); err != nil {
			m.setError(err)
			break
		}
		m.setNotice(fmt.Sprintf("selected %s, press x to remove", e))

	case "x":
		e, ok := m.tl.Selected()
		if err := m.tl.ConfirmRemoval(); err != nil {
			m.setError(err)
			break
		}
		if ok {
			m.setNotice("removed " + e.String())
		}
		m.edgeIndex = -1

	case ">", "<":
		id, ok := m.selectedID()
		if !ok {
			break
		}
		days := 1
		if msg.String() == "<" {
			days = -1
		}
		changed, err := m.tl.Move(id, timeline.KindMove, days, timeline.Modifiers{})
		m.report("moved", changed, err)

	case "a":
		changed, err := m.tl.AutoSchedule()
		m.report("auto-scheduled", changed, err)

	case "+", "=":
		m.zoom(zoomFactor, float64(m.clientWidth())/2)
	case "-":
		m.zoom(1/zoomFactor, float64(m.clientWidth())/2)

	case "g":
		m.scrollLeft += m.tl.CoverTasks()
		m.setNotice(fmt.Sprintf("%d months loaded", len(m.tl.Viewport().Months())))
	}
	m.ensureVisible()
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	mods := timeline.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl || msg.Alt}
	col := float64(msg.X - LabelWidth)
	x := col + m.scrollLeft
	row := msg.Y - HeaderLines + m.rowOffset

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			break
		}
		up := msg.Button == tea.MouseButtonWheelUp
		switch {
		case msg.Ctrl:
			factor := 1 / zoomFactor
			if up {
				factor = zoomFactor
			}
			m.zoom(factor, math.Max(col, 0))
		case up:
			m.scrollBy(-scrollStep)
		default:
			m.scrollBy(scrollStep)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.linking {
			t, _ := m.taskAt(row)
			m.finishLink(t.ID)
			break
		}
		if _, ok := m.taskAt(row); ok {
			m.selected = row
		}
		if msg.X < LabelWidth {
			break
		}
		id, kind, ok := m.hit(row, x)
		if !ok {
			break
		}
		if err := m.tl.PointerDown(id, kind, x, mods); err != nil {
			m.setError(err)
		}

	case msg.Action == tea.MouseActionMotion:
		if m.linking {
			_ = m.tl.MoveLink(x, float64(row))
			break
		}
		if _, ok := m.tl.Drag(); ok {
			_ = m.tl.PointerMove(x, mods)
		}

	case msg.Action == tea.MouseActionRelease:
		if _, ok := m.tl.Drag(); !ok {
			break
		}
		_ = m.tl.PointerMove(x, mods)
		changed, err := m.tl.PointerUp()
		m.report("moved", changed, err)
	}
	return m
}

// hit resolves a click to a bar and drag kind. The first and last cell of a
// bar at least three cells wide are resize handles.
func (m Model) hit(row int, x float64) (string, timeline.Kind, bool) {
	t, ok := m.taskAt(row)
	if !ok {
		return "", "", false
	}
	bar, ok := m.tl.Projector().BarGeometry(t)
	if !ok {
		return "", "", false
	}
	first := int(math.Floor(bar.Left))
	last := int(math.Ceil(bar.Right())) - 1
	cx := int(math.Floor(x))
	if cx < first || cx > last {
		return "", "", false
	}
	if last-first >= 2 {
		switch cx {
		case first:
			return t.ID, timeline.KindResizeStart, true
		case last:
			return t.ID, timeline.KindResizeEnd, true
		}
	}
	return t.ID, timeline.KindMove, true
}

func (m *Model) finishLink(targetID string) {
	m.linking = false
	changed, err := m.tl.EndLink(targetID)
	if targetID == "" && err == nil {
		m.setNotice("link dropped")
		return
	}
	m.report("linked", changed, err)
}

func (m *Model) zoom(factor, pointerCol float64) {
	res := m.tl.ZoomBy(factor, pointerCol, m.scrollLeft)
	m.scrollLeft = res.ScrollLeft
	m.scrollBy(0)
}

// scrollBy moves the view and lets the viewport manager extend the month
// window near either edge.
func (m *Model) scrollBy(dx float64) {
	client := float64(m.clientWidth())
	maxLeft := math.Max(0, m.tl.Viewport().TotalWidth()-client)
	m.scrollLeft = math.Min(math.Max(m.scrollLeft+dx, 0), maxLeft)
	adj := m.tl.Scroll(m.scrollLeft, client)
	m.scrollLeft = adj.ScrollLeft
	if adj.Changed() {
		m.logger.Debug("month window extended", "prepended", adj.Prepended, "appended", adj.Appended)
	}
}

func (m *Model) scrollTo(d calendar.Date) {
	m.scrollLeft = math.Max(0, m.tl.Projector().DateToX(d)-float64(m.clientWidth())/3)
}

func (m *Model) report(verb string, changed []task.Task, err error) {
	if err != nil {
		m.setError(err)
		return
	}
	switch len(changed) {
	case 0:
		m.setNotice(verb + ": no changes")
	case 1:
		m.setNotice(fmt.Sprintf("%s %s", verb, changed[0].ID))
	default:
		m.setNotice(fmt.Sprintf("%s %d tasks", verb, len(changed)))
	}
}

func (m *Model) setNotice(s string) {
	m.notice, m.noticeErr = s, false
}

func (m *Model) setError(err error) {
	if !errors.IsUserFacing(err) {
		m.logger.Warn("tui action failed", "error", err)
	}
	m.notice, m.noticeErr = errors.UserMessage(err), true
}

func (m Model) taskAt(row int) (task.Task, bool) {
	tasks := m.tl.Tasks()
	if row < 0 || row >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[row], true
}

func (m Model) selectedID() (string, bool) {
	t, ok := m.taskAt(m.selected)
	return t.ID, ok
}

func (m *Model) clampSelection() {
	n := m.tl.State().Len()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	if rows <= 0 {
		return
	}
	if m.selected < m.rowOffset {
		m.rowOffset = m.selected
	}
	if m.selected >= m.rowOffset+rows {
		m.rowOffset = m.selected - rows + 1
	}
}

func (m Model) clientWidth() int {
	return m.width - LabelWidth
}

func (m Model) visibleRows() int {
	return m.height - HeaderLines - FooterLines
}

// ScrollLeft returns the horizontal scroll offset in cells.
func (m Model) ScrollLeft() float64 {
	return m.scrollLeft
}

// Notice returns the status line text.
func (m Model) Notice() string {
	return m.notice
}
