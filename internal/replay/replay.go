// Package replay drives a timeline from a newline-delimited JSON script of
// pointer gestures, printing what each step did.
//
// One event per line:
//
//	{"type":"down","task":"x","kind":"move","x":0}
//	{"type":"move","x":48,"shift":true}
//	{"type":"up"}
//	{"type":"link","source":"x","target":"y"}
//	{"type":"zoom","pixels_per_day":40,"pointer_x":300,"scroll_left":0}
package replay

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
	"github.com/NathanEdg/pulse/internal/ui"
	"github.com/tidwall/gjson"
)

// Stats counts what happened during a replay.
type Stats struct {
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"` // advisory errors, e.g. a cyclic link
	Failed   int `json:"failed"`   // malformed or unknown events
}

// Player applies script lines to a timeline. It implements io.Writer and
// buffers partial lines between writes.
type Player struct {
	tl     *timeline.Timeline
	dest   io.Writer
	logger *logging.Logger

	mu    sync.Mutex
	buf   []byte
	line  int
	stats Stats
}

// NewPlayer creates a Player that reports to dest.
func NewPlayer(tl *timeline.Timeline, dest io.Writer, logger *logging.Logger) *Player {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Player{tl: tl, dest: dest, logger: logger.WithComponent("replay")}
}

// Play applies every line of r.
func Play(tl *timeline.Timeline, r io.Reader, dest io.Writer, logger *logging.Logger) (Stats, error) {
	p := NewPlayer(tl, dest, logger)
	if _, err := io.Copy(p, r); err != nil {
		return p.Stats(), fmt.Errorf("read script: %w", err)
	}
	p.Flush()
	return p.Stats(), nil
}

func (p *Player) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, b...)
	for {
		idx := -1
		for i, c := range p.buf {
			if c == '\n' {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		line := string(p.buf[:idx])
		p.buf = p.buf[idx+1:]
		p.processLine(line)
	}
	return len(b), nil
}

// Flush applies a trailing line that has no newline.
func (p *Player) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) > 0 {
		line := string(p.buf)
		p.buf = nil
		p.processLine(line)
	}
}

// Stats returns the counts so far.
func (p *Player) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Player) processLine(line string) {
	p.line++
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if !gjson.Valid(line) {
		p.stats.Failed++
		p.writeLine(ui.Red("✗ invalid JSON"))
		return
	}

	ev := gjson.Parse(line)
	eventType := ev.Get("type").String()
	msg, err := p.apply(eventType, ev)

	switch {
	case err == nil:
		p.stats.Applied++
		p.writeLine(msg)
	case errors.IsUserFacing(err):
		p.stats.Rejected++
		p.writeLine(ui.Yellow("⚠ " + errors.UserMessage(err)))
	default:
		p.stats.Failed++
		p.writeLine(ui.Red(fmt.Sprintf("✗ %s: %v", eventType, err)))
	}
	p.logger.Debug("replay event", "line", p.line, "type", eventType, "error", err)
}

func (p *Player) apply(eventType string, ev gjson.Result) (string, error) {
	mods := timeline.Modifiers{Shift: ev.Get("shift").Bool(), Ctrl: ev.Get("ctrl").Bool()}

	switch eventType {
	case "down":
		kind, err := timeline.ParseKind(ev.Get("kind").String())
		if err != nil {
			return "", err
		}
		id := ev.Get("task").String()
		if err := p.tl.PointerDown(id, kind, ev.Get("x").Float(), mods); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", ui.TaskPrefix(id), ui.Dim("grab "+string(kind))), nil

	case "move":
		if err := p.tl.PointerMove(ev.Get("x").Float(), mods); err != nil {
			return "", err
		}
		d, _ := p.tl.Drag()
		return fmt.Sprintf("%s %s %s", ui.TaskPrefix(d.TaskID), ui.Dim("drag"), ui.Days(d.DaysShift)), nil

	case "modifiers":
		if err := p.tl.SetModifiers(mods); err != nil {
			return "", err
		}
		return ui.Dim(fmt.Sprintf("modifiers shift=%t ctrl=%t", mods.Shift, mods.Ctrl)), nil

	case "up":
		changed, err := p.tl.PointerUp()
		if err != nil {
			return "", err
		}
		return describeChanges("drop", changed), nil

	case "cancel":
		if err := p.tl.Cancel(); err != nil {
			return "", err
		}
		return ui.Dim("cancelled"), nil

	case "link":
		src, tgt := ev.Get("source").String(), ev.Get("target").String()
		var changed []task.Task
		var err error
		if side := ev.Get("side"); side.Exists() {
			s, perr := timeline.ParseSide(side.String())
			if perr != nil {
				return "", perr
			}
			if err := p.tl.BeginLink(src, s, 0, 0); err != nil {
				return "", err
			}
			changed, err = p.tl.EndLink(tgt)
		} else {
			changed, err = p.tl.CreateDependency(src, tgt)
		}
		if err != nil {
			return "", err
		}
		return ui.Green("+ ") + ui.Edge(src, tgt) + "  " + describeChanges("", changed), nil

	case "unlink":
		src, tgt := ev.Get("source").String(), ev.Get("target").String()
		if err := p.tl.RemoveDependency(src, tgt); err != nil {
			return "", err
		}
		return ui.Red("- ") + ui.Edge(src, tgt), nil

	case "zoom":
		pointerX, scrollLeft := ev.Get("pointer_x").Float(), ev.Get("scroll_left").Float()
		var ppd float64
		if f := ev.Get("factor"); f.Exists() {
			ppd = p.tl.ZoomBy(f.Float(), pointerX, scrollLeft).PixelsPerDay
		} else {
			ppd = p.tl.Zoom(ev.Get("pixels_per_day").Float(), pointerX, scrollLeft).PixelsPerDay
		}
		return ui.Cyan(fmt.Sprintf("zoom %g px/day", ppd)), nil

	case "scroll":
		adj := p.tl.Scroll(ev.Get("scroll_left").Float(), ev.Get("client_width").Float())
		switch {
		case adj.Dropped:
			return ui.Dim("scroll (cooling down)"), nil
		case adj.Changed():
			return ui.Cyan(fmt.Sprintf("scroll: +%d months before, +%d after, scroll_left=%g",
				adj.Prepended, adj.Appended, adj.ScrollLeft)), nil
		default:
			return ui.Dim("scroll"), nil
		}

	case "auto":
		changed, err := p.tl.AutoSchedule()
		if err != nil {
			return "", err
		}
		return describeChanges("auto-schedule", changed), nil

	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
}

func describeChanges(verb string, changed []task.Task) string {
	var b strings.Builder
	if verb != "" {
		b.WriteString(ui.Bold(verb) + " ")
	}
	if len(changed) == 0 {
		b.WriteString(ui.Dim("no changes"))
		return b.String()
	}
	for i, t := range changed {
		if i > 0 {
			b.WriteString(", ")
		}
		start, due, _ := t.Bounds()
		fmt.Fprintf(&b, "%s %s..%s", ui.TaskPrefix(t.ID), start, due)
	}
	return b.String()
}

func (p *Player) writeLine(text string) {
	fmt.Fprintf(p.dest, "  %s %s\n", ui.Dim(fmt.Sprintf("%3d", p.line)), text)
}
