package timeline

import (
	"fmt"
	"strings"

	"github.com/NathanEdg/pulse/internal/task"
)

// Kind is the type of a bar drag.
type Kind string

const (
	KindMove        Kind = "move"
	KindResizeStart Kind = "resize-left"
	KindResizeEnd   Kind = "resize-right"
)

// ParseKind accepts the canonical names plus "resize-start"/"resize-end".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "move":
		return KindMove, nil
	case "resize-left", "resize-start", "left", "start":
		return KindResizeStart, nil
	case "resize-right", "resize-end", "right", "end":
		return KindResizeEnd, nil
	default:
		return "", fmt.Errorf("unknown drag kind %q (want move, resize-left or resize-right)", s)
	}
}

// Modifiers is the keyboard modifier state during a gesture. Ctrl also covers
// Cmd on macOS.
type Modifiers struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
}

// Side is the bar handle a dependency link is dragged from.
type Side string

const (
	// SideEnd links from the end of the source: the target depends on the source.
	SideEnd Side = "end"
	// SideStart links from the start of the source: the source depends on the target.
	SideStart Side = "start"
)

// ParseSide defaults to SideEnd.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "end", "right":
		return SideEnd, nil
	case "start", "left":
		return SideStart, nil
	default:
		return "", fmt.Errorf("unknown link side %q (want start or end)", s)
	}
}

// Edge is a dependency: Target depends on Source.
type Edge struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`
}

func (e Edge) String() string {
	return e.SourceID + " -> " + e.TargetID
}

// Edges lists every dependency among tasks, skipping unknown ids.
func Edges(tasks []task.Task) []Edge {
	idx := task.Index(tasks)
	var out []Edge
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := idx[dep]; ok {
				out = append(out, Edge{SourceID: dep, TargetID: t.ID})
			}
		}
	}
	return out
}
