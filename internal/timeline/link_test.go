package timeline

import (
	"testing"

	"github.com/NathanEdg/pulse/internal/errors"
)

func TestLink_CreatesDependencyAndReschedules(t *testing.T) {
	tl, rec := newTimeline(t,
		mk("x", "2024-01-10", "2024-01-12"),
		mk("y", "2024-01-08", "2024-01-09"),
	)

	if err := tl.BeginLink("x", SideEnd, 120, 16); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tl.MoveLink(300, 48); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if li, ok := tl.Link(); !ok || li.X != 300 || li.SourceID != "x" {
		t.Errorf("unexpected link state: %+v", li)
	}

	changed, err := tl.EndLink("y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	y := get(t, tl.Tasks(), "y")
	if !y.DependsOnID("x") {
		t.Fatal("expected y to depend on x")
	}
	assertDates(t, y, "2024-01-12", "2024-01-13")
	if len(changed) != 1 || changed[0].ID != "y" {
		t.Errorf("expected y rescheduled, got %v", changed)
	}
	if len(rec.Added) != 1 || rec.Added[0] != (Edge{SourceID: "x", TargetID: "y"}) {
		t.Errorf("expected DependencyAdded(x, y), got %v", rec.Added)
	}
	if len(rec.Moved) != 1 {
		t.Errorf("expected 1 move notification, got %d", len(rec.Moved))
	}
	if tl.Active() {
		t.Error("expected link gesture cleared")
	}
}

func TestLink_FromStartSideReversesDirection(t *testing.T) {
	tl, rec := newTimeline(t,
		mk("x", "2024-01-10", "2024-01-12"),
		mk("y", "2024-01-01", "2024-01-03"),
	)
	_ = tl.BeginLink("x", SideStart, 100, 16)
	if _, err := tl.EndLink("y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !get(t, tl.Tasks(), "x").DependsOnID("y") {
		t.Error("expected x to depend on y")
	}
	if rec.Added[0] != (Edge{SourceID: "y", TargetID: "x"}) {
		t.Errorf("unexpected edge: %v", rec.Added[0])
	}
}

func TestLink_DroppedOnNothing(t *testing.T) {
	tl, rec := newTimeline(t, mk("x", "2024-01-10", "2024-01-12"))
	_ = tl.BeginLink("x", SideEnd, 0, 0)
	changed, err := tl.EndLink("")
	if err != nil || changed != nil {
		t.Errorf("expected silent no-op, got %v, %v", changed, err)
	}
	if len(rec.Added) != 0 || len(rec.Notices) != 0 {
		t.Error("expected no notifications")
	}
}

func TestLink_CancelDropsLink(t *testing.T) {
	tl, _ := newTimeline(t, mk("x", "2024-01-10", "2024-01-12"))
	_ = tl.BeginLink("x", SideEnd, 0, 0)
	if err := tl.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tl.EndLink("x"); !errors.Is(err, errors.ErrNoGesture) {
		t.Errorf("expected ErrNoGesture, got %v", err)
	}
}

func TestCreateDependency_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   error
	}{
		{"cycle through chain", "z", "x", errors.ErrCycle},
		{"direct cycle", "y", "x", errors.ErrCycle},
		{"duplicate", "x", "y", errors.ErrDuplicateEdge},
		{"self", "x", "x", errors.ErrSelfDependency},
		{"unknown target", "x", "nope", errors.ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, rec := newTimeline(t,
				mk("x", "2024-01-10", "2024-01-12"),
				mk("y", "2024-01-12", "2024-01-14", "x"),
				mk("z", "2024-01-14", "2024-01-16", "y"),
			)
			before := Fingerprint(tl.Tasks(), nil)
			version := tl.State().Version()

			_, err := tl.CreateDependency(tt.source, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(rec.Notices) != 1 || !errors.Is(rec.Notices[0], tt.want) {
				t.Errorf("expected one notice, got %v", rec.Notices)
			}
			if Fingerprint(tl.Tasks(), nil) != before || tl.State().Version() != version {
				t.Error("state mutated by rejected edge")
			}
			if len(rec.Added) != 0 || len(rec.Moved) != 0 {
				t.Error("rejected edge was reported")
			}
		})
	}
}

func TestCreateDependency_RejectionIsUserFacing(t *testing.T) {
	tl, _ := newTimeline(t,
		mk("x", "2024-01-10", "2024-01-12"),
		mk("y", "2024-01-12", "2024-01-14", "x"),
	)
	_, err := tl.CreateDependency("y", "x")
	if !errors.IsUserFacing(err) {
		t.Errorf("expected user-facing error, got %v", err)
	}
	var depErr *errors.DependencyError
	if !errors.As(err, &depErr) || depErr.SourceID != "y" || depErr.TargetID != "x" {
		t.Errorf("expected DependencyError for y -> x, got %v", err)
	}
}

func TestRemoval_DoesNotReschedule(t *testing.T) {
	tl, rec := newTimeline(t,
		mk("x", "2024-01-10", "2024-01-12"),
		mk("y", "2024-01-20", "2024-01-22", "x"),
	)

	if err := tl.SelectDependency("x", "y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e, ok := tl.Selected(); !ok || e.TargetID != "y" {
		t.Errorf("expected selected edge, got %+v", e)
	}
	if err := tl.ConfirmRemoval(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	y := get(t, tl.Tasks(), "y")
	if y.DependsOnID("x") {
		t.Error("edge still present")
	}
	assertDates(t, y, "2024-01-20", "2024-01-22")
	if len(rec.Removed) != 1 || rec.Removed[0] != (Edge{SourceID: "x", TargetID: "y"}) {
		t.Errorf("expected DependencyRemoved(x, y), got %v", rec.Removed)
	}
	if len(rec.Moved) != 0 {
		t.Errorf("removal must not move tasks, got %d moves", len(rec.Moved))
	}
	if _, ok := tl.Selected(); ok {
		t.Error("expected selection cleared")
	}
}

func TestRemoval_DismissAndMissingEdge(t *testing.T) {
	tl, rec := newTimeline(t,
		mk("x", "2024-01-10", "2024-01-12"),
		mk("y", "2024-01-20", "2024-01-22", "x"),
	)

	_ = tl.SelectDependency("x", "y")
	tl.DismissRemoval()
	if err := tl.ConfirmRemoval(); !errors.Is(err, errors.ErrNoGesture) {
		t.Errorf("expected ErrNoGesture after dismiss, got %v", err)
	}
	if !get(t, tl.Tasks(), "y").DependsOnID("x") {
		t.Error("dismiss removed the edge")
	}

	if err := tl.SelectDependency("y", "x"); !errors.Is(err, errors.ErrEdgeNotFound) {
		t.Errorf("expected ErrEdgeNotFound, got %v", err)
	}
	if err := tl.RemoveDependency("x", "y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Removed) != 1 {
		t.Errorf("expected 1 removal, got %d", len(rec.Removed))
	}
}
