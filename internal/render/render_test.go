package render

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
)

func mk(id, title, start, due string, deps ...string) task.Task {
	return task.Task{
		ID:        id,
		Title:     title,
		StartDate: calendar.Ptr(calendar.MustParse(start)),
		DueDate:   calendar.Ptr(calendar.MustParse(due)),
		DependsOn: deps,
	}
}

func sampleLayout(t *testing.T) timeline.Layout {
	t.Helper()
	opts := timeline.DefaultOptions()
	opts.PixelsPerDay = 10
	opts.Today = calendar.MustParse("2024-01-15")
	tl := timeline.New([]task.Task{
		mk("a", "Design & <review>", "2024-01-10", "2024-01-14"),
		mk("b", "Build", "2024-01-12", "2024-01-13", "a"),
		{ID: "c", Title: "Undated"},
	}, []task.Cycle{{ID: "s1", Number: 2, StartDate: calendar.MustParse("2024-01-01"), EndDate: calendar.MustParse("2024-01-14")}}, opts)
	return tl.Layout()
}

func TestSVG_WellFormed(t *testing.T) {
	out := SVG(sampleLayout(t), DefaultStyle())

	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestSVG_Content(t *testing.T) {
	l := sampleLayout(t)
	style := DefaultStyle()
	out := SVG(l, style)

	if got := strings.Count(out, "<rect x="); got < 2+1+1 {
		t.Errorf("expected header, band and bars, got %d rects", got)
	}
	if !strings.Contains(out, "Design &amp; &lt;review&gt;") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(out, "<title>Cycle 2</title>") {
		t.Error("expected cycle band")
	}
	if !strings.Contains(out, ">Jan 2024<") {
		t.Error("expected month label")
	}
	if !strings.Contains(out, `stroke="`+style.Colors.Violated+`"`) {
		t.Error("expected violated dependency colored")
	}
	if !strings.Contains(out, "<title>a -&gt; b</title>") {
		t.Error("expected curve title")
	}

	// Curve starts at the end of a and ends at the start of b, offset by
	// the label column and header.
	c := l.Curves[0]
	ox, oy := float64(style.Layout.LabelWidth), float64(style.Layout.HeaderHeight)
	wantPath := "M" + num(ox+c.X1) + "," + num(oy+c.Y1) + " C"
	if !strings.Contains(out, wantPath) {
		t.Errorf("expected path starting %q", wantPath)
	}
}

func TestSVG_SelectedEdge(t *testing.T) {
	l := sampleLayout(t)
	e := l.Curves[0].Edge
	l.Selected = &e
	style := DefaultStyle()
	if out := SVG(l, style); !strings.Contains(out, `stroke="`+style.Colors.Selected+`"`) {
		t.Error("expected selected edge highlighted")
	}
}

func TestLoadStyle(t *testing.T) {
	s, err := LoadStyle("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Colors.Bar != DefaultStyle().Colors.Bar {
		t.Error("expected defaults for empty path")
	}

	path := filepath.Join(t.TempDir(), "style.yaml")
	data := "colors:\n  bar: \"#000000\"\nlayout:\n  label_width: 0\nshow_titles: false\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err = LoadStyle(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Colors.Bar != "#000000" || s.Layout.LabelWidth != 0 || s.ShowTitles {
		t.Errorf("expected overrides applied, got %+v", s)
	}
	if s.Colors.Background != "#ffffff" || s.Font.Size != 12 {
		t.Error("expected unspecified keys to keep defaults")
	}

	if _, err := LoadStyle(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
