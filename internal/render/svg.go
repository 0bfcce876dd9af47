package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NathanEdg/pulse/internal/timeline"
)

// SVG renders a layout. Layout offsets are shifted right by the label column
// and down by the month header.
func SVG(l timeline.Layout, s Style) string {
	rows := len(l.Bars) + len(l.Unscheduled)
	for _, b := range l.Bars {
		if b.Row+1 > rows {
			rows = b.Row + 1
		}
	}
	ox := float64(s.Layout.LabelWidth)
	oy := float64(s.Layout.HeaderHeight)
	width := ox + l.Width
	height := oy + float64(rows)*l.RowHeight

	var svg strings.Builder
	fmt.Fprintf(&svg, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%s" height="%s" viewBox="0 0 %s %s" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.month-text { font-family: %s; font-size: %dpx; fill: %s; }
.label-text { font-family: %s; font-size: %dpx; fill: %s; }
.bar-text { font-family: %s; font-size: %dpx; fill: #ffffff; }
</style>
<marker id="arrow" viewBox="0 0 8 8" refX="8" refY="4" markerWidth="6" markerHeight="6" orient="auto">
<path d="M0,0 L8,4 L0,8 z" fill="%s"/>
</marker>
</defs>
`, num(width), num(height), num(width), num(height), s.Colors.Background,
		s.Font.Family, s.Font.Size, s.Colors.Text,
		s.Font.Family, s.Font.Size, s.Colors.Text,
		s.Font.Family, s.Font.Size-1,
		s.Colors.Dependency)

	// Month header and grid lines.
	fmt.Fprintf(&svg, `<rect x="%s" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(ox), num(l.Width), num(oy), s.Colors.Header)
	for _, m := range l.Months {
		x := ox + m.Left
		fmt.Fprintf(&svg, `<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="1"/>`+"\n",
			num(x), num(x), num(height), s.Colors.Grid)
		fmt.Fprintf(&svg, `<text class="month-text" x="%s" y="%s">%s</text>`+"\n",
			num(x+4), num(oy-9), escapeXML(m.Label))
	}

	// Cycle bands sit behind the bars.
	for _, b := range l.Bands {
		fmt.Fprintf(&svg, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="%s"><title>Cycle %d</title></rect>`+"\n",
			num(ox+b.Left), num(oy), num(b.Width), num(height-oy), s.Colors.Cycle, num(s.Layout.CycleOpacity), b.Number)
	}

	for _, b := range l.Bars {
		drawBar(&svg, b, l.RowHeight, ox, oy, s)
	}

	for _, c := range l.Curves {
		stroke := s.Colors.Dependency
		if c.Violated {
			stroke = s.Colors.Violated
		}
		if l.Selected != nil && *l.Selected == c.Edge {
			stroke = s.Colors.Selected
		}
		fmt.Fprintf(&svg, `<path d="M%s,%s C%s,%s %s,%s %s,%s" stroke="%s" stroke-width="%s" fill="none" marker-end="url(#arrow)"><title>%s</title></path>`+"\n",
			num(ox+c.X1), num(oy+c.Y1),
			num(ox+c.C1X), num(oy+c.C1Y),
			num(ox+c.C2X), num(oy+c.C2Y),
			num(ox+c.X2), num(oy+c.Y2),
			stroke, num(s.Layout.CurveWidth), escapeXML(c.Edge.String()))
	}

	svg.WriteString("</svg>\n")
	return svg.String()
}

func drawBar(svg *strings.Builder, b timeline.BarLayout, rowHeight, ox, oy float64, s Style) {
	pad := s.Layout.BarPadding
	if 2*pad >= rowHeight {
		pad = 0
	}
	y := oy + b.Y + pad
	h := rowHeight - 2*pad

	if s.Layout.LabelWidth > 0 {
		fmt.Fprintf(svg, `<text class="label-text" x="4" y="%s">%s</text>`+"\n",
			num(oy+b.Y+rowHeight/2+float64(s.Font.Size)/3), escapeXML(truncate(b.Title, s.Layout.LabelWidth/7)))
	}

	fill := s.Colors.Bar
	switch strings.ToLower(b.Status) {
	case "done", "completed", "closed":
		fill = s.Colors.BarDone
	}
	fmt.Fprintf(svg, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s"><title>%s: %s to %s</title></rect>`+"\n",
		num(ox+b.Left), num(y), num(b.Width), num(h), num(s.Layout.BarRadius), fill,
		escapeXML(b.TaskID), b.Start, b.Due)

	if s.ShowTitles && b.Title != "" {
		fmt.Fprintf(svg, `<text class="bar-text" x="%s" y="%s">%s</text>`+"\n",
			num(ox+b.Left+4), num(y+h/2+float64(s.Font.Size)/3), escapeXML(truncate(b.Title, int(b.Width/7))))
	}
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func escapeXML(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
