// Package axis maps calendar dates to horizontal pixel offsets and back.
//
// Offsets are measured from the start of the anchor day, which is the first
// day of the first loaded month. One day spans PixelsPerDay pixels.
package axis

import (
	"math"

	"github.com/NathanEdg/pulse/internal/calendar"
	"github.com/NathanEdg/pulse/internal/task"
)

// Zoom bounds and the default scale, in pixels per day.
const (
	MinPixelsPerDay     = 2.0
	MaxPixelsPerDay     = 100.0
	DefaultPixelsPerDay = 24.0
)

// epsilon absorbs float error when an offset sits exactly on a day boundary.
const epsilon = 1e-9

// Projector converts between dates and pixel offsets.
type Projector struct {
	Anchor       calendar.Date
	PixelsPerDay float64
	// MinPixelsPerDay and MaxPixelsPerDay override the zoom bounds when set.
	MinPixelsPerDay float64
	MaxPixelsPerDay float64
}

// Bar is the horizontal geometry of a task.
type Bar struct {
	TaskID string        `json:"task_id"`
	Left   float64       `json:"left"`
	Width  float64       `json:"width"`
	Start  calendar.Date `json:"start"`
	Due    calendar.Date `json:"due"`
}

// Right is the bar's trailing edge.
func (b Bar) Right() float64 {
	return b.Left + b.Width
}

// ZoomResult is the outcome of a zoom anchored at the pointer.
type ZoomResult struct {
	PixelsPerDay float64 `json:"pixels_per_day"`
	ScrollLeft   float64 `json:"scroll_left"`
	// DaysFromAnchor is the fractional day offset that stays under the pointer.
	DaysFromAnchor float64 `json:"days_from_anchor"`
}

// New returns a projector anchored at the start of anchor's month.
func New(anchor calendar.Date, pixelsPerDay float64) *Projector {
	p := &Projector{Anchor: anchor.StartOfMonth()}
	p.PixelsPerDay = p.Clamp(pixelsPerDay)
	return p
}

// DateToX returns the offset of the start of day d.
func (p *Projector) DateToX(d calendar.Date) float64 {
	return float64(calendar.DaysBetween(p.Anchor, d)) * p.PixelsPerDay
}

// XToDate returns the day whose span contains x.
func (p *Projector) XToDate(x float64) calendar.Date {
	return p.Anchor.AddDays(int(math.Floor(x/p.PixelsPerDay + epsilon)))
}

// DaysAt returns the fractional number of days from the anchor at offset x.
func (p *Projector) DaysAt(x float64) float64 {
	return x / p.PixelsPerDay
}

// DaysForDelta converts a pointer delta into a whole-day shift, rounding to
// the nearest day.
func (p *Projector) DaysForDelta(dx float64) int {
	return int(math.Round(dx / p.PixelsPerDay))
}

// BarGeometry returns the bar for t. The bar covers start through due
// inclusive and is at least one day wide. ok is false for undated tasks.
func (p *Projector) BarGeometry(t task.Task) (Bar, bool) {
	start, due, ok := t.Bounds()
	if !ok {
		return Bar{}, false
	}
	days := calendar.DaysBetween(start, due) + 1
	if days < 1 {
		days = 1
	}
	return Bar{
		TaskID: t.ID,
		Left:   p.DateToX(start),
		Width:  float64(days) * p.PixelsPerDay,
		Start:  start,
		Due:    due,
	}, true
}

// MonthWidth is the pixel width of the month containing month.
func (p *Projector) MonthWidth(month calendar.Date) float64 {
	return float64(month.DaysInMonth()) * p.PixelsPerDay
}

// TotalWidth is the summed width of the given months.
func (p *Projector) TotalWidth(months []calendar.Date) float64 {
	var w float64
	for _, m := range months {
		w += p.MonthWidth(m)
	}
	return w
}

// Clamp bounds ppd to the projector's zoom limits.
func (p *Projector) Clamp(ppd float64) float64 {
	lo, hi := p.MinPixelsPerDay, p.MaxPixelsPerDay
	if lo <= 0 {
		lo = MinPixelsPerDay
	}
	if hi <= 0 {
		hi = MaxPixelsPerDay
	}
	return clamp(ppd, lo, hi)
}

// ClampZoom bounds ppd to [MinPixelsPerDay, MaxPixelsPerDay].
func ClampZoom(ppd float64) float64 {
	return clamp(ppd, MinPixelsPerDay, MaxPixelsPerDay)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Zoom changes the scale to newPPD (clamped) and returns the scroll offset
// that keeps the date under pointerX in place. pointerX is relative to the
// visible area and scrollLeft is the current scroll offset.
func (p *Projector) Zoom(newPPD, pointerX, scrollLeft float64) ZoomResult {
	totalDays := (scrollLeft + pointerX) / p.PixelsPerDay
	p.PixelsPerDay = p.Clamp(newPPD)
	return ZoomResult{
		PixelsPerDay:   p.PixelsPerDay,
		ScrollLeft:     math.Max(0, totalDays*p.PixelsPerDay-pointerX),
		DaysFromAnchor: totalDays,
	}
}

// ZoomBy multiplies the current scale by factor.
func (p *Projector) ZoomBy(factor, pointerX, scrollLeft float64) ZoomResult {
	return p.Zoom(p.PixelsPerDay*factor, pointerX, scrollLeft)
}

// Rebase moves the anchor to a new first month, returning the pixel shift
// applied to every existing offset.
func (p *Projector) Rebase(anchor calendar.Date) float64 {
	anchor = anchor.StartOfMonth()
	shift := float64(calendar.DaysBetween(anchor, p.Anchor)) * p.PixelsPerDay
	p.Anchor = anchor
	return shift
}
