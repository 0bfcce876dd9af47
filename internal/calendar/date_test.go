package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_DateOnly(t *testing.T) {
	d, err := Parse("2024-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.String(); got != "2024-01-10" {
		t.Errorf("expected 2024-01-10, got %s", got)
	}
}

func TestParse_RFC3339KeepsWallClockDate(t *testing.T) {
	d, err := Parse("2024-03-10T23:30:00-05:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.String(); got != "2024-03-10" {
		t.Errorf("expected 2024-03-10, got %s", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("next tuesday"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	// US DST started 2024-03-10; calendar-day difference must ignore it.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	a := Of(time.Date(2024, 3, 9, 0, 0, 0, 0, loc))
	b := Of(time.Date(2024, 3, 12, 0, 0, 0, 0, loc))
	if got := DaysBetween(a, b); got != 3 {
		t.Errorf("expected 3 days, got %d", got)
	}
}

func TestAddMonthsAndStartOfMonth(t *testing.T) {
	d := MustParse("2024-01-31")
	if got := d.StartOfMonth().String(); got != "2024-01-01" {
		t.Errorf("expected 2024-01-01, got %s", got)
	}
	if got := d.StartOfMonth().AddMonths(1).String(); got != "2024-02-01" {
		t.Errorf("expected 2024-02-01, got %s", got)
	}
	if got := d.StartOfMonth().AddMonths(-1).String(); got != "2023-12-01" {
		t.Errorf("expected 2023-12-01, got %s", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-02-10", 29},
		{"2023-02-10", 28},
		{"2024-04-30", 30},
		{"2024-12-01", 31},
	}
	for _, tt := range tests {
		if got := MustParse(tt.date).DaysInMonth(); got != tt.want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	type doc struct {
		Start *Date `json:"start"`
		Due   *Date `json:"due"`
	}
	in := doc{Start: Ptr(MustParse("2024-01-10"))}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"start":"2024-01-10","due":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var out doc
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Start == nil || *out.Start != *in.Start {
		t.Errorf("expected start %v, got %v", in.Start, out.Start)
	}
	if out.Due != nil {
		t.Errorf("expected nil due, got %v", out.Due)
	}
}

func TestBeforeDate1970(t *testing.T) {
	d := MustParse("1969-12-31")
	if d != -1 {
		t.Errorf("expected -1, got %d", d)
	}
	if got := d.String(); got != "1969-12-31" {
		t.Errorf("expected 1969-12-31, got %s", got)
	}
}
