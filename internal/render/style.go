// Package render draws a timeline layout as a standalone SVG document.
package render

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style controls the look of the exported SVG. It maps directly to a YAML
// style file; keys left out of the file keep their defaults.
type Style struct {
	Font struct {
		Family string `yaml:"family"` // e.g. "Arial, sans-serif"
		Size   int    `yaml:"size"`   // base size in pixels
	} `yaml:"font"`
	Colors struct {
		Background string `yaml:"background"`
		Grid       string `yaml:"grid"`
		Header     string `yaml:"header"`
		Text       string `yaml:"text"`
		Bar        string `yaml:"bar"`
		BarDone    string `yaml:"bar_done"`
		Dependency string `yaml:"dependency"`
		Violated   string `yaml:"violated"`
		Selected   string `yaml:"selected"`
		Cycle      string `yaml:"cycle"`
	} `yaml:"colors"`
	Layout struct {
		HeaderHeight int     `yaml:"header_height"` // month header row in pixels
		LabelWidth   int     `yaml:"label_width"`   // task title column; 0 hides it
		BarPadding   float64 `yaml:"bar_padding"`   // vertical gap inside each row
		BarRadius    float64 `yaml:"bar_radius"`
		CurveWidth   float64 `yaml:"curve_width"`
		CycleOpacity float64 `yaml:"cycle_opacity"`
	} `yaml:"layout"`
	ShowTitles bool `yaml:"show_titles"` // draw task titles inside bars
}

// DefaultStyle returns the built-in style.
func DefaultStyle() Style {
	var s Style
	s.Font.Family = "Arial, sans-serif"
	s.Font.Size = 12

	s.Colors.Background = "#ffffff"
	s.Colors.Grid = "#e5e7eb"
	s.Colors.Header = "#f3f4f6"
	s.Colors.Text = "#333333"
	s.Colors.Bar = "#4285f4"
	s.Colors.BarDone = "#34a853"
	s.Colors.Dependency = "#6b7280"
	s.Colors.Violated = "#ea4335"
	s.Colors.Selected = "#fbbc05"
	s.Colors.Cycle = "#a78bfa"

	s.Layout.HeaderHeight = 28
	s.Layout.LabelWidth = 160
	s.Layout.BarPadding = 6
	s.Layout.BarRadius = 4
	s.Layout.CurveWidth = 1.5
	s.Layout.CycleOpacity = 0.12

	s.ShowTitles = true
	return s
}

// LoadStyle reads a YAML style file over the defaults. An empty path returns
// the defaults.
func LoadStyle(path string) (Style, error) {
	s := DefaultStyle()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read style file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Style{}, fmt.Errorf("parse style file: %w", err)
	}
	return s, nil
}
