// Package ui builds the map controls (legend, type filter, view toggle) and
// keeps them in sync with the active marker-set.
package ui

import (
	"sync/atomic"

	"github.com/woozymasta/edumap/internal/cluster"
	"github.com/woozymasta/edumap/internal/colour"
)

// All is the filter value that shows every marker of the active set.
const All = "All"

// Corner positions of map controls.
const (
	TopRight    = "topright"
	BottomRight = "bottomright"
)

// Control kinds.
const (
	KindLegend = "legend"
	KindFilter = "filter"
	KindToggle = "toggle"
)

var controlSeq atomic.Int64

// Control is one map control as the page renders it.
type Control struct {
	Kind     string   `json:"kind"`
	Position string   `json:"position"`
	Title    string   `json:"title,omitempty"`
	Selected string   `json:"selected,omitempty"`
	Options  []Option `json:"options"`
	ID       int64    `json:"id"`
}

// Option is a legend row or a select option.
type Option struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Colour string `json:"colour,omitempty"`
}

// Values returns the option values in display order.
func (c *Control) Values() []string {
	out := make([]string, len(c.Options))
	for i, o := range c.Options {
		out[i] = o.Value
	}
	return out
}

// NewControl stamps a control with a process-unique ID.
func NewControl(kind, position string) *Control {
	return &Control{ID: controlSeq.Add(1), Kind: kind, Position: position}
}

// Labeler resolves a type code to its display name.
type Labeler interface {
	TypeName(code string) string
}

// Palette resolves a type code to its assigned colour.
type Palette interface {
	Lookup(code string) (colour.Colour, bool)
}

// NewLegend lists every type code of set with its colour and label.
func NewLegend(set *cluster.MarkerSet, labels Labeler, colours Palette) *Control {
	c := NewControl(KindLegend, BottomRight)
	c.Title = "Educational Establishment Types"

	for _, code := range set.Codes() {
		opt := Option{Value: code, Label: typeLabel(code, labels)}
		if col, ok := colours.Lookup(code); ok {
			opt.Colour = col.String()
		}
		c.Options = append(c.Options, opt)
	}

	return c
}

// NewFilter offers All plus one choice per type code of set.
func NewFilter(set *cluster.MarkerSet, labels Labeler) *Control {
	c := NewControl(KindFilter, BottomRight)
	c.Selected = All
	c.Options = append(c.Options, Option{Value: All, Label: "All Educational Establishment Types"})

	for _, code := range set.Codes() {
		c.Options = append(c.Options, Option{Value: code, Label: typeLabel(code, labels)})
	}

	return c
}

func typeLabel(code string, labels Labeler) string {
	return code + " (" + labels.TypeName(code) + ")"
}
