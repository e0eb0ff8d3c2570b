package ui

import (
	"errors"
	"fmt"

	"github.com/woozymasta/edumap/internal/cluster"
)

// ErrUnknownFilter is returned for a filter value that is neither All nor a
// code of the active set.
var ErrUnknownFilter = errors.New("unknown filter value")

// Controls owns the legend and type filter currently on a surface.
type Controls struct {
	surface Surface
	labels  Labeler
	colours Palette
	legend  *Control
	filter  *Control
}

// NewControls returns controls bound to surface. Nothing is attached until Rebuild.
func NewControls(surface Surface, labels Labeler, colours Palette) *Controls {
	return &Controls{surface: surface, labels: labels, colours: colours}
}

// Rebuild removes the current legend and filter and attaches new ones built from set.
func (c *Controls) Rebuild(set *cluster.MarkerSet) {
	if c.legend != nil {
		c.surface.RemoveControl(c.legend)
	}
	if c.filter != nil {
		c.surface.RemoveControl(c.filter)
	}

	c.legend = NewLegend(set, c.labels, c.colours)
	c.filter = NewFilter(set, c.labels)

	c.surface.AddControl(c.legend)
	c.surface.AddControl(c.filter)
}

// Legend returns the attached legend, nil before the first Rebuild.
func (c *Controls) Legend() *Control { return c.legend }

// Filter returns the attached filter, nil before the first Rebuild.
func (c *Controls) Filter() *Control { return c.filter }

// Select applies a filter value to p: the cluster is emptied and refilled with
// the whole set for All, or with the bucket of the chosen code otherwise.
// A code the set does not have changes nothing and returns ErrUnknownFilter.
func (c *Controls) Select(p *cluster.Pair, value string) error {
	if value != All && !p.Set.Has(value) {
		return fmt.Errorf("%w %q", ErrUnknownFilter, value)
	}

	if c.filter != nil {
		c.filter.Selected = value
	}

	p.Cluster.Clear()
	if value == All {
		p.Cluster.Add(p.Set.All()...)
		return nil
	}
	p.Cluster.Add(p.Set.Markers(value)...)
	return nil
}
