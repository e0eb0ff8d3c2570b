// Package view switches the map between the national and regional views.
package view

import (
	"errors"
	"fmt"

	"github.com/woozymasta/edumap/internal/cluster"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/ui"
)

// Name identifies a view.
type Name string

const (
	National Name = "national"
	Regional Name = "regional"
)

// ErrUnknownView is returned for a view name that is not national or regional.
var ErrUnknownView = errors.New("unknown view")

// Parse accepts the view names plus the legacy select values "all" and "brum".
func Parse(s string) (Name, error) {
	switch s {
	case "national", "all":
		return National, nil
	case "regional", "brum":
		return Regional, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownView, s)
	}
}

// Controller owns which pair is displayed and keeps the controls in step.
// It is not safe for concurrent use.
type Controller struct {
	surface  ui.Surface
	controls *ui.Controls
	pairs    map[Name]*cluster.Pair
	views    map[Name]config.View
	toggle   *ui.Control
	active   Name
}

// New attaches the national pair, the view toggle and the controls to surface.
func New(surface ui.Surface, controls *ui.Controls, national, regional *cluster.Pair, views config.Views) *Controller {
	c := &Controller{
		surface:  surface,
		controls: controls,
		pairs:    map[Name]*cluster.Pair{National: national, Regional: regional},
		views:    map[Name]config.View{National: views.National, Regional: views.Regional},
		active:   National,
	}

	c.toggle = ui.NewControl(ui.KindToggle, ui.TopRight)
	c.toggle.Selected = string(National)
	c.toggle.Options = []ui.Option{
		{Value: string(National), Label: views.National.Label},
		{Value: string(Regional), Label: views.Regional.Label},
	}

	cam := c.views[National]
	surface.SetView(cam.Center, cam.Zoom)
	surface.AddLayer(national.Cluster)
	surface.AddControl(c.toggle)
	controls.Rebuild(national.Set)

	return c
}

// Select makes v the active view: the old cluster is detached, the camera
// moves to the view, the new cluster is attached showing its whole set and
// the legend and filter are rebuilt for it.
func (c *Controller) Select(v Name) error {
	next, ok := c.pairs[v]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownView, v)
	}

	c.surface.RemoveLayer(c.pairs[c.active].Cluster)
	c.active = v
	c.toggle.Selected = string(v)

	// the rebuilt filter starts at All, so the cluster must match it
	next.Reset()

	cam := c.views[v]
	c.surface.SetView(cam.Center, cam.Zoom)
	c.surface.AddLayer(next.Cluster)
	c.controls.Rebuild(next.Set)

	return nil
}

// Filter applies a type filter value to the active cluster.
func (c *Controller) Filter(value string) error {
	return c.controls.Select(c.pairs[c.active], value)
}

// Active returns the active view name.
func (c *Controller) Active() Name { return c.active }

// ActivePair returns the displayed marker-set and cluster.
func (c *Controller) ActivePair() *cluster.Pair { return c.pairs[c.active] }

// Controls returns the legend and filter owner.
func (c *Controller) Controls() *ui.Controls { return c.controls }
