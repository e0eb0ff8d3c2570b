package ui

import "github.com/woozymasta/edumap/internal/cluster"

// Surface is the map canvas controls and clusters are attached to.
type Surface interface {
	AddLayer(c *cluster.Cluster)
	RemoveLayer(c *cluster.Cluster)
	SetView(center [2]float64, zoom int)
	AddControl(c *Control)
	RemoveControl(c *Control)
}

// Scene is an in-memory Surface whose state is serialised for the browser.
type Scene struct {
	layers   []*cluster.Cluster
	controls []*Control
	center   [2]float64
	zoom     int
}

// Snapshot is the JSON form of a Scene.
type Snapshot struct {
	Controls []Control  `json:"controls"`
	Markers  []int      `json:"markers"`
	Center   [2]float64 `json:"center"`
	Zoom     int        `json:"zoom"`
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// AddLayer implements Surface. Adding an attached layer is a no-op.
func (s *Scene) AddLayer(c *cluster.Cluster) {
	for _, l := range s.layers {
		if l == c {
			return
		}
	}
	s.layers = append(s.layers, c)
}

// RemoveLayer implements Surface.
func (s *Scene) RemoveLayer(c *cluster.Cluster) {
	for i, l := range s.layers {
		if l == c {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return
		}
	}
}

// SetView implements Surface.
func (s *Scene) SetView(center [2]float64, zoom int) {
	s.center, s.zoom = center, zoom
}

// AddControl implements Surface.
func (s *Scene) AddControl(c *Control) {
	for _, existing := range s.controls {
		if existing == c {
			return
		}
	}
	s.controls = append(s.controls, c)
}

// RemoveControl implements Surface.
func (s *Scene) RemoveControl(c *Control) {
	for i, existing := range s.controls {
		if existing == c {
			s.controls = append(s.controls[:i], s.controls[i+1:]...)
			return
		}
	}
}

// Layers returns the attached clusters.
func (s *Scene) Layers() []*cluster.Cluster {
	out := make([]*cluster.Cluster, len(s.layers))
	copy(out, s.layers)
	return out
}

// Controls returns the attached controls in attach order.
func (s *Scene) Controls() []*Control {
	out := make([]*Control, len(s.controls))
	copy(out, s.controls)
	return out
}

// ControlsOf returns the attached controls of one kind.
func (s *Scene) ControlsOf(kind string) []*Control {
	var out []*Control
	for _, c := range s.controls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot copies the scene state. Markers are the IDs shown by every
// attached layer, in attach order.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Center:   s.center,
		Zoom:     s.zoom,
		Controls: make([]Control, 0, len(s.controls)),
		Markers:  []int{},
	}

	for _, c := range s.controls {
		cp := *c
		cp.Options = append([]Option(nil), c.Options...)
		snap.Controls = append(snap.Controls, cp)
	}
	for _, l := range s.layers {
		snap.Markers = append(snap.Markers, l.IDs()...)
	}

	return snap
}
