package cluster

import "github.com/woozymasta/edumap/internal/marker"

// Cluster is the set of markers attached to one display cluster group.
// Adding a marker twice has no effect.
type Cluster struct {
	index   map[int]struct{}
	markers []*marker.Marker
}

// NewCluster returns an empty cluster.
func NewCluster() *Cluster {
	return &Cluster{index: make(map[int]struct{})}
}

// Add attaches markers to the cluster.
func (c *Cluster) Add(ms ...*marker.Marker) {
	for _, m := range ms {
		if _, ok := c.index[m.ID]; ok {
			continue
		}
		c.index[m.ID] = struct{}{}
		c.markers = append(c.markers, m)
	}
}

// Clear detaches every marker.
func (c *Cluster) Clear() {
	clear(c.index)
	c.markers = c.markers[:0]
}

// Contains reports whether the marker with id is attached.
func (c *Cluster) Contains(id int) bool {
	_, ok := c.index[id]
	return ok
}

// Len is the number of attached markers.
func (c *Cluster) Len() int {
	return len(c.markers)
}

// Markers returns the attached markers in attach order.
func (c *Cluster) Markers() []*marker.Marker {
	out := make([]*marker.Marker, len(c.markers))
	copy(out, c.markers)
	return out
}

// IDs returns the IDs of the attached markers in attach order.
func (c *Cluster) IDs() []int {
	ids := make([]int, len(c.markers))
	for i, m := range c.markers {
		ids[i] = m.ID
	}
	return ids
}
