package cluster

import "github.com/woozymasta/edumap/internal/marker"

// Sets holds the two marker-sets built from one dataset.
type Sets struct {
	National *MarkerSet
	Regional *MarkerSet
}

// Manager partitions markers into the national and regional sets.
type Manager struct {
	District string
}

// Partition adds every marker to the national set and, when its district
// matches, to the regional set as well.
func (m Manager) Partition(markers []*marker.Marker) Sets {
	sets := Sets{National: NewMarkerSet(), Regional: NewMarkerSet()}

	for _, mk := range markers {
		sets.National.Add(mk)
		if mk.District == m.District {
			sets.Regional.Add(mk)
		}
	}

	return sets
}

// Pair is a marker-set together with the cluster that displays it.
type Pair struct {
	Set     *MarkerSet
	Cluster *Cluster
}

// NewPair returns a pair whose cluster holds every marker of set.
func NewPair(set *MarkerSet) *Pair {
	c := NewCluster()
	c.Add(set.All()...)
	return &Pair{Set: set, Cluster: c}
}

// Reset refills the cluster with the whole set.
func (p *Pair) Reset() {
	p.Cluster.Clear()
	p.Cluster.Add(p.Set.All()...)
}
