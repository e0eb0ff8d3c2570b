// Package cluster groups markers into per-type marker sets and display clusters.
package cluster

import (
	"sort"
	"strconv"

	"github.com/woozymasta/edumap/internal/geo"
	"github.com/woozymasta/edumap/internal/marker"
)

// MarkerSet maps type codes to the markers of that type, in insertion order.
type MarkerSet struct {
	buckets map[string][]*marker.Marker
	codes   []string
	total   int
}

// NewMarkerSet returns an empty set.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{buckets: make(map[string][]*marker.Marker)}
}

// Add appends m to the bucket of its type code.
func (s *MarkerSet) Add(m *marker.Marker) {
	if _, ok := s.buckets[m.TypeCode]; !ok {
		s.codes = append(s.codes, m.TypeCode)
		SortCodes(s.codes)
	}
	s.buckets[m.TypeCode] = append(s.buckets[m.TypeCode], m)
	s.total++
}

// Codes returns the distinct type codes, numerically ascending.
func (s *MarkerSet) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Markers returns the bucket of code; nil for unknown codes.
func (s *MarkerSet) Markers(code string) []*marker.Marker {
	return s.buckets[code]
}

// Has reports whether code has a bucket.
func (s *MarkerSet) Has(code string) bool {
	_, ok := s.buckets[code]
	return ok
}

// All returns every marker, bucket by bucket in Codes order.
func (s *MarkerSet) All() []*marker.Marker {
	out := make([]*marker.Marker, 0, s.total)
	for _, code := range s.codes {
		out = append(out, s.buckets[code]...)
	}
	return out
}

// Len is the number of markers across all buckets.
func (s *MarkerSet) Len() int {
	return s.total
}

// Bounds returns the box around all markers; false when the set is empty.
func (s *MarkerSet) Bounds() (geo.Bounds, bool) {
	var (
		b     geo.Bounds
		found bool
	)
	for _, bucket := range s.buckets {
		for _, m := range bucket {
			if !found {
				b, found = geo.NewBounds(m.Position), true
				continue
			}
			b.Extend(m.Position)
		}
	}
	return b, found
}

// SortCodes orders type codes numerically. Codes that are not integers
// follow the numeric ones in lexical order.
func SortCodes(codes []string) {
	sort.SliceStable(codes, func(i, j int) bool {
		a, errA := strconv.Atoi(codes[i])
		b, errB := strconv.Atoi(codes[j])

		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return codes[i] < codes[j]
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return codes[i] < codes[j]
		}
	})
}
