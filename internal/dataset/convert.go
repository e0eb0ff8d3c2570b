package dataset

import "github.com/woozymasta/edumap/internal/geo"

// FeatureCollection converts records into Point features carrying the flat
// attributes as properties. Records without a position are dropped and counted.
func FeatureCollection(records []Record) (fc geo.GeoJSONFeatureCollection, skipped int) {
	fc = geo.NewFeatureCollection(len(records))
	for _, r := range records {
		if !r.HasPosition {
			skipped++
			continue
		}

		f := geo.NewPointFeature(r.Position, r.Attributes())
		if r.Entity != "" {
			f.ID = r.Entity
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, skipped
}
