package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/woozymasta/edumap/internal/geo"
)

// ErrFormat is returned for a payload that is valid JSON but not the expected shape.
var ErrFormat = errors.New("unexpected payload shape")

// Source decodes one input format into normalised records.
// Records whose position cannot be resolved are kept with HasPosition unset.
type Source interface {
	Name() string
	Decode(r io.Reader) ([]Record, error)
}

// SourceFor returns the adapter for a configured format name.
func SourceFor(format string) (Source, error) {
	switch format {
	case "geojson":
		return GeoJSONSource{}, nil
	case "json":
		return EntitySource{}, nil
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
}

// GeoJSONSource reads a FeatureCollection with attributes in feature properties.
type GeoJSONSource struct{}

type rawFeature struct {
	Geometry *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func (GeoJSONSource) Name() string { return "geojson" }

// Decode implements Source.
func (GeoJSONSource) Decode(r io.Reader) ([]Record, error) {
	var fc struct {
		Features []rawFeature `json:"features"`
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Features == nil {
		return nil, fmt.Errorf("decode geojson: %w: no features", ErrFormat)
	}

	records := make([]Record, 0, len(fc.Features))
	for _, f := range fc.Features {
		rec := recordFromAttributes(f.Properties)

		if f.Geometry != nil {
			// malformed coordinates only cost this feature its position
			if p, err := geo.ParseCoordinates(f.Geometry.Coordinates); err == nil {
				rec.Position, rec.HasPosition = p, true
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// EntitySource reads a flat {"entities": [...]} list with WKT point strings.
type EntitySource struct{}

func (EntitySource) Name() string { return "json" }

// Decode implements Source.
func (EntitySource) Decode(r io.Reader) ([]Record, error) {
	var doc struct {
		Entities []map[string]any `json:"entities"`
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	if doc.Entities == nil {
		return nil, fmt.Errorf("decode entities: %w: no entities", ErrFormat)
	}

	records := make([]Record, 0, len(doc.Entities))
	for _, item := range doc.Entities {
		rec := recordFromAttributes(item)

		if point, ok := item[KeyPoint].(string); ok {
			if p, err := geo.ParsePoint(point); err == nil {
				rec.Position, rec.HasPosition = p, true
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
