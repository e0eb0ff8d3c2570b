package geo

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidPosition is returned when a position cannot be resolved to two finite numbers.
var ErrInvalidPosition = errors.New("invalid position")

// Position is a WGS84 coordinate pair.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Valid reports whether both components are finite.
func (p Position) Valid() bool {
	return isFinite(p.Lon) && isFinite(p.Lat)
}

// LatLng returns the pair in Leaflet order.
func (p Position) LatLng() [2]float64 {
	return [2]float64{p.Lat, p.Lon}
}

// Captures: 1=Lon, 2=Lat
var pointRegex = regexp.MustCompile(`POINT\s*\(\s*(-?\d+\.?\d*)\s+(-?\d+\.?\d*)\s*\)`)

// ParsePoint reads a WKT style "POINT(lon lat)" string.
func ParsePoint(s string) (Position, error) {
	match := pointRegex.FindStringSubmatch(s)
	if match == nil {
		return Position{}, ErrInvalidPosition
	}

	lon, err1 := strconv.ParseFloat(match[1], 64)
	lat, err2 := strconv.ParseFloat(match[2], 64)
	if err1 != nil || err2 != nil {
		return Position{}, ErrInvalidPosition
	}

	p := Position{Lon: lon, Lat: lat}
	if !p.Valid() {
		return Position{}, ErrInvalidPosition
	}

	return p, nil
}

// FromCoordinates reads a GeoJSON [lon, lat, ...] array.
func FromCoordinates(coords []float64) (Position, error) {
	if len(coords) < 2 {
		return Position{}, ErrInvalidPosition
	}

	p := Position{Lon: coords[0], Lat: coords[1]}
	if !p.Valid() {
		return Position{}, ErrInvalidPosition
	}

	return p, nil
}

// ParseCoordinates reads a raw GeoJSON coordinates array. Null or missing
// lon/lat elements are invalid rather than zero.
func ParseCoordinates(raw []byte) (Position, error) {
	var elems []*float64
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Position{}, ErrInvalidPosition
	}
	if len(elems) < 2 || elems[0] == nil || elems[1] == nil {
		return Position{}, ErrInvalidPosition
	}

	return FromCoordinates([]float64{*elems[0], *elems[1]})
}

// Bounds is a lon/lat bounding box.
type Bounds struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

// Extend grows the box to include p. Start from NewBounds, not the zero value.
func (b *Bounds) Extend(p Position) {
	b.Min.Lon = math.Min(b.Min.Lon, p.Lon)
	b.Min.Lat = math.Min(b.Min.Lat, p.Lat)
	b.Max.Lon = math.Max(b.Max.Lon, p.Lon)
	b.Max.Lat = math.Max(b.Max.Lat, p.Lat)
}

// NewBounds returns a box containing only p.
func NewBounds(p Position) Bounds {
	return Bounds{Min: p, Max: p}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
