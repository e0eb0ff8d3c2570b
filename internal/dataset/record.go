// Package dataset loads educational establishment records and their code mappings.
package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/woozymasta/edumap/internal/geo"
)

// Attribute keys shared by both input formats.
const (
	KeyEntity    = "entity"
	KeyReference = "reference"
	KeyName      = "name"
	KeyNumber    = "educational-establishment-number"
	KeyType      = "educational-establishment-type"
	KeyStatus    = "educational-establishment-status"
	KeyDistrict  = "local-authority-district"
	KeyWard      = "ward"
	KeyCapacity  = "school-capacity"
	KeyWebsite   = "website-url"
	KeyPoint     = "point"
)

// Record is a normalised establishment, independent of the input format.
type Record struct {
	Entity     string
	Reference  string
	Name       string
	Number     string
	TypeCode   string
	StatusCode string
	District   string
	Ward       string
	Capacity   string
	Website    string

	// Position is only meaningful when HasPosition is set.
	Position    geo.Position
	HasPosition bool
}

// recordFromAttributes copies the known attributes out of a decoded JSON object.
func recordFromAttributes(attrs map[string]any) Record {
	return Record{
		Entity:     text(attrs[KeyEntity]),
		Reference:  text(attrs[KeyReference]),
		Name:       text(attrs[KeyName]),
		Number:     text(attrs[KeyNumber]),
		TypeCode:   text(attrs[KeyType]),
		StatusCode: text(attrs[KeyStatus]),
		District:   text(attrs[KeyDistrict]),
		Ward:       text(attrs[KeyWard]),
		Capacity:   text(attrs[KeyCapacity]),
		Website:    text(attrs[KeyWebsite]),
	}
}

// Attributes returns the record in the flat key layout of the source data.
func (r Record) Attributes() map[string]any {
	return map[string]any{
		KeyEntity:    r.Entity,
		KeyReference: r.Reference,
		KeyName:      r.Name,
		KeyNumber:    r.Number,
		KeyType:      r.TypeCode,
		KeyStatus:    r.StatusCode,
		KeyDistrict:  r.District,
		KeyWard:      r.Ward,
		KeyCapacity:  r.Capacity,
		KeyWebsite:   r.Website,
	}
}

// text renders a decoded JSON scalar the way it appeared in the source.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
