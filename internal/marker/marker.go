// Package marker turns establishment records into styled map markers with popups.
package marker

import (
	"bytes"
	"html/template"

	"github.com/woozymasta/edumap/internal/colour"
	"github.com/woozymasta/edumap/internal/config"
	"github.com/woozymasta/edumap/internal/dataset"
	"github.com/woozymasta/edumap/internal/geo"

	"github.com/rs/zerolog/log"
)

// Style mirrors Leaflet circle marker options.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	Radius      int     `json:"radius"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
}

// Marker is a single establishment ready for display.
type Marker struct {
	Position   geo.Position
	Colour     colour.Colour
	Style      Style
	TypeCode   string
	TypeName   string
	StatusCode string
	StatusName string
	District   string
	Name       string
	Popup      template.HTML
	ID         int
}

// Feature renders the marker as a GeoJSON point carrying style and popup.
func (m *Marker) Feature() geo.GeoJSONFeature {
	f := geo.NewPointFeature(m.Position, map[string]interface{}{
		"name":       m.Name,
		"type":       m.TypeCode,
		"typeName":   m.TypeName,
		"status":     m.StatusCode,
		"statusName": m.StatusName,
		"district":   m.District,
		"colour":     m.Colour.String(),
		"style":      m.Style,
		"popup":      string(m.Popup),
	})
	f.ID = m.ID
	return f
}

var popupTemplate = template.Must(template.New("popup").Parse(
	`<b>{{.Name}}</b><br>` +
		`Educational Establishment Number: {{.Number}}<br>` +
		`Local Authority District: <a href="{{.DistrictURL}}" target="_blank" rel="noopener">{{.District}}</a><br>` +
		`Ward: <a href="{{.WardURL}}" target="_blank" rel="noopener">{{.Ward}}</a><br>` +
		`Educational Establishment Type: {{.TypeCode}} ({{.TypeName}})<br>` +
		`School Capacity: {{.Capacity}}<br>` +
		`Educational Establishment Status: {{.StatusCode}} ({{.StatusName}})<br>` +
		`Website: {{if .Website}}<a href="{{.Website}}" target="_blank" rel="noopener">{{.Website}}</a>{{else}}N/A{{end}}<br>` +
		`Reference: <a href="{{.EntityURL}}" target="_blank" rel="noopener">{{.Reference}}</a>`,
))

type popupData struct {
	dataset.Record
	TypeName    string
	StatusName  string
	DistrictURL string
	WardURL     string
	EntityURL   string
}

// Builder creates markers. It is not safe for concurrent use.
type Builder struct {
	colours  *colour.Table
	mappings dataset.Mappings
	links    config.Links
	nextID   int
}

// NewBuilder returns a builder resolving labels through m and colours through t.
func NewBuilder(m dataset.Mappings, t *colour.Table, links config.Links) *Builder {
	return &Builder{mappings: m, colours: t, links: links, nextID: 1}
}

// AssignColours gives every type code in records a colour, in record order.
// Records without a position still take part.
func (b *Builder) AssignColours(records []dataset.Record) {
	for i := range records {
		b.colours.Assign(records[i].TypeCode)
	}
}

// Build returns the marker for rec, or false when rec has no usable position.
func (b *Builder) Build(rec dataset.Record) (*Marker, bool) {
	if !rec.HasPosition || !rec.Position.Valid() {
		return nil, false
	}

	c := b.colours.Assign(rec.TypeCode)
	css := c.String()

	data := popupData{
		Record:      rec,
		TypeName:    b.mappings.TypeName(rec.TypeCode),
		StatusName:  b.mappings.StatusName(rec.StatusCode),
		DistrictURL: b.links.Geography + rec.District,
		WardURL:     b.links.Geography + rec.Ward,
		EntityURL:   b.links.Entity + rec.Entity,
	}

	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, data); err != nil {
		// the template only reads string fields, so this is a programming error
		log.Error().Err(err).Str("reference", rec.Reference).Msg("Failed to render popup")
		return nil, false
	}

	m := &Marker{
		ID:         b.nextID,
		Position:   rec.Position,
		Colour:     c,
		TypeCode:   rec.TypeCode,
		TypeName:   data.TypeName,
		StatusCode: rec.StatusCode,
		StatusName: data.StatusName,
		District:   rec.District,
		Name:       rec.Name,
		Popup:      template.HTML(buf.String()),
		Style: Style{
			Color:       css,
			FillColor:   css,
			Radius:      8,
			Weight:      1,
			Opacity:     1,
			FillOpacity: 0.8,
		},
	}
	b.nextID++

	return m, true
}

// BuildAll builds markers for every positioned record and counts the rest.
func (b *Builder) BuildAll(records []dataset.Record) (markers []*Marker, skipped int) {
	markers = make([]*Marker, 0, len(records))
	for _, rec := range records {
		m, ok := b.Build(rec)
		if !ok {
			skipped++
			continue
		}
		markers = append(markers, m)
	}

	return markers, skipped
}
