// Package colour assigns display colours to establishment type codes.
package colour

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Colour is an opaque RGB display colour.
type Colour struct {
	R, G, B uint8
}

// String renders the colour as a CSS rgba() value at full opacity.
func (c Colour) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, 1)", c.R, c.G, c.B)
}

// Color converts to an opaque image colour.
func (c Colour) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// MarshalText implements encoding.TextMarshaler so colours serialise as CSS.
func (c Colour) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (Colour, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Colour{}, fmt.Errorf("colour %q: expected #rrggbb", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Colour{}, fmt.Errorf("colour %q: %w", s, err)
	}

	return Colour{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Strategy produces the colour for a type code seen for the first time.
type Strategy interface {
	Next(code string) Colour
}

// Random picks uniformly random RGB components.
type Random struct {
	rnd *rand.Rand
}

// NewRandom returns a Random strategy. A nil source uses the global generator.
func NewRandom(src rand.Source) *Random {
	if src == nil {
		return &Random{}
	}
	return &Random{rnd: rand.New(src)}
}

// Next implements Strategy.
func (r *Random) Next(string) Colour {
	n := r.uint32()
	return Colour{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}
}

func (r *Random) uint32() uint32 {
	if r.rnd == nil {
		return rand.Uint32()
	}
	return r.rnd.Uint32()
}

// DefaultPalette is used by the palette strategy when none is configured.
var DefaultPalette = []Colour{
	{0x1f, 0x77, 0xb4},
	{0xff, 0x7f, 0x0e},
	{0x2c, 0xa0, 0x2c},
	{0xd6, 0x27, 0x28},
	{0x94, 0x67, 0xbd},
	{0x8c, 0x56, 0x4b},
	{0xe3, 0x77, 0xc2},
	{0x7f, 0x7f, 0x7f},
	{0xbc, 0xbd, 0x22},
	{0x17, 0xbe, 0xcf},
}

// Palette cycles through a fixed list of colours in order of first use.
type Palette struct {
	colours []Colour
	next    int
}

// NewPalette returns a Palette strategy; an empty list selects DefaultPalette.
func NewPalette(colours []Colour) *Palette {
	if len(colours) == 0 {
		colours = DefaultPalette
	}
	return &Palette{colours: colours}
}

// Next implements Strategy.
func (p *Palette) Next(string) Colour {
	c := p.colours[p.next%len(p.colours)]
	p.next++
	return c
}

// Table maps type codes to colours. The first colour assigned to a code is kept.
type Table struct {
	strategy Strategy
	colours  map[string]Colour
}

// NewTable creates an empty table backed by the given strategy.
func NewTable(s Strategy) *Table {
	return &Table{strategy: s, colours: make(map[string]Colour)}
}

// Assign returns the colour of code, drawing a new one on first sight.
func (t *Table) Assign(code string) Colour {
	if c, ok := t.colours[code]; ok {
		return c
	}

	c := t.strategy.Next(code)
	t.colours[code] = c
	return c
}

// Lookup returns the colour of an already assigned code.
func (t *Table) Lookup(code string) (Colour, bool) {
	c, ok := t.colours[code]
	return c, ok
}

// Len reports how many codes have a colour.
func (t *Table) Len() int {
	return len(t.colours)
}

// New builds the strategy named in configuration.
func New(strategy string, palette []string) (Strategy, error) {
	switch strategy {
	case "", "random":
		return NewRandom(nil), nil
	case "palette":
		colours := make([]Colour, 0, len(palette))
		for _, s := range palette {
			c, err := ParseHex(s)
			if err != nil {
				return nil, err
			}
			colours = append(colours, c)
		}
		return NewPalette(colours), nil
	default:
		return nil, fmt.Errorf("unknown colour strategy %q", strategy)
	}
}
