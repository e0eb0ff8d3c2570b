package geo_test

import (
	"testing"

	"github.com/woozymasta/edumap/internal/geo"
)

func TestLonLatToTile(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		z        int
		x, y     int
	}{
		{"origin z0", 0, 0, 0, 0, 0},
		{"origin z1", 0, 0, 1, 1, 1},
		{"north west corner", -180, 85, 2, 0, 0},
		{"clamped south east", 180, -90, 3, 7, 7},
		{"birmingham z6", -1.85, 52.5, 6, 31, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := geo.LonLatToTile(tt.lon, tt.lat, tt.z)
			if x != tt.x || y != tt.y {
				t.Fatalf("got %d/%d, want %d/%d", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestTileRange(t *testing.T) {
	b := geo.Bounds{
		Min: geo.Position{Lon: -2.0, Lat: 52.4},
		Max: geo.Position{Lon: -1.7, Lat: 52.6},
	}

	minX, minY, maxX, maxY := geo.TileRange(b, 6)
	if minX != 31 || maxX != 31 || minY != 20 || maxY != 21 {
		t.Fatalf("unexpected range %d,%d..%d,%d", minX, minY, maxX, maxY)
	}
}
