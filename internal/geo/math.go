package geo

import "math"

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// LonLatToTile converts a WGS84 position to slippy map tile indices at zoom z.
//
// Latitude is clamped to the Mercator limits and the result to the tile grid,
// so every input yields a tile that exists at that zoom.
func LonLatToTile(lon, lat float64, z int) (x, y int) {
	if lat > MaxLat {
		lat = MaxLat
	} else if lat < -MaxLat {
		lat = -MaxLat
	}

	n := float64(int(1) << z)
	latRad := lat * math.Pi / 180.0

	x = int(math.Floor((lon + 180.0) / 360.0 * n))
	y = int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	return clampTile(x, z), clampTile(y, z)
}

// TileRange returns the inclusive tile index range covering b at zoom z.
func TileRange(b Bounds, z int) (minX, minY, maxX, maxY int) {
	minX, minY = LonLatToTile(b.Min.Lon, b.Max.Lat, z)
	maxX, maxY = LonLatToTile(b.Max.Lon, b.Min.Lat, z)
	return minX, minY, maxX, maxY
}

func clampTile(v, z int) int {
	maxCoord := (1 << z) - 1
	if v < 0 {
		return 0
	}
	if v > maxCoord {
		return maxCoord
	}
	return v
}
