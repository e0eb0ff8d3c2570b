package tiles

import "github.com/woozymasta/edumap/internal/geo"

// Cover lists every tile intersecting b for zoom levels minZoom..maxZoom.
func Cover(b geo.Bounds, minZoom, maxZoom int) []TileCoordinate {
	var out []TileCoordinate
	for z := minZoom; z <= maxZoom; z++ {
		minX, minY, maxX, maxY := geo.TileRange(b, z)
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				out = append(out, TileCoordinate{Z: z, X: x, Y: y})
			}
		}
	}
	return out
}
