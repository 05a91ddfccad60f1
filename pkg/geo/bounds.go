// Package geo holds the small amount of planar geometry needed to draw
// markers on a character grid.
package geo

import (
	"math"

	"campusmap/internal/models"
)

type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundsOf returns the smallest box containing every valid coordinate. ok is
// false when there is none.
func BoundsOf(coords []models.Coordinates) (b Bounds, ok bool) {
	b = Bounds{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLon: math.Inf(1), MaxLon: math.Inf(-1),
	}
	for _, c := range coords {
		if !c.Valid() {
			continue
		}
		ok = true
		b.MinLat = math.Min(b.MinLat, c.Lat)
		b.MaxLat = math.Max(b.MaxLat, c.Lat)
		b.MinLon = math.Min(b.MinLon, c.Lon)
		b.MaxLon = math.Max(b.MaxLon, c.Lon)
	}
	if !ok {
		return Bounds{}, false
	}
	return b, true
}

func (b Bounds) Center() models.Coordinates {
	return models.Coordinates{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c models.Coordinates) bool {
	return c.Valid() &&
		c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// Project maps c onto a width x height grid with row 0 at the north edge.
// A degenerate axis (all points on one line) projects to the middle.
func (b Bounds) Project(c models.Coordinates, width, height int) (x, y int, ok bool) {
	if width <= 0 || height <= 0 || !b.Contains(c) {
		return 0, 0, false
	}
	x = scale(c.Lon-b.MinLon, b.MaxLon-b.MinLon, width)
	y = scale(b.MaxLat-c.Lat, b.MaxLat-b.MinLat, height)
	return x, y, true
}

func scale(offset, span float64, cells int) int {
	if span == 0 {
		return cells / 2
	}
	i := int(math.Round(offset / span * float64(cells-1)))
	return min(max(i, 0), cells-1)
}

// Extend returns b grown to include c. Invalid coordinates are ignored.
func (b Bounds) Extend(c models.Coordinates) Bounds {
	if !c.Valid() {
		return b
	}
	return Bounds{
		MinLat: math.Min(b.MinLat, c.Lat), MaxLat: math.Max(b.MaxLat, c.Lat),
		MinLon: math.Min(b.MinLon, c.Lon), MaxLon: math.Max(b.MaxLon, c.Lon),
	}
}
