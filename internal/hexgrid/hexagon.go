// Package hexgrid constructs the hexagonal regions of interest that every
// analysis metric is computed against.
package hexgrid

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Vertices in a closed hexagon ring (first point repeated).
const ringPoints = 7

// New builds a hexagon of the given radius (meters) around a center point in
// a projected CRS. Vertex i sits at angle 60*i - 30 degrees from the center,
// the orientation the mapping front end renders. The returned polygon ring is
// closed: 7 coordinate pairs, first equal to last.
func New(centerX, centerY, radiusM float64) *geom.Polygon {
	flat := make([]float64, 0, ringPoints*2)
	for i := 0; i < 6; i++ {
		angle := float64(60*i-30) * math.Pi / 180
		flat = append(flat,
			centerX+radiusM*math.Cos(angle),
			centerY+radiusM*math.Sin(angle),
		)
	}
	// Close the ring.
	flat = append(flat, flat[0], flat[1])

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// Area returns the analytic area of a regular hexagon with the given radius.
func Area(radiusM float64) float64 {
	return 3 * math.Sqrt(3) / 2 * radiusM * radiusM
}
