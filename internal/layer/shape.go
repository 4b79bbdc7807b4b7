package layer

import (
	"fmt"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// geomFromShape converts a go-shp geometry to a go-geom geometry in the
// shapefile's native coordinates. Z and M ordinates are dropped. Returns
// nil for unsupported or empty shapes.
func geomFromShape(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PointZ:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PointM:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})

	case *shp.PolyLine:
		return multiLineString(s.Points, s.Parts, s.NumParts)

	case *shp.PolyLineZ:
		return multiLineString(s.Points, s.Parts, s.NumParts)

	case *shp.PolyLineM:
		return multiLineString(s.Points, s.Parts, s.NumParts)

	case *shp.Polygon:
		return multiPolygon(s.Points, s.Parts, s.NumParts)

	case *shp.PolygonZ:
		return multiPolygon(s.Points, s.Parts, s.NumParts)

	case *shp.PolygonM:
		return multiPolygon(s.Points, s.Parts, s.NumParts)

	default:
		zap.L().Warn("layer: unsupported shape type skipped", zap.String("type", fmt.Sprintf("%T", shape)))
		return nil
	}
}

// multiLineString converts shapefile polyline parts to a
// geom.MultiLineString.
func multiLineString(points []shp.Point, parts []int32, numParts int32) geom.T {
	if numParts == 0 || len(points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY)

	for i := int32(0); i < numParts; i++ {
		flat := partCoords(points, parts, i, numParts)
		if len(flat) < 4 {
			continue
		}
		ls := geom.NewLineStringFlat(geom.XY, flat)
		if err := mls.Push(ls); err != nil {
			zap.L().Debug("layer: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

// multiPolygon converts shapefile polygon parts to a geom.MultiPolygon.
// Shapefile outer rings wind clockwise and hole rings counter-clockwise,
// so rings are assigned by winding: each clockwise ring starts a new
// polygon and the counter-clockwise rings that follow become its holes.
func multiPolygon(points []shp.Point, parts []int32, numParts int32) geom.T {
	if numParts == 0 || len(points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("layer: skipping malformed polygon", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < numParts; i++ {
		flat := partCoords(points, parts, i, numParts)
		if len(flat) < 8 {
			continue
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		// Negative shoelace area means clockwise, i.e. an outer ring.
		// A hole arriving before any outer ring is treated as an outer
		// ring rather than dropped.
		if signedRingArea(flat) >= 0 && current != nil {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("layer: skipping malformed hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("layer: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		current = poly
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedRingArea returns twice the shoelace area of a flat (x, y) ring.
// Positive for counter-clockwise rings, negative for clockwise.
func signedRingArea(flat []float64) float64 {
	var sum float64
	n := len(flat)
	for i := 0; i < n; i += 2 {
		j := (i + 2) % n
		sum += flat[i]*flat[j+1] - flat[j]*flat[i+1]
	}
	return sum
}

// partCoords returns the flat (x, y) coordinates of one shapefile part.
func partCoords(points []shp.Point, parts []int32, i, numParts int32) []float64 {
	start := parts[i]
	end := int32(len(points))
	if i+1 < numParts {
		end = parts[i+1]
	}

	flat := make([]float64, 0, (end-start)*2)
	for j := start; j < end; j++ {
		flat = append(flat, points[j].X, points[j].Y)
	}
	return flat
}
