package layer

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/gridscape/hexsight/internal/hexgrid"
	"github.com/gridscape/hexsight/internal/overlay"
)

// holedSquare is a 100x100 square with a 50x50 hole, in shapefile ring
// order: the outer ring clockwise, the hole counter-clockwise.
func holedSquare() *shp.Polygon {
	rings := [][]shp.Point{
		{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 0}},
		{{X: 25, Y: 25}, {X: 75, Y: 25}, {X: 75, Y: 75}, {X: 25, Y: 75}, {X: 25, Y: 25}},
	}
	return (*shp.Polygon)(shp.NewPolyLine(rings))
}

func TestGeomFromShape_HoleRingBecomesInterior(t *testing.T) {
	g := geomFromShape(holedSquare())
	require.NotNil(t, g)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
}

func TestGeomFromShape_HoledPolygonArea(t *testing.T) {
	g := geomFromShape(holedSquare())
	require.NotNil(t, g)

	clipper, err := overlay.NewClipper(hexgrid.New(50, 50, 200))
	require.NoError(t, err)

	area, err := clipper.ClippedArea(g)
	require.NoError(t, err)
	assert.InDelta(t, 7500, area, 1e-6)
}

func TestGeomFromShape_MultipleOuterRings(t *testing.T) {
	// Two disjoint clockwise squares: two sibling polygons, no holes.
	rings := [][]shp.Point{
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}},
		{{X: 20, Y: 0}, {X: 20, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 0}, {X: 20, Y: 0}},
	}
	g := geomFromShape((*shp.Polygon)(shp.NewPolyLine(rings)))
	require.NotNil(t, g)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
}

func TestGeomFromShape_ZAndMVariants(t *testing.T) {
	square := []shp.Point{
		{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
	}

	t.Run("point z", func(t *testing.T) {
		g := geomFromShape(&shp.PointZ{X: 1, Y: 2, Z: 3})
		require.NotNil(t, g)
		assert.Equal(t, []float64{1, 2}, g.FlatCoords())
	})

	t.Run("point m", func(t *testing.T) {
		g := geomFromShape(&shp.PointM{X: 4, Y: 5, M: 6})
		require.NotNil(t, g)
		assert.Equal(t, []float64{4, 5}, g.FlatCoords())
	})

	t.Run("polyline z", func(t *testing.T) {
		pl := &shp.PolyLineZ{
			NumParts:  1,
			NumPoints: 2,
			Parts:     []int32{0},
			Points:    []shp.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
			ZArray:    []float64{100, 200},
		}
		g := geomFromShape(pl)
		require.NotNil(t, g)

		mls, ok := g.(*geom.MultiLineString)
		require.True(t, ok)
		require.Equal(t, 1, mls.NumLineStrings())
		assert.Equal(t, []float64{0, 0, 10, 0}, mls.FlatCoords())
	})

	t.Run("polygon z", func(t *testing.T) {
		pz := &shp.PolygonZ{
			NumParts:  1,
			NumPoints: int32(len(square)),
			Parts:     []int32{0},
			Points:    square,
			ZArray:    make([]float64, len(square)),
		}
		g := geomFromShape(pz)
		require.NotNil(t, g)

		mp, ok := g.(*geom.MultiPolygon)
		require.True(t, ok)
		assert.Equal(t, 1, mp.NumPolygons())
	})
}

func TestSignedRingArea(t *testing.T) {
	cw := []float64{0, 0, 0, 10, 10, 10, 10, 0}
	ccw := []float64{0, 0, 10, 0, 10, 10, 0, 10}

	assert.Negative(t, signedRingArea(cw))
	assert.Positive(t, signedRingArea(ccw))
}
