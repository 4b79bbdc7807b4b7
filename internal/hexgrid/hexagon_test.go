package hexgrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ClosedRing(t *testing.T) {
	hex := New(1000, 2000, 500)

	coords := hex.Coords()
	require.Len(t, coords, 1, "single ring")
	ring := coords[0]
	require.Len(t, ring, 7, "closed hexagon has 7 points")
	assert.Equal(t, ring[0], ring[6], "first point equals last")
}

func TestNew_VertexDistance(t *testing.T) {
	tests := []struct {
		name    string
		cx, cy  float64
		radiusM float64
	}{
		{name: "unit hexagon at origin", cx: 0, cy: 0, radiusM: 1},
		{name: "2km hexagon", cx: 500000, cy: 4649776, radiusM: 2000},
		{name: "minimum request radius", cx: -3000, cy: 12000, radiusM: 500},
		{name: "maximum request radius", cx: 700000, cy: 100000, radiusM: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hex := New(tt.cx, tt.cy, tt.radiusM)
			ring := hex.Coords()[0]
			for i, c := range ring[:6] {
				dist := math.Hypot(c[0]-tt.cx, c[1]-tt.cy)
				assert.InDelta(t, tt.radiusM, dist, 1e-6, "vertex %d", i)
			}
		})
	}
}

func TestNew_VertexAngles(t *testing.T) {
	hex := New(0, 0, 1000)
	ring := hex.Coords()[0]

	for i, c := range ring[:6] {
		want := float64(60*i-30) * math.Pi / 180
		got := math.Atan2(c[1], c[0])
		// Normalize both to [0, 2pi) before comparing.
		assert.InDelta(t, math.Mod(want+2*math.Pi, 2*math.Pi), math.Mod(got+2*math.Pi, 2*math.Pi), 1e-9, "vertex %d", i)
	}
}

func TestNew_Orientation(t *testing.T) {
	hex := New(0, 0, 1000)
	ring := hex.Coords()[0]

	// The -30 degree offset puts the side edges vertical and an apex at the
	// top and bottom.
	assert.InDelta(t, ring[0][0], ring[1][0], 1e-9, "right edge is vertical")
	assert.InDelta(t, ring[3][0], ring[4][0], 1e-9, "left edge is vertical")
	assert.InDelta(t, 1000, ring[2][1], 1e-9, "top apex")
	assert.InDelta(t, -1000, ring[5][1], 1e-9, "bottom apex")
}

func TestArea_MatchesGeometry(t *testing.T) {
	for _, radius := range []float64{500, 2000, 10000} {
		hex := New(12345, -6789, radius)
		assert.InEpsilon(t, Area(radius), hex.Area(), 1e-9, "radius %v", radius)
	}
}
