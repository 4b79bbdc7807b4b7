// Package analysis runs the hexagonal region-of-interest pipeline: one
// projected hexagon overlaid against the elevation raster and the vector
// layers, reduced to a flat mapping of terrain and land-cover metrics.
package analysis

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridscape/hexsight/internal/hexgrid"
	"github.com/gridscape/hexsight/internal/layer"
	"github.com/gridscape/hexsight/internal/overlay"
	"github.com/gridscape/hexsight/internal/raster"
)

// ErrOutsideCoverage reports that the requested hexagon does not overlap the
// elevation raster at all. The analysis refuses to substitute data from a
// different location; callers decide whether to retry elsewhere.
var ErrOutsideCoverage = eris.New("analysis: requested region outside raster coverage")

// Projector converts between geographic and projected coordinates.
// *crs.Transformer satisfies it.
type Projector interface {
	Forward(lat, lon float64) (x, y float64, err error)
	Inverse(x, y float64) (lat, lon float64, err error)
}

// Analyzer computes descriptive statistics for hexagonal regions. The vector
// layers are loaded once and shared read-only across requests; the raster is
// opened per request and closed when extraction completes.
type Analyzer struct {
	openDEM func() (raster.Dataset, error)
	proj    Projector
	layers  *layer.Set
}

// New assembles an analyzer from its collaborators.
func New(openDEM func() (raster.Dataset, error), proj Projector, layers *layer.Set) *Analyzer {
	return &Analyzer{openDEM: openDEM, proj: proj, layers: layers}
}

// Analyze runs the full pipeline for a hexagon of the given radius around
// (lat, lon). The caller validates the input ranges. Only two conditions are
// fatal: the raster failing to open (configuration failure) and the hexagon
// falling entirely outside raster coverage. Every other failure degrades the
// affected metric and leaves the rest intact.
func (a *Analyzer) Analyze(ctx context.Context, lat, lon, radiusKM float64) (*Result, error) {
	dem, err := a.openDEM()
	if err != nil {
		return nil, eris.Wrap(err, "analysis: open elevation raster")
	}
	defer func() { _ = dem.Close() }()

	x, y, err := a.proj.Forward(lat, lon)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: project center")
	}

	hex := hexgrid.New(x, y, radiusKM*1000)
	if !raster.Overlaps(dem, hex) {
		return nil, ErrOutsideCoverage
	}

	clipper, err := overlay.NewClipper(hex)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: prepare hexagon")
	}

	res := &Result{HexagonAreaSqKM: clipper.HexagonArea() / 1e6}

	// The five sub-analyses are read-only and independent; each one writes
	// its own result fields, so the merge is deterministic.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Elevation = a.elevation(dem, hex)
		return nil
	})
	g.Go(func() error {
		res.RoadLength = a.roadLength(clipper)
		return nil
	})
	g.Go(func() error {
		res.BuildingArea, res.BuildingDensity = a.buildings(clipper)
		return nil
	})
	g.Go(func() error {
		res.WaterArea, res.WaterPercentage = a.water(clipper)
		return nil
	})
	g.Go(func() error {
		res.LandUse = a.landUse(clipper)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("analysis complete",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Float64("radius_km", radiusKM),
		zap.Float64("hexagon_area_sq_km", res.HexagonAreaSqKM),
	)
	return res, nil
}

// HexagonGeoJSON returns the request hexagon as a GeoJSON polygon in
// geographic coordinates. It recomputes its own hexagon and does not touch
// the datasets. The geographic ring is the reprojection of the projected
// one, so both representations share center and radius by construction.
func (a *Analyzer) HexagonGeoJSON(lat, lon, radiusKM float64) ([]byte, error) {
	x, y, err := a.proj.Forward(lat, lon)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: project center")
	}

	hex := hexgrid.New(x, y, radiusKM*1000)

	src := hex.FlatCoords()
	flat := make([]float64, 0, len(src))
	for i := 0; i+1 < len(src); i += hex.Stride() {
		vlat, vlon, err := a.proj.Inverse(src[i], src[i+1])
		if err != nil {
			return nil, eris.Wrap(err, "analysis: unproject hexagon vertex")
		}
		// GeoJSON positions are (longitude, latitude).
		flat = append(flat, vlon, vlat)
	}

	geo := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
	data, err := geojson.Marshal(geo)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: encode hexagon geojson")
	}
	return data, nil
}
