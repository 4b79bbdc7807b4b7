package main

import (
	"github.com/rotisserie/eris"

	"github.com/gridscape/hexsight/internal/analysis"
	"github.com/gridscape/hexsight/internal/config"
	"github.com/gridscape/hexsight/internal/crs"
	"github.com/gridscape/hexsight/internal/layer"
	"github.com/gridscape/hexsight/internal/raster"
)

// buildAnalyzer wires the analysis pipeline from configuration. The raster is
// opened once here to discover the working CRS; the vector layers are loaded
// into memory up front, reprojected into it where needed, then shared across
// requests. Each analysis reopens the raster through the returned closure.
func buildAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	dem, err := raster.Open(cfg.Data.DEMPath)
	if err != nil {
		return nil, eris.Wrap(err, "open elevation raster")
	}
	targetWKT := dem.ProjectionWKT()
	dem.Close()
	if targetWKT == "" {
		return nil, eris.Errorf("raster %s has no projection", cfg.Data.DEMPath)
	}

	proj, err := crs.New(targetWKT)
	if err != nil {
		return nil, eris.Wrap(err, "build coordinate transformer")
	}

	projFor := func(sourceCRS string) (layer.Projector, error) {
		return crs.NewBetween(sourceCRS, targetWKT)
	}
	layers := layer.LoadSet(cfg.Data.VectorDir, targetWKT, projFor)

	openDEM := func() (raster.Dataset, error) { return raster.Open(cfg.Data.DEMPath) }
	return analysis.New(openDEM, proj, layers), nil
}
