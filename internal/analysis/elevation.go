package analysis

import (
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/raster"
)

// elevation clips the raster to the hexagon and reduces the touched cells.
// Zero valid cells is a legitimate outcome (all no-data), reported as OK
// zeros; only a read failure degrades to Failed.
func (a *Analyzer) elevation(dem raster.Dataset, hex *geom.Polygon) ElevationStats {
	stats, err := raster.ClipStats(dem, hex)
	if err != nil {
		zap.L().Warn("analysis: elevation extraction failed", zap.Error(err))
		return ElevationStats{Status: StatusFailed}
	}
	if stats.ValidCells == 0 {
		zap.L().Debug("analysis: no valid elevation cells in hexagon")
	}
	return ElevationStats{Status: StatusOK, Min: stats.Min, Mean: stats.Mean, Max: stats.Max}
}
