package analysis

import (
	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/overlay"
)

// buildings sums the intersected footprint area and derives the density as
// footprint area over hexagon area. Both metrics share one pass and degrade
// together.
func (a *Analyzer) buildings(c *overlay.Clipper) (area, density Metric) {
	buildings := a.layers.Buildings
	if buildings == nil {
		return metricUnavailable(), metricUnavailable()
	}

	var total float64
	for _, f := range buildings.Features {
		clipped, err := c.ClippedArea(f.Geom)
		if err != nil {
			zap.L().Warn("analysis: building overlay failed", zap.Error(err))
			return metricFailed(), metricFailed()
		}
		total += clipped
	}

	hexArea := c.HexagonArea()
	if hexArea <= 0 {
		return metricOK(total), metricFailed()
	}
	return metricOK(total), metricOK(total / hexArea)
}
