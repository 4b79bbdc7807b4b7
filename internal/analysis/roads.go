package analysis

import (
	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/overlay"
)

// roadLength sums the length of every road segment inside the hexagon, in
// meters. An empty intersection is a true zero; a missing layer is
// Unavailable.
func (a *Analyzer) roadLength(c *overlay.Clipper) Metric {
	roads := a.layers.Roads
	if roads == nil {
		return metricUnavailable()
	}

	var total float64
	for _, f := range roads.Features {
		length, err := c.ClippedLength(f.Geom)
		if err != nil {
			zap.L().Warn("analysis: road overlay failed", zap.Error(err))
			return metricFailed()
		}
		total += length
	}
	return metricOK(total)
}
