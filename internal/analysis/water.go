package analysis

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/overlay"
)

// Waterway buffer half-widths in meters, matched in order against the
// feature classification as substrings. A waterway with a classification
// column but no matching keyword gets the default.
var waterBufferWidths = []struct {
	keyword string
	width   float64
}{
	{"river", 20},
	{"stream", 5},
	{"canal", 10},
	{"drain", 2},
}

const defaultWaterBufferWidth = 5.0

// water combines polygonal water zones with buffered linear waterways into
// one area figure and its share of the hexagon. Zone and buffer areas are
// summed without deduplication, an accepted approximation; the percentage
// can therefore exceed 100 when buffers overlap zones. Both metrics report
// Unavailable unless both water layers loaded.
func (a *Analyzer) water(c *overlay.Clipper) (area, percentage Metric) {
	zones, ways := a.layers.WaterZones, a.layers.WaterWays
	if zones == nil || ways == nil {
		return metricUnavailable(), metricUnavailable()
	}

	var total float64

	for _, f := range zones.Features {
		clipped, err := c.ClippedArea(f.Geom)
		if err != nil {
			zap.L().Warn("analysis: water zone overlay failed", zap.Error(err))
			return metricFailed(), metricFailed()
		}
		total += clipped
	}

	for _, f := range ways.Features {
		clipped, err := c.Clip(f.Geom)
		if err != nil {
			zap.L().Warn("analysis: waterway overlay failed", zap.Error(err))
			return metricFailed(), metricFailed()
		}
		buffered, err := overlay.LineBufferArea(clipped, waterBufferWidth(f.Attrs))
		if err != nil {
			zap.L().Warn("analysis: waterway buffer failed", zap.Error(err))
			return metricFailed(), metricFailed()
		}
		total += buffered
	}

	return metricOK(total), metricOK(total / c.HexagonArea() * 100)
}

// waterBufferWidth picks the buffer half-width from the first classification
// column present on the feature, fclass before type.
func waterBufferWidth(attrs map[string]string) float64 {
	for _, column := range []string{"fclass", "type"} {
		value, ok := attrs[column]
		if !ok {
			continue
		}
		lowered := strings.ToLower(value)
		for _, bw := range waterBufferWidths {
			if strings.Contains(lowered, bw.keyword) {
				return bw.width
			}
		}
		// Column present but unmatched: the default applies, the next
		// column is not consulted.
		break
	}
	return defaultWaterBufferWidth
}
