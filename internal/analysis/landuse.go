package analysis

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gridscape/hexsight/internal/overlay"
)

// landUse groups the clipped land use polygons by their classification value
// and reports the class covering the most area. Features with an empty class
// or no overlap are skipped. The breakdown keys are lower-cased, so classes
// differing only in case merge; the dominant label keeps the raw casing of
// the largest single raw value.
func (a *Analyzer) landUse(c *overlay.Clipper) LandUseStats {
	layer := a.layers.LandUse
	if layer == nil || layer.ClassField == "" {
		return LandUseStats{Status: StatusUnavailable}
	}

	byRawClass := make(map[string]float64)
	for _, f := range layer.Features {
		class := f.Attrs[layer.ClassField]
		if class == "" {
			continue
		}
		clipped, err := c.ClippedArea(f.Geom)
		if err != nil {
			zap.L().Warn("analysis: land use overlay failed", zap.Error(err))
			return LandUseStats{Status: StatusFailed}
		}
		if clipped <= 0 {
			continue
		}
		byRawClass[class] += clipped
	}
	if len(byRawClass) == 0 {
		return LandUseStats{Status: StatusUnavailable}
	}

	var (
		dominant    string
		dominantSum float64
		total       float64
	)
	breakdown := make(map[string]float64, len(byRawClass))
	for class, sum := range byRawClass {
		total += sum
		breakdown[strings.ToLower(class)] += sum
		if sum > dominantSum || (sum == dominantSum && class < dominant) {
			dominant, dominantSum = class, sum
		}
	}

	return LandUseStats{
		Status:     StatusOK,
		Dominant:   dominant,
		Percentage: dominantSum / total * 100,
		Breakdown:  breakdown,
	}
}
