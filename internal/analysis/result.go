package analysis

// Status tags the outcome of one metric. A metric degrades independently:
// Unavailable and Failed never abort the other metrics, they only control
// which placeholder the wire mapping carries.
type Status int

const (
	// StatusOK means the metric was computed, possibly as a true zero.
	StatusOK Status = iota
	// StatusUnavailable means the backing dataset was never loaded or holds
	// nothing usable; the metric reports its defined placeholder.
	StatusUnavailable
	// StatusFailed means the computation errored; the error is logged and
	// the metric reports its placeholder.
	StatusFailed
)

// Metric is one tagged numeric outcome.
type Metric struct {
	Status Status
	Value  float64
}

func metricOK(v float64) Metric { return Metric{Status: StatusOK, Value: v} }

func metricUnavailable() Metric { return Metric{Status: StatusUnavailable} }

func metricFailed() Metric { return Metric{Status: StatusFailed} }

// ElevationStats is the tagged elevation reduction.
type ElevationStats struct {
	Status Status
	Min    float64
	Mean   float64
	Max    float64
}

// LandUseStats is the tagged land-use classification. Dominant is set only
// when Status is StatusOK; the wire mapping substitutes the placeholder
// strings.
type LandUseStats struct {
	Status     Status
	Dominant   string
	Percentage float64
	Breakdown  map[string]float64
}

// Result holds every metric of one analysis. The tagged form keeps the three
// failure modes distinguishable; Map flattens it into the wire contract.
type Result struct {
	Elevation       ElevationStats
	RoadLength      Metric
	BuildingArea    Metric
	BuildingDensity Metric
	WaterArea       Metric
	WaterPercentage Metric
	LandUse         LandUseStats
	HexagonAreaSqKM float64
}

// Land-use placeholders on the wire.
const (
	landUseNoData = "No data"
	landUseError  = "Error"
)

// Map flattens the result into the response mapping. Every key is always
// present; degraded metrics carry their zero or placeholder value.
func (r *Result) Map() map[string]any {
	dominant := r.LandUse.Dominant
	switch r.LandUse.Status {
	case StatusUnavailable:
		dominant = landUseNoData
	case StatusFailed:
		dominant = landUseError
	}

	breakdown := r.LandUse.Breakdown
	if breakdown == nil {
		breakdown = map[string]float64{}
	}

	return map[string]any{
		"elevation_min":               r.Elevation.Min,
		"elevation_mean":              r.Elevation.Mean,
		"elevation_max":               r.Elevation.Max,
		"total_road_length_m":         r.RoadLength.Value,
		"building_density":            r.BuildingDensity.Value,
		"total_building_area_sq_m":    r.BuildingArea.Value,
		"water_percentage":            r.WaterPercentage.Value,
		"water_area_sq_m":             r.WaterArea.Value,
		"dominant_landuse":            dominant,
		"dominant_landuse_percentage": r.LandUse.Percentage,
		"landuse_breakdown":           breakdown,
		"hexagon_area_sq_km":          r.HexagonAreaSqKM,
	}
}
