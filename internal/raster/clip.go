package raster

import (
	"fmt"
	"math"

	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/gridscape/hexsight/internal/overlay"
)

// ErrNoOverlap reports that the hexagon's bounding box is entirely outside
// the raster extent. Callers surface this instead of substituting another
// location's data.
var ErrNoOverlap = eris.New("raster: hexagon outside raster coverage")

// Stats summarizes the valid elevation cells under a hexagon.
type Stats struct {
	Min        float64
	Mean       float64
	Max        float64
	ValidCells int
}

// ClipStats reads the window of cells under the hexagon's bounding box and
// reduces every cell the hexagon touches. Inclusion is all-touched: a cell
// counts when its rectangle intersects the hexagon at all, not only when its
// center is inside. Cells holding the no-data sentinel are excluded. When no
// valid cell remains the zero Stats is returned, not an error.
func ClipStats(d Dataset, hex *geom.Polygon) (Stats, error) {
	gt := d.GeoTransform()
	if gt[2] != 0 || gt[4] != 0 {
		return Stats{}, eris.New("raster: rotated rasters are not supported")
	}
	if gt[1] == 0 || gt[5] == 0 {
		return Stats{}, eris.New("raster: degenerate geotransform")
	}

	if !Overlaps(d, hex) {
		return Stats{}, ErrNoOverlap
	}

	width, height := d.Size()

	bounds := hex.Bounds()
	hminX, hminY := bounds.Min(0), bounds.Min(1)
	hmaxX, hmaxY := bounds.Max(0), bounds.Max(1)

	// Cell window covering the hexagon's bounding box, clamped to the
	// raster.
	col0 := clamp(int(math.Floor((hminX-gt[0])/gt[1])), 0, width)
	col1 := clamp(int(math.Ceil((hmaxX-gt[0])/gt[1])), 0, width)
	rowA := (hmaxY - gt[3]) / gt[5]
	rowB := (hminY - gt[3]) / gt[5]
	row0 := clamp(int(math.Floor(math.Min(rowA, rowB))), 0, height)
	row1 := clamp(int(math.Ceil(math.Max(rowA, rowB))), 0, height)

	if col1 <= col0 || row1 <= row0 {
		return Stats{}, nil
	}

	values, err := d.Read(col0, row0, col1-col0, row1-row0)
	if err != nil {
		return Stats{}, err
	}

	hexSF, err := overlay.ToSimpleFeatures(hex)
	if err != nil {
		return Stats{}, err
	}

	nodata, hasNodata := d.NoData()

	var (
		count    int
		sum      float64
		min, max float64
	)
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			if !cellTouches(hexSF, gt, col, row) {
				continue
			}
			v := values[(row-row0)*(col1-col0)+(col-col0)]
			if hasNodata && v == nodata {
				continue
			}
			if count == 0 {
				min, max = v, v
			} else {
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
			sum += v
			count++
		}
	}

	if count == 0 {
		return Stats{}, nil
	}
	return Stats{Min: min, Mean: sum / float64(count), Max: max, ValidCells: count}, nil
}

// cellTouches reports whether the rectangle of cell (col, row) intersects
// the hexagon.
func cellTouches(hex sf.Geometry, gt [6]float64, col, row int) bool {
	x0 := gt[0] + float64(col)*gt[1]
	x1 := x0 + gt[1]
	y0 := gt[3] + float64(row)*gt[5]
	y1 := y0 + gt[5]

	rect, err := sf.UnmarshalWKT(fmt.Sprintf(
		"POLYGON((%[1]f %[3]f,%[2]f %[3]f,%[2]f %[4]f,%[1]f %[4]f,%[1]f %[3]f))",
		math.Min(x0, x1), math.Max(x0, x1), math.Min(y0, y1), math.Max(y0, y1),
	))
	if err != nil {
		return false
	}
	return sf.Intersects(hex, rect)
}

// Overlaps reports whether the hexagon's bounding box intersects the raster
// extent at all.
func Overlaps(d Dataset, hex *geom.Polygon) bool {
	width, height := d.Size()
	rminX, rminY, rmaxX, rmaxY := extent(d.GeoTransform(), width, height)

	b := hex.Bounds()
	return b.Min(0) <= rmaxX && b.Max(0) >= rminX && b.Min(1) <= rmaxY && b.Max(1) >= rminY
}

// extent returns the raster bounding box in projected coordinates.
func extent(gt [6]float64, width, height int) (minX, minY, maxX, maxY float64) {
	x0 := gt[0]
	x1 := gt[0] + float64(width)*gt[1]
	y0 := gt[3]
	y1 := gt[3] + float64(height)*gt[5]
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
