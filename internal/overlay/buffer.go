package overlay

import (
	"fmt"
	"math"
	"strings"

	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// discSegments controls how finely buffer end caps and joins are
// approximated. 32 keeps the area error of a cap under 0.7%.
const discSegments = 32

// LineBufferArea returns the area of the polygon obtained by buffering every
// line in g by halfWidth meters on each side, with round caps and joins. The
// buffer is assembled as the union of one quadrilateral per segment and one
// disc per vertex, so self-crossing lines do not double count area.
// Non-line geometry parts contribute nothing, matching the waterway
// estimator's contract.
func LineBufferArea(g geom.T, halfWidth float64) (float64, error) {
	if halfWidth <= 0 {
		return 0, eris.Errorf("overlay: buffer width must be positive, got %v", halfWidth)
	}

	var pieces []sf.Geometry
	if err := collectBufferPieces(g, halfWidth, &pieces); err != nil {
		return 0, err
	}
	if len(pieces) == 0 {
		return 0, nil
	}

	union := pieces[0]
	for _, p := range pieces[1:] {
		var err error
		union, err = sf.Union(union, p)
		if err != nil {
			return 0, eris.Wrap(err, "overlay: union buffer pieces")
		}
	}
	return union.Area(), nil
}

// collectBufferPieces walks g and appends the buffer quadrilaterals and
// discs for every line string found.
func collectBufferPieces(g geom.T, halfWidth float64, pieces *[]sf.Geometry) error {
	switch t := g.(type) {
	case *geom.LineString:
		return lineStringPieces(t.FlatCoords(), t.Stride(), halfWidth, pieces)

	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			ls := t.LineString(i)
			if err := lineStringPieces(ls.FlatCoords(), ls.Stride(), halfWidth, pieces); err != nil {
				return err
			}
		}
		return nil

	case *geom.GeometryCollection:
		for _, sub := range t.Geoms() {
			if err := collectBufferPieces(sub, halfWidth, pieces); err != nil {
				return err
			}
		}
		return nil

	default:
		// Points and polygons are not buffered.
		return nil
	}
}

func lineStringPieces(flat []float64, stride int, halfWidth float64, pieces *[]sf.Geometry) error {
	n := len(flat) / stride
	for i := 0; i < n; i++ {
		x, y := flat[i*stride], flat[i*stride+1]

		disc, err := sf.UnmarshalWKT(discWKT(x, y, halfWidth))
		if err != nil {
			return eris.Wrap(err, "overlay: build buffer disc")
		}
		*pieces = append(*pieces, disc)

		if i+1 >= n {
			continue
		}
		x2, y2 := flat[(i+1)*stride], flat[(i+1)*stride+1]
		quad := segmentQuadWKT(x, y, x2, y2, halfWidth)
		if quad == "" {
			continue
		}
		q, err := sf.UnmarshalWKT(quad)
		if err != nil {
			return eris.Wrap(err, "overlay: build buffer segment")
		}
		*pieces = append(*pieces, q)
	}
	return nil
}

// segmentQuadWKT returns the rectangle of width 2*halfWidth along the
// segment, or "" for a degenerate segment.
func segmentQuadWKT(x1, y1, x2, y2, halfWidth float64) string {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return ""
	}

	// Unit normal.
	nx, ny := -dy/length*halfWidth, dx/length*halfWidth

	var sb strings.Builder
	sb.WriteString("POLYGON((")
	writeCoord(&sb, x1+nx, y1+ny)
	sb.WriteByte(',')
	writeCoord(&sb, x2+nx, y2+ny)
	sb.WriteByte(',')
	writeCoord(&sb, x2-nx, y2-ny)
	sb.WriteByte(',')
	writeCoord(&sb, x1-nx, y1-ny)
	sb.WriteByte(',')
	writeCoord(&sb, x1+nx, y1+ny)
	sb.WriteString("))")
	return sb.String()
}

// discWKT returns a regular polygon approximating the disc of the given
// radius around (x, y).
func discWKT(x, y, radius float64) string {
	var sb strings.Builder
	sb.WriteString("POLYGON((")
	for i := 0; i <= discSegments; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		angle := 2 * math.Pi * float64(i%discSegments) / discSegments
		writeCoord(&sb, x+radius*math.Cos(angle), y+radius*math.Sin(angle))
	}
	sb.WriteString("))")
	return sb.String()
}

func writeCoord(sb *strings.Builder, x, y float64) {
	fmt.Fprintf(sb, "%.6f %.6f", x, y)
}
