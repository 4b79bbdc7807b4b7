// Package crs converts coordinates between the geographic request CRS
// (EPSG:4326) and the projected CRS of the elevation raster. All length and
// area math elsewhere assumes projected, linear-unit coordinates.
package crs

import (
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-proj/v11"
)

// Geographic is the CRS of every incoming latitude/longitude pair.
const Geographic = "EPSG:4326"

// Transformer converts between a source CRS and one projected CRS. PROJ
// follows the authority axis order, so when the source is geographic the
// input side of the transform is (latitude, longitude) — not (lon, lat).
// Forward and Inverse name their parameters accordingly; the control-point
// test pins this convention.
//
// A PJ handle is not safe for concurrent use, so calls are serialized.
type Transformer struct {
	mu sync.Mutex
	pj *proj.PJ

	// geographicSource records whether the source CRS is geographic, which
	// decides axis handling in ProjectFlatCoords.
	geographicSource bool
}

// New creates a transformer from EPSG:4326 to the given projected CRS.
// The target may be any CRS description PROJ understands, including the
// raster's projection WKT verbatim.
func New(targetCRS string) (*Transformer, error) {
	return NewBetween(Geographic, targetCRS)
}

// NewBetween creates a transformer from an arbitrary source CRS to the given
// target CRS. Both may be authority codes or WKT.
func NewBetween(sourceCRS, targetCRS string) (*Transformer, error) {
	pj, err := proj.NewCRSToCRS(sourceCRS, targetCRS, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "crs: create transform from %q to %q", sourceCRS, targetCRS)
	}
	return &Transformer{pj: pj, geographicSource: isGeographic(sourceCRS)}, nil
}

// isGeographic reports whether a CRS description lacks a projection, i.e.
// its coordinates are degrees rather than linear units.
func isGeographic(crs string) bool {
	return !strings.Contains(crs, "PROJCS") && !strings.Contains(crs, "PROJCRS")
}

// Forward converts a source coordinate to the target CRS. For a geographic
// source the arguments are (latitude, longitude); for a projected source,
// its native (x, y).
func (t *Transformer) Forward(a, b float64) (x, y float64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.pj.Forward(proj.NewCoord(a, b, 0, 0))
	if err != nil {
		return 0, 0, eris.Wrap(err, "crs: forward transform")
	}
	return out.X(), out.Y(), nil
}

// Inverse converts a target coordinate back to the source CRS.
func (t *Transformer) Inverse(x, y float64) (a, b float64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.pj.Inverse(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, eris.Wrap(err, "crs: inverse transform")
	}
	return out.X(), out.Y(), nil
}

// ProjectFlatCoords projects geometry coordinates in place. Geographic
// sources follow shapefile convention, (longitude, latitude) pairs, and are
// swapped to PROJ's authority order; projected sources are already (x, y).
// On return the coords hold target-CRS (x, y).
func (t *Transformer) ProjectFlatCoords(flat []float64, stride int) error {
	if stride < 2 {
		return eris.Errorf("crs: unsupported coordinate stride %d", stride)
	}
	for i := 0; i+1 < len(flat); i += stride {
		a, b := flat[i], flat[i+1]
		if t.geographicSource {
			a, b = b, a
		}
		x, y, err := t.Forward(a, b)
		if err != nil {
			return err
		}
		flat[i], flat[i+1] = x, y
	}
	return nil
}
