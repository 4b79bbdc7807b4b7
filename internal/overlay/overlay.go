// Package overlay computes geometric intersections between the analysis
// hexagon and vector features. Features arrive as go-geom values (the shape
// loading type); the set operations run on simplefeatures geometries, bridged
// through WKB.
package overlay

import (
	sf "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// Clipper intersects features against one hexagon. It is read-only after
// construction and safe for concurrent use.
type Clipper struct {
	hex     sf.Geometry
	hexArea float64
}

// NewClipper prepares a clipper for the given projected hexagon.
func NewClipper(hex *geom.Polygon) (*Clipper, error) {
	g, err := ToSimpleFeatures(hex)
	if err != nil {
		return nil, err
	}
	return &Clipper{hex: g, hexArea: g.Area()}, nil
}

// HexagonArea returns the hexagon's area in square meters.
func (c *Clipper) HexagonArea() float64 {
	return c.hexArea
}

// ClippedLength returns the length in meters of the part of g inside the
// hexagon. Zero when the feature does not intersect.
func (c *Clipper) ClippedLength(g geom.T) (float64, error) {
	clipped, err := c.intersection(g)
	if err != nil {
		return 0, err
	}
	return clipped.Length(), nil
}

// ClippedArea returns the area in square meters of the part of g inside the
// hexagon. Zero when the feature does not intersect.
func (c *Clipper) ClippedArea(g geom.T) (float64, error) {
	clipped, err := c.intersection(g)
	if err != nil {
		return 0, err
	}
	return clipped.Area(), nil
}

// Clip returns the intersection of g with the hexagon as a go-geom value.
// The result is empty (not nil) when the feature lies outside the hexagon.
func (c *Clipper) Clip(g geom.T) (geom.T, error) {
	clipped, err := c.intersection(g)
	if err != nil {
		return nil, err
	}
	out, err := wkb.Unmarshal(clipped.AsBinary())
	if err != nil {
		return nil, eris.Wrap(err, "overlay: decode clipped geometry")
	}
	return out, nil
}

func (c *Clipper) intersection(g geom.T) (sf.Geometry, error) {
	feature, err := ToSimpleFeatures(g)
	if err != nil {
		return sf.Geometry{}, err
	}
	clipped, err := sf.Intersection(c.hex, feature)
	if err != nil {
		return sf.Geometry{}, eris.Wrap(err, "overlay: intersection")
	}
	return clipped, nil
}

// ToSimpleFeatures bridges a go-geom geometry into simplefeatures via WKB.
func ToSimpleFeatures(g geom.T) (sf.Geometry, error) {
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return sf.Geometry{}, eris.Wrap(err, "overlay: encode geometry")
	}
	out, err := sf.UnmarshalWKB(data)
	if err != nil {
		return sf.Geometry{}, eris.Wrap(err, "overlay: decode geometry")
	}
	return out, nil
}
