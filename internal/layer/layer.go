// Package layer loads the vector datasets (shapefiles) the overlay metrics
// run against. All layers load once at startup into immutable, read-only
// values; requests never touch the filesystem for vector data.
package layer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Shapefile names under the vector data directory.
const (
	RoadsFile      = "roads.shp"
	BuildingsFile  = "buildings.shp"
	LandUseFile    = "landuse.shp"
	WaterZonesFile = "water_zones.shp"
	WaterWaysFile  = "water_ways.shp"
)

// geographicCRS is the source CRS assumed for shapefiles without a .prj
// sidecar, the OpenStreetMap extract default.
const geographicCRS = "EPSG:4326"

// classFieldCandidates is the ordered list of attribute columns that may hold
// a feature classification. The first one present in the schema wins; the
// lookup happens once at load time, not per request.
var classFieldCandidates = []string{"fclass", "type", "landuse", "TYPE", "LANDUSE", "class", "CLASS"}

// Feature is one vector record: a geometry in the analysis CRS plus its
// attribute values keyed by column name.
type Feature struct {
	Geom  geom.T
	Attrs map[string]string
}

// Layer is an immutable, fully loaded vector dataset. Geometries are already
// reprojected into the raster's CRS, so overlay math never reprojects again.
type Layer struct {
	Name     string
	Features []Feature

	// ClassField is the resolved classification column, or "" when the
	// schema has none of the candidate columns.
	ClassField string
}

// Projector reprojects flat coordinates from a layer's source CRS into the
// analysis CRS in place.
type Projector interface {
	ProjectFlatCoords(flat []float64, stride int) error
}

// ProjectorFor builds a Projector from the given source CRS (a WKT string or
// an authority code such as "EPSG:4326") into the analysis CRS.
type ProjectorFor func(sourceCRS string) (Projector, error)

// Load reads one shapefile into a Layer. The sidecar .prj determines the
// source CRS; an absent sidecar means geographic coordinates. Unless the
// sidecar already matches the raster's projection WKT, every geometry is
// reprojected through a projector built by projFor.
func Load(shpPath, name, targetWKT string, projFor ProjectorFor) (*Layer, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	src, reproject, err := sourceCRS(shpPath, targetWKT)
	if err != nil {
		return nil, err
	}

	var proj Projector
	if reproject {
		if projFor == nil {
			return nil, eris.Errorf("layer: %s requires reprojection but no projector is configured", name)
		}
		proj, err = projFor(src)
		if err != nil {
			return nil, eris.Wrapf(err, "layer: build projector for %s", name)
		}
	}

	// Field names, trimmed of DBF NUL padding.
	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var features []Feature
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		g := geomFromShape(shape)
		if g == nil {
			skipped++
			continue
		}

		if proj != nil {
			if err := proj.ProjectFlatCoords(g.FlatCoords(), g.Stride()); err != nil {
				skipped++
				continue
			}
		}

		attrs := make(map[string]string, len(names))
		for i, n := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			if val != "" {
				attrs[n] = val
			}
		}

		features = append(features, Feature{Geom: g, Attrs: attrs})
	}

	if skipped > 0 {
		zap.L().Debug("layer: skipped shapefile records",
			zap.String("layer", name),
			zap.Int("skipped", skipped),
		)
	}

	return &Layer{
		Name:       name,
		Features:   features,
		ClassField: resolveClassField(names),
	}, nil
}

// resolveClassField returns the first candidate classification column present
// in the schema.
func resolveClassField(names []string) string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	for _, c := range classFieldCandidates {
		if present[c] {
			return c
		}
	}
	return ""
}

// sourceCRS inspects the .prj sidecar next to the shapefile and reports the
// layer's source CRS and whether its geometries need reprojection into the
// target. A missing sidecar is treated as geographic coordinates.
func sourceCRS(shpPath, targetWKT string) (string, bool, error) {
	prjPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		if os.IsNotExist(err) {
			return geographicCRS, true, nil
		}
		return "", false, eris.Wrapf(err, "layer: read %s", prjPath)
	}

	wkt := strings.TrimSpace(string(data))
	if wkt == strings.TrimSpace(targetWKT) {
		return wkt, false, nil
	}
	return wkt, true, nil
}

// Set holds the five vector layers the analysis uses. Any of them may be nil:
// a layer that failed to load degrades its metric, never the whole analysis.
type Set struct {
	Roads      *Layer
	Buildings  *Layer
	LandUse    *Layer
	WaterZones *Layer
	WaterWays  *Layer
}

// LoadSet loads every vector layer from the given directory. Load failures
// are logged and leave the layer nil.
func LoadSet(vectorDir, targetWKT string, projFor ProjectorFor) *Set {
	log := zap.L().With(zap.String("component", "layer"))

	load := func(file, name string) *Layer {
		l, err := Load(filepath.Join(vectorDir, file), name, targetWKT, projFor)
		if err != nil {
			log.Warn("vector layer unavailable", zap.String("layer", name), zap.Error(err))
			return nil
		}
		log.Info("vector layer loaded",
			zap.String("layer", name),
			zap.Int("features", len(l.Features)),
			zap.String("class_field", l.ClassField),
		)
		return l
	}

	return &Set{
		Roads:      load(RoadsFile, "roads"),
		Buildings:  load(BuildingsFile, "buildings"),
		LandUse:    load(LandUseFile, "landuse"),
		WaterZones: load(WaterZonesFile, "water_zones"),
		WaterWays:  load(WaterWaysFile, "water_ways"),
	}
}
