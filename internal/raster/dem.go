// Package raster reads the digital elevation model and reduces the cells
// under an analysis hexagon to summary statistics.
package raster

import (
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
)

var registerOnce sync.Once

// Dataset is the raster contract the clip statistics run against: a single
// north-up elevation band with a geotransform and an optional no-data
// sentinel.
type Dataset interface {
	// Size returns the raster width and height in cells.
	Size() (width, height int)
	// GeoTransform returns the GDAL-style affine transform from cell to
	// projected coordinates.
	GeoTransform() [6]float64
	// NoData returns the no-data sentinel, if the raster defines one.
	NoData() (float64, bool)
	// Read returns the elevation values of a window, row-major.
	Read(col, row, width, height int) ([]float64, error)
	Close() error
}

// DEM is a GDAL-backed elevation raster. Each request opens its own handle
// and closes it when extraction completes.
type DEM struct {
	ds      *godal.Dataset
	width   int
	height  int
	gt      [6]float64
	nodata  float64
	hasND   bool
	projWKT string
}

// Open opens an elevation raster. Band 1 is the elevation band.
func Open(path string) (*DEM, error) {
	registerOnce.Do(func() { godal.RegisterAll() })

	ds, err := godal.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}

	structure := ds.Structure()
	if structure.NBands == 0 {
		_ = ds.Close()
		return nil, eris.Errorf("raster: %s has no bands", path)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		_ = ds.Close()
		return nil, eris.Wrapf(err, "raster: read geotransform of %s", path)
	}

	d := &DEM{
		ds:      ds,
		width:   structure.SizeX,
		height:  structure.SizeY,
		gt:      gt,
		projWKT: ds.Projection(),
	}
	d.nodata, d.hasND = ds.Bands()[0].NoData()
	return d, nil
}

// ProjectionWKT returns the raster's CRS as WKT. Every projected coordinate
// in the analysis lives in this CRS.
func (d *DEM) ProjectionWKT() string {
	return d.projWKT
}

func (d *DEM) Size() (int, int) {
	return d.width, d.height
}

func (d *DEM) GeoTransform() [6]float64 {
	return d.gt
}

func (d *DEM) NoData() (float64, bool) {
	return d.nodata, d.hasND
}

func (d *DEM) Read(col, row, width, height int) ([]float64, error) {
	buf := make([]float64, width*height)
	if err := d.ds.Bands()[0].Read(col, row, buf, width, height); err != nil {
		return nil, eris.Wrap(err, "raster: read window")
	}
	return buf, nil
}

func (d *DEM) Close() error {
	if err := d.ds.Close(); err != nil {
		return eris.Wrap(err, "raster: close dataset")
	}
	return nil
}
