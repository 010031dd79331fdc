// Package catalog implements the catalog-generation core: given a value
// image, an object label image, and (optionally) a per-object clump label
// image, it measures the requested set of output columns per object and
// per clump (area, position, shape, surface brightness, signal-to-noise,
// sigma-clipped statistics, and more) and returns them as a Catalog.
package catalog

import (
	"fmt"

	"github.com/cwbudde/gnuastro-catalog/internal/catalogimage"
)

// RunInputs bundles everything a single Run call needs.
type RunInputs struct {
	Values  *catalogimage.Image
	Objects *catalogimage.LabelImage
	Clumps  *catalogimage.LabelImage // nil: no clump measurements

	Sky      *catalogimage.Image
	SkyConst float64
	HasSky   bool

	Std      *catalogimage.Image
	StdConst float64
	HasStd   bool

	WCS catalogimage.WCS // nil: WCS-dependent columns will error if requested

	Columns []ColumnCode
	Params  Params

	Limiter UpperLimiter // nil: use the no-op limiter; only consulted when Params.UpperLimitEnabled
}

// Catalog is the result of a completed Run: the requested object columns,
// and (if a clump image was supplied and any clump column requested) the
// clump columns, permuted into host-object order.
type Catalog struct {
	NumObjects int
	NumClumps  int
	ObjColumns []*Column
	ClumpCols  []*Column
}

// Column looks up one of the catalog's object columns by code, or nil if
// it wasn't requested/allocated.
func (c *Catalog) Column(code ColumnCode) *Column {
	for _, col := range c.ObjColumns {
		if col.Meta.Code == code {
			return col
		}
	}
	return nil
}

// ClumpColumn is Column's clump-table analogue.
func (c *Catalog) ClumpColumn(code ColumnCode) *Column {
	for _, col := range c.ClumpCols {
		if col.Meta.Code == code {
			return col
		}
	}
	return nil
}

// Run computes the requested catalog columns for every labeled object (and
// clump, if supplied) in in.Objects. It validates shapes, builds the
// column registry, runs the tiled pass engine across a fixed worker pool,
// and returns the finished Catalog plus any non-fatal warnings collected
// along the way.
func Run(in RunInputs) (*Catalog, []Warning, error) {
	if err := catalogimage.ValidateShape(in.Values.Dims, in.Objects.Dims); err != nil {
		return nil, nil, fmt.Errorf("catalog: values/objects shape mismatch: %w", err)
	}
	if in.Clumps != nil {
		if err := catalogimage.ValidateShape(in.Values.Dims, in.Clumps.Dims); err != nil {
			return nil, nil, fmt.Errorf("catalog: values/clumps shape mismatch: %w", err)
		}
	}

	tiles := ComputeTiles(in.Objects)
	numObjects := len(tiles)

	numClumps := 0
	if in.Clumps != nil {
		numClumps = totalClumpCount(in.Objects, in.Clumps, tiles)
	}

	reg := NewRegistry()
	alloc, err := reg.DefineAndAllocate(in.Columns, len(in.Objects.Dims), in.WCS, numObjects, numClumps, in.Clumps != nil, in.Params)
	if err != nil {
		return nil, nil, err
	}

	engineInputs := &Inputs{
		Values:   in.Values,
		Objects:  in.Objects,
		Clumps:   in.Clumps,
		Sky:      in.Sky,
		SkyConst: in.SkyConst,
		HasSky:   in.HasSky,
		Std:      in.Std,
		StdConst: in.StdConst,
		HasStd:   in.HasStd,
		Tiles:    tiles,
	}

	driver := NewDriver(engineInputs, alloc, in.Params, in.WCS, in.Limiter)
	warnings, err := driver.Run()
	if err != nil {
		return nil, nil, err
	}
	for _, w := range alloc.Warnings {
		warnings = append(warnings, Warning{Message: w})
	}

	return &Catalog{
		NumObjects: numObjects,
		NumClumps:  numClumps,
		ObjColumns: alloc.ObjCols,
		ClumpCols:  alloc.ClumpCols,
	}, warnings, nil
}

// totalClumpCount sums, over every object tile, the number of distinct
// clump labels present, giving the total clump-row count the registry
// must allocate.
func totalClumpCount(objects *catalogimage.LabelImage, clumps *catalogimage.LabelImage, tiles []*catalogimage.Tile) int {
	in := &Inputs{Objects: objects, Clumps: clumps}
	total := 0
	for i, tile := range tiles {
		total += countClumps(in, tile, uint32(i+1))
	}
	return total
}
