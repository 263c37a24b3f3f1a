/*
Copyright © 2019 the Conflict authors.
This file is part of Conflict.

Conflict is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Conflict is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Conflict.  If not, see <http://www.gnu.org/licenses/>.
*/

package conflict

import (
	"runtime"
	"sync"
)

// Parcel is one land use polygon of a layer.
type Parcel struct {
	// Name is the land use name attribute.
	Name string

	// Code is the land use category code written into rasters.
	Code int

	// Boundary is the polygon's outer ring, owned by the parcel.
	Boundary Boundary
}

// Rasterize creates a categorical raster on lattice l where each cell
// whose center is inside a parcel boundary holds that parcel's code and
// every other cell holds NoData.
//
// Where parcels overlap, the parcel that comes last in parcels wins: the
// order of the input layer sets precedence. Parcels are classified
// concurrently but applied to the raster strictly in input order.
//
// Rasterize returns ErrEmptyLayer if parcels is empty and a
// *DegeneratePolygonError (with Index set) for the first parcel whose
// boundary is degenerate. No partial raster is returned on error.
func Rasterize(parcels []Parcel, l *Lattice) (*Raster, error) {
	if len(parcels) == 0 {
		return nil, ErrEmptyLayer
	}
	for i, p := range parcels {
		if float64(p.Code) == NoData {
			return nil, &ReservedCodeError{Index: i, Code: p.Code}
		}
	}

	covered, err := classify(parcels, l)
	if err != nil {
		return nil, err
	}

	r := newLatticeRaster(l)
	for i, p := range parcels {
		v := float64(p.Code)
		for _, k := range covered[i] {
			row, col := l.RasterIndex(k)
			r.Set(v, row, col)
		}
	}
	return r, nil
}

// classify returns, for each parcel, the indices of the lattice points
// inside it. Work is spread across GOMAXPROCS goroutines; l is only read.
func classify(parcels []Parcel, l *Lattice) ([][]int, error) {
	covered := make([][]int, len(parcels))
	errs := make([]error, len(parcels))

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < len(parcels); ii += nprocs {
				covered[ii], errs[ii] = l.inside(parcels[ii].Boundary)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			if d, ok := err.(*DegeneratePolygonError); ok {
				d.Index = i
			}
			return nil, err
		}
	}
	return covered, nil
}
