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
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// NoData is the value of raster cells not covered by any parcel. It lies
// outside the range of valid category codes.
const NoData = -9999.

// Raster is a single-band grid of values. Row 0 is the northern edge of the
// grid and column 0 the western edge. Extent.XMin and Extent.YMin anchor the
// lower-left corner; the grid may extend past XMax and YMax by less than one
// cell.
type Raster struct {
	Extent Extent
	Res    Resolution
	NoData float64

	// Data holds the cell values with shape [rows, cols].
	Data *sparse.DenseArray
}

// NewRaster returns a raster of the given shape with every cell set to
// fill.
func NewRaster(e Extent, res Resolution, rows, cols int, fill, noData float64) *Raster {
	r := &Raster{
		Extent: e,
		Res:    res,
		NoData: noData,
		Data:   sparse.ZerosDense(rows, cols),
	}
	if fill != 0 {
		for i := range r.Data.Elements {
			r.Data.Elements[i] = fill
		}
	}
	return r
}

// newLatticeRaster returns a raster matching the shape of l with every cell
// set to NoData.
func newLatticeRaster(l *Lattice) *Raster {
	return NewRaster(l.Extent, l.Res, l.Rows, l.Cols, NoData, NoData)
}

// Rows returns the number of rows in r.
func (r *Raster) Rows() int { return r.Data.Shape[0] }

// Cols returns the number of columns in r.
func (r *Raster) Cols() int { return r.Data.Shape[1] }

// Get returns the value at row, col.
func (r *Raster) Get(row, col int) float64 {
	return r.Data.Get(row, col)
}

// Set sets the value at row, col. Unlike sparse.DenseArray.Set, zero
// values are stored.
func (r *Raster) Set(v float64, row, col int) {
	r.Data.Elements[r.Data.Index1d(row, col)] = v
}

// IsNoData returns whether the cell at row, col holds the NoData value.
func (r *Raster) IsNoData(row, col int) bool {
	return r.Get(row, col) == r.NoData
}

// Copy returns a deep copy of r.
func (r *Raster) Copy() *Raster {
	o := *r
	o.Data = r.Data.Copy()
	o.Data.Shape = []int{r.Rows(), r.Cols()}
	return &o
}

// Equal returns whether r and o have the same shape, georeference, NoData
// value and cell values.
func (r *Raster) Equal(o *Raster) bool {
	if r.Extent != o.Extent || r.Res != o.Res || r.NoData != o.NoData ||
		r.Rows() != o.Rows() || r.Cols() != o.Cols() {
		return false
	}
	return floats.Equal(r.Data.Elements, o.Data.Elements)
}

// Counts returns the number of cells holding each distinct value.
func (r *Raster) Counts() map[float64]int {
	o := make(map[float64]int)
	for _, v := range r.Data.Elements {
		o[v]++
	}
	return o
}

// Valid returns the values of all cells that do not hold NoData.
func (r *Raster) Valid() []float64 {
	var o []float64
	for _, v := range r.Data.Elements {
		if v != r.NoData {
			o = append(o, v)
		}
	}
	return o
}

// Max returns the largest non-NoData value in r and false if every cell is
// NoData.
func (r *Raster) Max() (float64, bool) {
	v := r.Valid()
	if len(v) == 0 {
		return r.NoData, false
	}
	return floats.Max(v), true
}

// CellCenter returns the coordinates of the center of the cell at row, col.
func (r *Raster) CellCenter(row, col int) (x, y float64) {
	x = r.Extent.XMin + (float64(col)+0.5)*r.Res.Dx
	y = r.Extent.YMin + (float64(r.Rows()-1-row)+0.5)*r.Res.Dy
	return
}

// sameShape returns a *DimensionMismatchError if a grid of shape rows x cols
// does not have the shape wantRows x wantCols.
func sameShape(rows, cols, wantRows, wantCols int) error {
	if rows != wantRows || cols != wantCols {
		return &DimensionMismatchError{Rows: rows, Cols: cols, WantRows: wantRows, WantCols: wantCols}
	}
	return nil
}
