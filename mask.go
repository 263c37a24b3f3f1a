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

// Mask marks which cells of a grid lie inside an area of interest. It uses
// the raster row convention: row 0 is the northern edge.
type Mask struct {
	Rows, Cols int

	// In holds one value per cell in row-major order.
	In []bool
}

// NewMask returns a rows x cols mask with every cell set to in.
func NewMask(rows, cols int, in bool) *Mask {
	m := &Mask{Rows: rows, Cols: cols, In: make([]bool, rows*cols)}
	if in {
		for i := range m.In {
			m.In[i] = true
		}
	}
	return m
}

// BuildMask returns a mask that is true for the cells of l whose centers are
// inside or on the edge of aoi.
func BuildMask(l *Lattice, aoi Boundary) (*Mask, error) {
	in, err := PointsInsidePolygon(l.Points, aoi)
	if err != nil {
		return nil, err
	}
	m := NewMask(l.Rows, l.Cols, false)
	for k, v := range in {
		row, col := l.RasterIndex(k)
		m.In[row*m.Cols+col] = v
	}
	return m, nil
}

// At returns whether the cell at row, col is inside the mask.
func (m *Mask) At(row, col int) bool {
	return m.In[row*m.Cols+col]
}

// Count returns the number of cells inside the mask.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.In {
		if v {
			n++
		}
	}
	return n
}

// Raster converts m to a raster on lattice l with 1 for cells inside the
// mask and 0 elsewhere.
func (m *Mask) Raster(l *Lattice) (*Raster, error) {
	if err := sameShape(m.Rows, m.Cols, l.Rows, l.Cols); err != nil {
		return nil, err
	}
	r := NewRaster(l.Extent, l.Res, l.Rows, l.Cols, 0, NoData)
	for i, v := range m.In {
		if v {
			r.Data.Elements[i] = 1
		}
	}
	return r, nil
}

// ApplyMask returns a copy of r in which the cells outside m are set to
// r.NoData. r is not modified.
func ApplyMask(r *Raster, m *Mask) (*Raster, error) {
	return ApplyMaskFill(r, m, r.NoData)
}

// ApplyMaskFill returns a copy of r in which the cells outside m are set to
// fill. r is not modified.
func ApplyMaskFill(r *Raster, m *Mask, fill float64) (*Raster, error) {
	if err := sameShape(r.Rows(), r.Cols(), m.Rows, m.Cols); err != nil {
		return nil, err
	}
	o := r.Copy()
	for i, v := range m.In {
		if !v {
			o.Data.Elements[i] = fill
		}
	}
	return o, nil
}
