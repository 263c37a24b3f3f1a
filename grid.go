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
	"math"

	"github.com/ctessum/geom"
)

// Extent is the rectangular area covered by a layer or raster, in
// projected coordinates.
type Extent struct {
	XMin, XMax, YMin, YMax float64
}

// Valid returns whether e has positive width and height.
func (e Extent) Valid() bool {
	return e.XMin < e.XMax && e.YMin < e.YMax
}

// Bounds returns e as a geometry bounding box.
func (e Extent) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: e.XMin, Y: e.YMin},
		Max: geom.Point{X: e.XMax, Y: e.YMax},
	}
}

// ExtentFromBounds converts a geometry bounding box into an Extent.
func ExtentFromBounds(b *geom.Bounds) Extent {
	return Extent{XMin: b.Min.X, XMax: b.Max.X, YMin: b.Min.Y, YMax: b.Max.Y}
}

// Resolution is the width (Dx) and height (Dy) of a raster cell.
type Resolution struct {
	Dx, Dy float64
}

// cellSnap absorbs floating point noise in extent/resolution ratios so that,
// for example, an extent 1.1 wide sampled every 0.1 gives 11 columns rather
// than 12.
const cellSnap = 1.e-9

// cellCount returns the number of cells of size d needed to cover span.
func cellCount(span, d float64) int {
	n := int(math.Ceil(span/d - cellSnap))
	if n < 1 {
		n = 1
	}
	return n
}

// Dims returns the number of raster rows and columns needed to cover e at
// resolution dx by dy: rows = ceil((YMax-YMin)/dy), cols = ceil((XMax-XMin)/dx).
func Dims(e Extent, dx, dy float64) (rows, cols int, err error) {
	if !(dx > 0) || !(dy > 0) {
		return 0, 0, &InvalidResolutionError{Dx: dx, Dy: dy}
	}
	if !e.Valid() {
		return 0, 0, &InvalidExtentError{Extent: e}
	}
	return cellCount(e.YMax-e.YMin, dy), cellCount(e.XMax-e.XMin, dx), nil
}

// Lattice holds the cell-center sample points of a raster grid.
//
// Points are stored in row-major order starting at the southern (YMin) edge:
// point k = row*Cols + col lies at
//
//	X = XMin + (col+0.5)*Dx
//	Y = YMin + (row+0.5)*Dy
//
// Rasters produced from a lattice have the opposite row convention (row 0 is
// the northern edge); RasterIndex performs that conversion and is the only
// place it happens.
type Lattice struct {
	Extent     Extent
	Res        Resolution
	Rows, Cols int
	Points     []geom.Point
}

// SamplePoints creates the lattice of cell centers covering e at
// resolution dx by dy. The first center is at
// (XMin + dx/2, YMin + dy/2) and centers advance by whole cells while the
// cell's lower-left corner is below XMax (YMax).
func SamplePoints(e Extent, dx, dy float64) (*Lattice, error) {
	rows, cols, err := Dims(e, dx, dy)
	if err != nil {
		return nil, err
	}
	l := &Lattice{
		Extent: e,
		Res:    Resolution{Dx: dx, Dy: dy},
		Rows:   rows,
		Cols:   cols,
		Points: make([]geom.Point, rows*cols),
	}
	for j := 0; j < rows; j++ {
		y := e.YMin + (float64(j)+0.5)*dy
		for i := 0; i < cols; i++ {
			l.Points[j*cols+i] = geom.Point{X: e.XMin + (float64(i)+0.5)*dx, Y: y}
		}
	}
	return l, nil
}

// Len returns the number of points in l.
func (l *Lattice) Len() int { return len(l.Points) }

// RasterIndex returns the raster row and column (row 0 = north) of
// lattice point k.
func (l *Lattice) RasterIndex(k int) (row, col int) {
	return l.Rows - 1 - k/l.Cols, k % l.Cols
}

// window returns the range of lattice rows [r0, r1] and columns [c0, c1]
// whose centers can fall inside b. The range is widened by up to one cell
// on each side; ok is false if b does not overlap the lattice.
func (l *Lattice) window(b *geom.Bounds) (r0, r1, c0, c1 int, ok bool) {
	cols, rows := float64(l.Cols), float64(l.Rows)
	c0 = int(clamp(math.Floor((b.Min.X-l.Extent.XMin)/l.Res.Dx-0.5), cols))
	c1 = int(clamp(math.Ceil((b.Max.X-l.Extent.XMin)/l.Res.Dx-0.5), cols))
	r0 = int(clamp(math.Floor((b.Min.Y-l.Extent.YMin)/l.Res.Dy-0.5), rows))
	r1 = int(clamp(math.Ceil((b.Max.Y-l.Extent.YMin)/l.Res.Dy-0.5), rows))
	if c1 < 0 || r1 < 0 || c0 >= l.Cols || r0 >= l.Rows {
		return 0, 0, 0, 0, false
	}
	if c0 < 0 {
		c0 = 0
	}
	if r0 < 0 {
		r0 = 0
	}
	if c1 >= l.Cols {
		c1 = l.Cols - 1
	}
	if r1 >= l.Rows {
		r1 = l.Rows - 1
	}
	return r0, r1, c0, c1, true
}

// clamp limits a cell offset to [-1, n] so that it converts to int
// without overflow.
func clamp(v, n float64) float64 {
	return math.Max(-1, math.Min(v, n))
}
