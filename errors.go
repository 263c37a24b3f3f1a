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
	"errors"
	"fmt"
)

// ErrEmptyLayer is returned when a rasterization is requested for a layer
// without any parcels.
var ErrEmptyLayer = errors.New("conflict: land use layer contains no polygons")

// InvalidResolutionError is returned when a cell width or height is not
// strictly positive.
type InvalidResolutionError struct {
	Dx, Dy float64
}

func (e *InvalidResolutionError) Error() string {
	return fmt.Sprintf("conflict: invalid grid resolution %g x %g; both must be > 0", e.Dx, e.Dy)
}

// InvalidExtentError is returned when an extent has zero or negative width
// or height.
type InvalidExtentError struct {
	Extent Extent
}

func (e *InvalidExtentError) Error() string {
	return fmt.Sprintf("conflict: invalid extent x=[%g, %g] y=[%g, %g]",
		e.Extent.XMin, e.Extent.XMax, e.Extent.YMin, e.Extent.YMax)
}

// DegeneratePolygonError is returned for a boundary with fewer than three
// distinct vertices or zero area. Index is the position of the offending
// parcel in its layer, or -1 when the boundary was not part of a layer.
type DegeneratePolygonError struct {
	Index    int
	Vertices int
	Area     float64
}

func (e *DegeneratePolygonError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("conflict: degenerate polygon boundary (%d distinct vertices, area %g)",
			e.Vertices, e.Area)
	}
	return fmt.Sprintf("conflict: degenerate polygon boundary for parcel %d (%d distinct vertices, area %g)",
		e.Index, e.Vertices, e.Area)
}

// ReservedCodeError is returned when a parcel's category code collides with
// the NoData sentinel.
type ReservedCodeError struct {
	Index, Code int
}

func (e *ReservedCodeError) Error() string {
	return fmt.Sprintf("conflict: parcel %d has category code %d, which is reserved for NoData",
		e.Index, e.Code)
}

// DimensionMismatchError is returned when two grids that must line up
// cell by cell have different shapes.
type DimensionMismatchError struct {
	Rows, Cols         int
	WantRows, WantCols int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("conflict: grid is %dx%d but %dx%d is required",
		e.Rows, e.Cols, e.WantRows, e.WantCols)
}

// MalformedTargetRowError is returned when a target table row has the
// wrong number of fields or a field that cannot be parsed.
type MalformedTargetRowError struct {
	Row        int
	Fields     int
	WantFields int
	Err        error
}

func (e *MalformedTargetRowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conflict: target table row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("conflict: target table row %d has %d fields but %d are required",
		e.Row, e.Fields, e.WantFields)
}

func (e *MalformedTargetRowError) Unwrap() error { return e.Err }

// UnknownContaminantError is returned when a target lookup names a
// contaminant that is not in the table.
type UnknownContaminantError struct {
	Name string
}

func (e *UnknownContaminantError) Error() string {
	return fmt.Sprintf("conflict: unknown contaminant %q", e.Name)
}

// IndexOutOfRangeError is returned when a land use index falls outside
// the range covered by a target table.
type IndexOutOfRangeError struct {
	Index, Len int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("conflict: land use index %d out of range [0, %d)", e.Index, e.Len)
}
