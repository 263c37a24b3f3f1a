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
	"testing"
)

func TestBuildMask(t *testing.T) {
	l := testLattice(t)
	aoi := Boundary{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}
	m, err := BuildMask(l, aoi)
	if err != nil {
		t.Fatal(err)
	}
	// Centers with x + y <= 4, including those on the diagonal edge.
	if n := m.Count(); n != 10 {
		t.Errorf("count: have %d, want 10", n)
	}
	if !m.At(3, 0) {
		t.Error("south-west cell should be inside")
	}
	if m.At(0, 3) {
		t.Error("north-east cell should be outside")
	}
	if !m.At(1, 1) {
		t.Error("cell centered on the diagonal edge should be inside")
	}

	r, err := m.Raster(l)
	if err != nil {
		t.Fatal(err)
	}
	checkCounts(t, r, map[float64]int{1: 10, 0: 6})
	if r.Get(3, 0) != 1 || r.Get(0, 3) != 0 {
		t.Error("mask raster orientation is wrong")
	}
}

func TestBuildMaskDegenerate(t *testing.T) {
	_, err := BuildMask(testLattice(t), Boundary{{X: 0, Y: 0}, {X: 4, Y: 4}})
	var de *DegeneratePolygonError
	if !errors.As(err, &de) {
		t.Errorf("have error %v, want DegeneratePolygonError", err)
	}
}

func TestApplyMask(t *testing.T) {
	l := testLattice(t)
	r, err := Rasterize([]Parcel{{Code: 1, Boundary: rect(0, 0, 4, 4)}}, l)
	if err != nil {
		t.Fatal(err)
	}
	before := r.Copy()
	m, err := BuildMask(l, Boundary{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("nodata", func(t *testing.T) {
		o, err := ApplyMask(r, m)
		if err != nil {
			t.Fatal(err)
		}
		checkCounts(t, o, map[float64]int{1: 10, NoData: 6})
		if !r.Equal(before) {
			t.Error("input raster was modified")
		}
	})
	t.Run("fill", func(t *testing.T) {
		o, err := ApplyMaskFill(r, m, 0)
		if err != nil {
			t.Fatal(err)
		}
		checkCounts(t, o, map[float64]int{1: 10, 0: 6})
		if !r.Equal(before) {
			t.Error("input raster was modified")
		}
	})
	t.Run("all inside", func(t *testing.T) {
		all, err := BuildMask(l, rect(-1, -1, 5, 5))
		if err != nil {
			t.Fatal(err)
		}
		o, err := ApplyMask(r, all)
		if err != nil {
			t.Fatal(err)
		}
		if !o.Equal(r) {
			t.Error("masking with a full mask should not change values")
		}
		if o == r || &o.Data.Elements[0] == &r.Data.Elements[0] {
			t.Error("result should not share memory with the input")
		}
	})
	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := ApplyMask(r, NewMask(3, 3, true))
		var de *DimensionMismatchError
		if !errors.As(err, &de) {
			t.Fatalf("have error %v, want DimensionMismatchError", err)
		}
		if de.Rows != 4 || de.WantRows != 3 {
			t.Errorf("error fields: %+v", de)
		}
	})
}
