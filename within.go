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

// Boundary is the ordered vertex ring of a polygon. The ring may or may not
// repeat its first vertex at the end; the closing edge is implied either way.
type Boundary []geom.Point

// Bounds returns the bounding box of b.
func (b Boundary) Bounds() *geom.Bounds {
	bb := geom.NewBounds()
	for _, p := range b {
		bb.Extend(geom.NewBoundsPoint(p))
	}
	return bb
}

// Area returns the unsigned area enclosed by b.
func (b Boundary) Area() float64 {
	return geom.Polygon{[]geom.Point(b)}.Area()
}

// Copy returns a copy of b that shares no memory with it.
func (b Boundary) Copy() Boundary {
	o := make(Boundary, len(b))
	copy(o, b)
	return o
}

// distinctVertices returns the number of vertices in b that differ from
// the vertex before them, not counting a closing vertex equal to the first.
func (b Boundary) distinctVertices() int {
	if len(b) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(b); i++ {
		if !b[i].Equals(b[i-1]) {
			n++
		}
	}
	if n > 1 && b[len(b)-1].Equals(b[0]) {
		n--
	}
	return n
}

// Check returns a *DegeneratePolygonError if b has fewer than three
// distinct vertices or encloses no area.
func (b Boundary) Check() error {
	n := b.distinctVertices()
	if n < 3 {
		return &DegeneratePolygonError{Index: -1, Vertices: n}
	}
	if a := b.Area(); !(a > 0) || math.IsInf(a, 0) {
		return &DegeneratePolygonError{Index: -1, Vertices: n, Area: a}
	}
	return nil
}

// Contains reports whether p is inside b, with no assumption of convexity.
// Points lying exactly on an edge or vertex of b count as inside.
func (b Boundary) Contains(p geom.Point) bool {
	return p.Within(geom.Polygon{[]geom.Point(b)}) != geom.Outside
}

// PointsInsidePolygon returns, for each point in pts, whether it is inside
// b, in the same order as pts. Points on the boundary are inside.
// It returns a *DegeneratePolygonError if b is degenerate.
func PointsInsidePolygon(pts []geom.Point, b Boundary) ([]bool, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	bb := b.Bounds()
	o := make([]bool, len(pts))
	for i, p := range pts {
		if p.X < bb.Min.X || p.X > bb.Max.X || p.Y < bb.Min.Y || p.Y > bb.Max.Y {
			continue
		}
		o[i] = b.Contains(p)
	}
	return o, nil
}

// inside returns the indices of the lattice points inside b, in increasing
// order. Only the lattice window under b's bounding box is examined.
func (l *Lattice) inside(b Boundary) ([]int, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}
	r0, r1, c0, c1, ok := l.window(b.Bounds())
	if !ok {
		return nil, nil
	}
	var o []int
	for j := r0; j <= r1; j++ {
		for i := c0; i <= c1; i++ {
			k := j*l.Cols + i
			if b.Contains(l.Points[k]) {
				o = append(o, k)
			}
		}
	}
	return o, nil
}
