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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	goshp "github.com/jonas-p/go-shp"
	"gonum.org/v1/gonum/floats"
)

// ParcelConflict is the comparison of one parcel's realized contamination
// against the target for its land use.
type ParcelConflict struct {
	Index int
	Name  string
	Code  int

	// Cells is the number of contamination cells whose centers fall in the
	// parcel and hold data.
	Cells int

	// Max is the largest contamination value among those cells. It is 0
	// when Cells is 0.
	Max float64

	// Target is the target value for the parcel's land use.
	Target float64

	// Exceeded is true when Max is greater than Target.
	Exceeded bool
}

// ConflictReport lists the per-parcel conflicts for one contaminant.
type ConflictReport struct {
	Contaminant string
	Compartment string
	Parcels     []ParcelConflict
}

// Exceedances returns the number of parcels whose target is exceeded.
func (r *ConflictReport) Exceedances() int {
	n := 0
	for _, p := range r.Parcels {
		if p.Exceeded {
			n++
		}
	}
	return n
}

// indexedParcel is a parcel stored in an R-tree.
type indexedParcel struct {
	geom.Polygon
	i      int
	b      Boundary
	bounds *geom.Bounds
}

func (p *indexedParcel) Bounds() *geom.Bounds { return p.bounds }

// parcelIndex finds the parcel covering a point, giving precedence to the
// last parcel in layer order as Rasterize does.
type parcelIndex struct {
	tree *rtree.Rtree
}

func newParcelIndex(parcels []Parcel) (*parcelIndex, error) {
	idx := &parcelIndex{tree: rtree.NewTree(25, 50)}
	for i, p := range parcels {
		if err := p.Boundary.Check(); err != nil {
			err.(*DegeneratePolygonError).Index = i
			return nil, err
		}
		idx.tree.Insert(&indexedParcel{
			Polygon: geom.Polygon{[]geom.Point(p.Boundary)},
			i:       i,
			b:       p.Boundary,
			bounds:  p.Boundary.Bounds(),
		})
	}
	return idx, nil
}

// find returns the index of the parcel covering pt, or -1.
func (idx *parcelIndex) find(pt geom.Point) int {
	o := -1
	for _, s := range idx.tree.SearchIntersect(pt.Bounds()) {
		p := s.(*indexedParcel)
		if p.i > o && p.b.Contains(pt) {
			o = p.i
		}
	}
	return o
}

// parcelTargets returns the target value of contaminant for each parcel.
func parcelTargets(parcels []Parcel, t *TargetTable, contaminant string, legend Legend) ([]float64, error) {
	o := make([]float64, len(parcels))
	for i, p := range parcels {
		lu, ok := legend.Index(p.Code)
		if !ok {
			return nil, fmt.Errorf("conflict: parcel %d code %d is not a known land use", i, p.Code)
		}
		v, err := t.Lookup(contaminant, lu)
		if err != nil {
			return nil, err
		}
		o[i] = v
	}
	return o, nil
}

// FlagConflicts compares the contamination raster against the target value
// of contaminant for the land use of every parcel. Each contamination cell
// center is attributed to the last parcel in layer order that contains it;
// NoData cells are ignored. The contamination raster does not need to share
// a grid with the land use layer.
func FlagConflicts(parcels []Parcel, contamination *Raster, t *TargetTable, contaminant string, legend Legend) (*ConflictReport, error) {
	if len(parcels) == 0 {
		return nil, ErrEmptyLayer
	}
	row, err := t.Row(contaminant)
	if err != nil {
		return nil, err
	}
	targets, err := parcelTargets(parcels, t, contaminant, legend)
	if err != nil {
		return nil, err
	}
	idx, err := newParcelIndex(parcels)
	if err != nil {
		return nil, err
	}

	values := make([][]float64, len(parcels))
	for r := 0; r < contamination.Rows(); r++ {
		for c := 0; c < contamination.Cols(); c++ {
			v := contamination.Get(r, c)
			if v == contamination.NoData {
				continue
			}
			x, y := contamination.CellCenter(r, c)
			if i := idx.find(geom.Point{X: x, Y: y}); i >= 0 {
				values[i] = append(values[i], v)
			}
		}
	}

	report := &ConflictReport{
		Contaminant: row.Contaminant,
		Compartment: row.Compartment,
		Parcels:     make([]ParcelConflict, len(parcels)),
	}
	for i, p := range parcels {
		pc := ParcelConflict{
			Index:  i,
			Name:   p.Name,
			Code:   p.Code,
			Cells:  len(values[i]),
			Target: targets[i],
		}
		if pc.Cells > 0 {
			pc.Max = floats.Max(values[i])
			pc.Exceeded = pc.Max > pc.Target
		}
		report.Parcels[i] = pc
	}
	return report, nil
}

// ConflictRaster compares a categorical land use raster with a
// contamination raster on the same grid. Cells where the contamination
// exceeds the target for the cell's land use are 1, other cells are 0, and
// cells where either input is NoData are NoData.
func ConflictRaster(landUse, contamination *Raster, t *TargetTable, contaminant string, legend Legend) (*Raster, error) {
	if err := sameShape(contamination.Rows(), contamination.Cols(), landUse.Rows(), landUse.Cols()); err != nil {
		return nil, err
	}
	row, err := t.Row(contaminant)
	if err != nil {
		return nil, err
	}
	o := NewRaster(landUse.Extent, landUse.Res, landUse.Rows(), landUse.Cols(), 0, NoData)
	for i, code := range landUse.Data.Elements {
		v := contamination.Data.Elements[i]
		if code == landUse.NoData || v == contamination.NoData {
			o.Data.Elements[i] = NoData
			continue
		}
		lu, ok := legend.Index(int(code))
		if !ok {
			return nil, fmt.Errorf("conflict: land use raster holds unknown code %g", code)
		}
		if lu >= len(row.Targets) {
			return nil, &IndexOutOfRangeError{Index: lu, Len: len(row.Targets)}
		}
		if v > row.Targets[lu] {
			o.Data.Elements[i] = 1
		}
	}
	return o, nil
}

// conflictFieldName returns the attribute name used for a contaminant's
// conflict flag. DBF field names are limited to 10 characters.
func conflictFieldName(contaminant string) string {
	n := strings.ToUpper(strings.Replace(contaminant, " ", "_", -1))
	if len(n) > 10 {
		n = n[:10]
	}
	return n
}

// WriteConflictShapefile writes the parcels to a new polygon shapefile at
// path with NAME and CODE attributes and one attribute per report holding
// 1 for parcels whose target is exceeded and 0 otherwise. If projection is
// not empty it is written to the accompanying .prj file.
func WriteConflictShapefile(path string, parcels []Parcel, projection string, reports ...*ConflictReport) error {
	fields := []goshp.Field{
		goshp.StringField("NAME", 50),
		goshp.NumberField("CODE", 10),
	}
	seen := map[string]string{"NAME": "", "CODE": ""}
	for _, r := range reports {
		if len(r.Parcels) != len(parcels) {
			return fmt.Errorf("conflict: report for %s covers %d parcels but the layer has %d",
				r.Contaminant, len(r.Parcels), len(parcels))
		}
		name := conflictFieldName(r.Contaminant)
		if other, ok := seen[name]; ok {
			return fmt.Errorf("conflict: contaminants %q and %q map to the same field name %s",
				other, r.Contaminant, name)
		}
		seen[name] = r.Contaminant
		fields = append(fields, goshp.NumberField(name, 1))
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".shp", ".prj", ".dbf", ".shx"} {
		os.Remove(base + ext)
	}
	e, err := shp.NewEncoderFromFields(base+".shp", goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("conflict: creating conflict shapefile: %v", err)
	}
	for i, p := range parcels {
		vals := []interface{}{p.Name, p.Code}
		for _, r := range reports {
			flag := 0
			if r.Parcels[i].Exceeded {
				flag = 1
			}
			vals = append(vals, flag)
		}
		if err := e.EncodeFields(geom.Polygon{[]geom.Point(p.Boundary)}, vals...); err != nil {
			e.Close()
			return fmt.Errorf("conflict: writing parcel %d: %v", i, err)
		}
	}
	e.Close()
	if projection == "" {
		return nil
	}
	return WriteProjection(base+".prj", projection)
}
