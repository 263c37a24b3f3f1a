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
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// LandUseLayer is a vector layer of land use parcels.
type LandUseLayer struct {
	Extent  Extent
	Parcels []Parcel
}

// ReadLandUseShapefile reads the land use parcels in the shapefile at path.
// nameField and codeField are the attribute columns holding the land use
// name and integer category code. Parcels are returned in file order, which
// sets rasterization precedence. A multi-part polygon contributes one parcel
// per part; polygons with holes are rejected.
func ReadLandUseShapefile(path, nameField, codeField string) (*LandUseLayer, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("conflict: opening land use shapefile: %v", err)
	}
	defer d.Close()

	box := d.BBox()
	layer := &LandUseLayer{
		Extent: Extent{XMin: box.MinX, XMax: box.MaxX, YMin: box.MinY, YMax: box.MaxY},
	}
	for row := 0; ; row++ {
		g, fields, more := d.DecodeRowFields(nameField, codeField)
		if !more {
			break
		}
		if g == nil {
			continue
		}
		code, err := parseCode(attribute(fields[codeField]))
		if err != nil {
			return nil, fmt.Errorf("conflict: land use shapefile row %d field %s: %v", row, codeField, err)
		}
		rings, err := outerRings(g)
		if err != nil {
			return nil, fmt.Errorf("conflict: land use shapefile row %d: %v", row, err)
		}
		for _, r := range rings {
			layer.Parcels = append(layer.Parcels, Parcel{
				Name:     attribute(fields[nameField]),
				Code:     code,
				Boundary: r,
			})
		}
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("conflict: reading land use shapefile: %v", err)
	}
	return layer, nil
}

// attribute strips the space and NUL padding of a DBF attribute value.
func attribute(s string) string {
	return strings.Trim(s, " \x00")
}

// parseCode parses an integer category code, accepting whole numbers
// written with a decimal point as DBF numeric fields often are.
func parseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("category code %s is not a whole number", s)
	}
	return int(f), nil
}

// outerRings copies the rings of a polygonal geometry into boundaries.
// It returns an error for non-polygonal geometry and for rings nested
// inside another ring of the same polygon.
func outerRings(g geom.Geom) ([]Boundary, error) {
	var polys []geom.Polygon
	switch t := g.(type) {
	case geom.Polygon:
		polys = []geom.Polygon{t}
	case geom.MultiPolygon:
		polys = t
	default:
		return nil, fmt.Errorf("geometry type %T is not polygonal", g)
	}
	var o []Boundary
	for _, p := range polys {
		for i, r := range p {
			b := Boundary(r).Copy()
			for j, r2 := range p {
				if i != j && nestedIn(b, Boundary(r2)) {
					return nil, fmt.Errorf("polygon holes are not supported")
				}
			}
			o = append(o, b)
		}
	}
	return o, nil
}

// nestedIn returns whether every vertex of inner lies within the larger
// ring outer.
func nestedIn(inner, outer Boundary) bool {
	if len(inner) == 0 || len(outer) < 3 || outer.Area() <= inner.Area() {
		return false
	}
	for _, p := range inner {
		if !outer.Contains(p) {
			return false
		}
	}
	return true
}

// singleRing returns the only ring in g, or an error if g does not have
// exactly one ring.
func singleRing(g geom.Geom) (Boundary, error) {
	rings, err := outerRings(g)
	if err != nil {
		return nil, err
	}
	if len(rings) != 1 {
		return nil, fmt.Errorf("area of interest must be a single polygon ring but has %d", len(rings))
	}
	return rings[0], nil
}

// ReadAOIShapefile reads the single area of interest polygon in the
// shapefile at path, along with the layer extent.
func ReadAOIShapefile(path string) (Boundary, Extent, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, Extent{}, fmt.Errorf("conflict: opening area of interest shapefile: %v", err)
	}
	defer d.Close()
	box := d.BBox()
	e := Extent{XMin: box.MinX, XMax: box.MaxX, YMin: box.MinY, YMax: box.MaxY}

	var rings []Boundary
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		if g == nil {
			continue
		}
		r, err := outerRings(g)
		if err != nil {
			return nil, e, fmt.Errorf("conflict: area of interest: %v", err)
		}
		rings = append(rings, r...)
	}
	if err := d.Error(); err != nil {
		return nil, e, fmt.Errorf("conflict: reading area of interest shapefile: %v", err)
	}
	if len(rings) != 1 {
		return nil, e, fmt.Errorf("conflict: area of interest must be a single polygon ring but has %d", len(rings))
	}
	return rings[0], e, nil
}

// ReadAOIGeoJSON reads the single area of interest polygon in the GeoJSON
// geometry file at path. The extent is the polygon's bounding box.
func ReadAOIGeoJSON(path string) (Boundary, Extent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Extent{}, fmt.Errorf("conflict: opening area of interest file: %v", err)
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, Extent{}, fmt.Errorf("conflict: reading area of interest file: %v", err)
	}
	g, err := geojson.Decode(b)
	if err != nil {
		return nil, Extent{}, fmt.Errorf("conflict: decoding area of interest: %v", err)
	}
	r, err := singleRing(g)
	if err != nil {
		return nil, Extent{}, fmt.Errorf("conflict: area of interest: %v", err)
	}
	return r, ExtentFromBounds(r.Bounds()), nil
}

// ReadASCIIGrid reads an Esri ASCII grid. Both the corner and center forms
// of the lower-left reference are accepted. If the file has no
// NODATA_value, NoData is used.
func ReadASCIIGrid(r io.Reader) (*Raster, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	s.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var first string
	for s.Scan() {
		tok := s.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			first = tok
			break
		}
		if !s.Scan() {
			return nil, fmt.Errorf("conflict: ASCII grid header key %s has no value", tok)
		}
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("conflict: ASCII grid header %s: %v", tok, err)
		}
		header[strings.ToLower(tok)] = v
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("conflict: reading ASCII grid: %v", err)
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("conflict: ASCII grid header is missing %s", k)
		}
	}
	nc, nr, cs := header["ncols"], header["nrows"], header["cellsize"]
	if !wholeCount(nc) || !wholeCount(nr) || nr*nc > maxGridCells {
		return nil, fmt.Errorf("conflict: ASCII grid has invalid shape %gx%g", nr, nc)
	}
	cols, rows := int(nc), int(nr)
	if !(cs > 0) {
		return nil, &InvalidResolutionError{Dx: cs, Dy: cs}
	}
	var x0, y0 float64
	if v, ok := header["xllcorner"]; ok {
		x0 = v
	} else if v, ok := header["xllcenter"]; ok {
		x0 = v - cs/2
	} else {
		return nil, fmt.Errorf("conflict: ASCII grid header is missing xllcorner")
	}
	if v, ok := header["yllcorner"]; ok {
		y0 = v
	} else if v, ok := header["yllcenter"]; ok {
		y0 = v - cs/2
	} else {
		return nil, fmt.Errorf("conflict: ASCII grid header is missing yllcorner")
	}
	noData := NoData
	if v, ok := header["nodata_value"]; ok {
		noData = v
	}

	e := Extent{XMin: x0, XMax: x0 + float64(cols)*cs, YMin: y0, YMax: y0 + float64(rows)*cs}
	out := NewRaster(e, Resolution{Dx: cs, Dy: cs}, rows, cols, 0, noData)
	n := rows * cols
	i := 0
	if first != "" {
		out.Data.Elements[0], _ = strconv.ParseFloat(first, 64)
		i++
	}
	for ; i < n && s.Scan(); i++ {
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("conflict: ASCII grid cell %d: %v", i, err)
		}
		out.Data.Elements[i] = v
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("conflict: reading ASCII grid: %v", err)
	}
	if i != n {
		return nil, fmt.Errorf("conflict: ASCII grid has %d values but %d are required", i, n)
	}
	return out, nil
}

// maxGridCells is the largest number of cells ReadASCIIGrid will allocate.
const maxGridCells = 1 << 30

// wholeCount reports whether v is a positive whole number no larger than
// maxGridCells.
func wholeCount(v float64) bool {
	return v >= 1 && v <= maxGridCells && v == math.Trunc(v)
}

// WriteASCIIGrid writes r as an Esri ASCII grid. The format holds a single
// cell size, so r must have square cells.
func WriteASCIIGrid(w io.Writer, r *Raster) error {
	if r.Res.Dx != r.Res.Dy {
		return fmt.Errorf("conflict: ASCII grids require square cells but resolution is %g x %g",
			r.Res.Dx, r.Res.Dy)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", r.Cols())
	fmt.Fprintf(bw, "nrows %d\n", r.Rows())
	fmt.Fprintf(bw, "xllcorner %s\n", formatFloat(r.Extent.XMin))
	fmt.Fprintf(bw, "yllcorner %s\n", formatFloat(r.Extent.YMin))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(r.Res.Dx))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(r.NoData))
	for row := 0; row < r.Rows(); row++ {
		for col := 0; col < r.Cols(); col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatFloat(r.Get(row, col)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteASCIIGridFile writes r to an Esri ASCII grid file at path. If
// projection is not empty, it is validated and written to a .prj file
// alongside the grid.
func WriteASCIIGridFile(path string, r *Raster, projection string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("conflict: creating raster file: %v", err)
	}
	if err := WriteASCIIGrid(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("conflict: closing raster file: %v", err)
	}
	if projection == "" {
		return nil
	}
	return WriteProjection(prjPath(path), projection)
}

// ReadASCIIGridFile reads the Esri ASCII grid file at path.
func ReadASCIIGridFile(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conflict: opening raster file: %v", err)
	}
	defer f.Close()
	return ReadASCIIGrid(f)
}

func prjPath(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, `/\`) {
		path = path[:i]
	}
	return path + ".prj"
}

// WriteProjection validates the projection identifier (Proj4 or WKT) and
// writes it to path.
func WriteProjection(path, projection string) error {
	if _, err := proj.Parse(projection); err != nil {
		return fmt.Errorf("conflict: invalid projection %q: %v", projection, err)
	}
	if err := ioutil.WriteFile(path, []byte(projection), 0644); err != nil {
		return fmt.Errorf("conflict: writing projection file: %v", err)
	}
	return nil
}

// ReadProjection returns the contents of the .prj file accompanying the
// shapefile or grid at path, or "" if there is none.
func ReadProjection(path string) (string, error) {
	b, err := ioutil.ReadFile(prjPath(path))
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("conflict: reading projection file: %v", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// ReadTargetCSV reads a target table for nLandUses land uses. The first
// record holds the number of contaminant rows that follow.
func ReadTargetCSV(r io.Reader, nLandUses int) (*TargetTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("conflict: reading target table: %v", err)
	}
	if len(recs) == 0 || len(recs[0]) == 0 {
		return nil, fmt.Errorf("conflict: target table is empty")
	}
	n, err := strconv.Atoi(strings.TrimSpace(recs[0][0]))
	if err != nil {
		return nil, fmt.Errorf("conflict: target table contaminant count: %v", err)
	}
	rows := recs[1:]
	if n != len(rows) {
		return nil, fmt.Errorf("conflict: target table declares %d contaminants but has %d rows", n, len(rows))
	}
	return LoadTargets(rows, nLandUses)
}
