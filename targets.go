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
	"strconv"
	"strings"
)

// TargetRow holds the target values of one contaminant.
type TargetRow struct {
	// Contaminant is the contaminant name.
	Contaminant string

	// Compartment is the environmental compartment the targets apply to,
	// for example soil or groundwater.
	Compartment string

	// Targets holds one target value per land use, in land use order.
	Targets []float64

	// RasterField is the name of the contamination raster or attribute
	// field holding realized values of this contaminant.
	RasterField string

	// ConflictType selects how exceedances of this contaminant are
	// reported downstream.
	ConflictType bool

	// Realization is the index of the contamination realization to use.
	Realization int
}

// TargetTable holds the target values of all contaminants in a scenario.
// It is not modified after LoadTargets returns.
type TargetTable struct {
	NLandUses int
	Rows      []TargetRow

	index map[string]int
}

// TargetRowFields returns the number of fields in a target table row for
// nLandUses land uses: name, compartment, nLandUses targets, raster field
// name, conflict type flag, and realization index.
func TargetRowFields(nLandUses int) int {
	return nLandUses + 5
}

// LoadTargets parses raw target table rows for nLandUses land uses.
// It returns a *MalformedTargetRowError for the first row with the wrong
// number of fields or an unparseable value, and an error if a contaminant
// appears twice.
func LoadTargets(rows [][]string, nLandUses int) (*TargetTable, error) {
	if nLandUses < 1 {
		return nil, fmt.Errorf("conflict: loading targets: number of land uses is %d but must be > 0", nLandUses)
	}
	want := TargetRowFields(nLandUses)
	t := &TargetTable{
		NLandUses: nLandUses,
		Rows:      make([]TargetRow, len(rows)),
		index:     make(map[string]int, len(rows)),
	}
	for i, rec := range rows {
		if len(rec) != want {
			return nil, &MalformedTargetRowError{Row: i, Fields: len(rec), WantFields: want}
		}
		row, err := parseTargetRow(rec, nLandUses)
		if err != nil {
			return nil, &MalformedTargetRowError{Row: i, Fields: len(rec), WantFields: want, Err: err}
		}
		if j, ok := t.index[row.Contaminant]; ok {
			return nil, fmt.Errorf("conflict: target table rows %d and %d both define contaminant %q",
				j, i, row.Contaminant)
		}
		t.index[row.Contaminant] = i
		t.Rows[i] = row
	}
	return t, nil
}

func parseTargetRow(rec []string, n int) (TargetRow, error) {
	row := TargetRow{
		Contaminant: strings.TrimSpace(rec[0]),
		Compartment: strings.TrimSpace(rec[1]),
		Targets:     make([]float64, n),
		RasterField: strings.TrimSpace(rec[n+2]),
	}
	if row.Contaminant == "" {
		return row, fmt.Errorf("empty contaminant name")
	}
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+2]), 64)
		if err != nil {
			return row, fmt.Errorf("target value for land use %d: %v", i, err)
		}
		row.Targets[i] = v
	}
	flag, err := parseFlag(rec[n+3])
	if err != nil {
		return row, fmt.Errorf("conflict type flag: %v", err)
	}
	row.ConflictType = flag
	row.Realization, err = strconv.Atoi(strings.TrimSpace(rec[n+4]))
	if err != nil {
		return row, fmt.Errorf("realization index: %v", err)
	}
	return row, nil
}

// parseFlag accepts 0/1 as well as the forms understood by
// strconv.ParseBool.
func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i != 0, nil
	}
	return strconv.ParseBool(s)
}

// Contaminants returns the contaminant names in table order.
func (t *TargetTable) Contaminants() []string {
	o := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		o[i] = r.Contaminant
	}
	return o
}

// Row returns the row for the named contaminant.
func (t *TargetTable) Row(contaminant string) (TargetRow, error) {
	i, ok := t.index[contaminant]
	if !ok {
		return TargetRow{}, &UnknownContaminantError{Name: contaminant}
	}
	return t.Rows[i], nil
}

// Lookup returns the target value of contaminant for the land use at
// zero-based index landUse.
func (t *TargetTable) Lookup(contaminant string, landUse int) (float64, error) {
	row, err := t.Row(contaminant)
	if err != nil {
		return 0, err
	}
	if landUse < 0 || landUse >= t.NLandUses {
		return 0, &IndexOutOfRangeError{Index: landUse, Len: t.NLandUses}
	}
	return row.Targets[landUse], nil
}
