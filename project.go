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
	"io"

	"github.com/BurntSushi/toml"
)

// LandUse describes one land use class of a project.
type LandUse struct {
	Name string

	// Code is the category code parcels of this land use carry.
	Code int

	// Colour is the RGB display colour.
	Colour [3]int

	// Ratio is the scenario's target share of this land use.
	Ratio float64
}

// Project holds the settings of a conflict analysis project.
type Project struct {
	// Scenario is the active scenario directory.
	Scenario string

	// Layout is the active land use layout within the scenario.
	Layout string

	// AOI is the path to the area of interest polygon.
	AOI string

	// LandUse lists the land uses in target table column order.
	LandUse []LandUse

	// NContaminants is the declared number of selected contaminants.
	NContaminants int

	// Contaminants lists the selected contaminants.
	Contaminants []string
}

// ReadProject decodes a TOML project description from r and validates it.
func ReadProject(r io.Reader) (*Project, error) {
	p := new(Project)
	if _, err := toml.DecodeReader(r, p); err != nil {
		return nil, fmt.Errorf("conflict: reading project: %v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks p for internal consistency.
func (p *Project) Validate() error {
	if len(p.LandUse) == 0 {
		return fmt.Errorf("conflict: project defines no land uses")
	}
	codes := make(map[int]string)
	for _, lu := range p.LandUse {
		if float64(lu.Code) == NoData {
			return fmt.Errorf("conflict: land use %q has code %d, which is reserved for NoData", lu.Name, lu.Code)
		}
		if other, ok := codes[lu.Code]; ok {
			return fmt.Errorf("conflict: land uses %q and %q share code %d", other, lu.Name, lu.Code)
		}
		codes[lu.Code] = lu.Name
		for _, c := range lu.Colour {
			if c < 0 || c > 255 {
				return fmt.Errorf("conflict: land use %q colour %v out of range", lu.Name, lu.Colour)
			}
		}
	}
	if p.NContaminants != len(p.Contaminants) {
		return fmt.Errorf("conflict: project declares %d contaminants but selects %d",
			p.NContaminants, len(p.Contaminants))
	}
	return nil
}

// NLandUses returns the number of land uses in p.
func (p *Project) NLandUses() int { return len(p.LandUse) }

// Legend returns the mapping from category code to land use index.
func (p *Project) Legend() Legend {
	l := make(Legend, len(p.LandUse))
	for i, lu := range p.LandUse {
		l[lu.Code] = i
	}
	return l
}

// CheckTargets makes sure t has one target column per land use in p and a
// row for every selected contaminant.
func (p *Project) CheckTargets(t *TargetTable) error {
	if t.NLandUses != p.NLandUses() {
		return fmt.Errorf("conflict: target table has %d land uses but project has %d",
			t.NLandUses, p.NLandUses())
	}
	for _, c := range p.Contaminants {
		if _, err := t.Row(c); err != nil {
			return err
		}
	}
	return nil
}

// Legend maps category codes to zero-based land use indices.
type Legend map[int]int

// Index returns the land use index of code.
func (l Legend) Index(code int) (int, bool) {
	i, ok := l[code]
	return i, ok
}

// SequentialLegend returns the legend for n land uses coded 1 through n.
func SequentialLegend(n int) Legend {
	l := make(Legend, n)
	for i := 0; i < n; i++ {
		l[i+1] = i
	}
	return l
}
