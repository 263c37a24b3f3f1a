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

package conflictutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/conflict"
	"github.com/spf13/cast"
)

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`conflict: you need to specify an output file configuration variable (for example: OutputFile="landuse.asc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("conflict: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkInputFile expands any environment variables in f and makes sure
// that it exists.
func checkInputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("conflict: the %s configuration variable is not set", name)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(f); err != nil {
		return f, fmt.Errorf("conflict: %s: %v", name, err)
	}
	return f, nil
}

// readAOI reads the area of interest polygon from a shapefile or a GeoJSON
// file, depending on the file extension.
func readAOI(path string) (conflict.Boundary, conflict.Extent, error) {
	path, err := checkInputFile("AOI", path)
	if err != nil {
		return nil, conflict.Extent{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return conflict.ReadAOIShapefile(path)
	case ".json", ".geojson":
		return conflict.ReadAOIGeoJSON(path)
	default:
		return nil, conflict.Extent{}, fmt.Errorf("conflict: unsupported AOI file type %q; use .shp, .json, or .geojson", filepath.Ext(path))
	}
}

// readProject reads and validates a TOML project file.
func readProject(path string) (*conflict.Project, error) {
	path, err := checkInputFile("ProjectFile", path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conflict: opening project file: %v", err)
	}
	defer f.Close()
	return conflict.ReadProject(f)
}

// projectPaths holds settings that default to the values in a project
// file when they are not set directly.
type projectPaths struct {
	AOI, ScenarioDir, Layout string
}

// fillFrom sets the empty fields of s from the project file at path.
// Relative paths in the project are taken relative to the project file.
// Nothing is read if path is empty.
func (s *projectPaths) fillFrom(path string) error {
	if path == "" || (s.AOI != "" && s.ScenarioDir != "" && s.Layout != "") {
		return nil
	}
	p, err := readProject(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(os.ExpandEnv(path))
	rel := func(f string) string {
		if f == "" || filepath.IsAbs(f) {
			return f
		}
		return filepath.Join(dir, f)
	}
	if s.AOI == "" {
		s.AOI = rel(p.AOI)
	}
	if s.ScenarioDir == "" {
		s.ScenarioDir = rel(p.Scenario)
	}
	if s.Layout == "" {
		s.Layout = p.Layout
	}
	return nil
}

// readTargets reads a target table with nLandUses land use columns.
func readTargets(path string, nLandUses int) (*conflict.TargetTable, error) {
	path, err := checkInputFile("TargetFile", path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conflict: opening target file: %v", err)
	}
	defer f.Close()
	return conflict.ReadTargetCSV(f, nLandUses)
}

// outputProjection returns projection if it is set, and otherwise the
// projection stored next to the input file, if any.
func outputProjection(projection, input string) (string, error) {
	if projection != "" {
		return os.ExpandEnv(projection), nil
	}
	return conflict.ReadProjection(input)
}

// writeGrid writes r to path, in binary form if the path ends in .gob
// and as an ESRI ASCII grid otherwise.
func writeGrid(path string, r *conflict.Raster, projection string) error {
	if strings.ToLower(filepath.Ext(path)) != ".gob" {
		return conflict.WriteASCIIGridFile(path, r, projection)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("conflict: creating output grid: %v", err)
	}
	if err := conflict.Save(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// contaminantOrder returns the contaminants to evaluate. Those selected in
// the project come first in project order; otherwise all contaminants with
// contamination grids are evaluated in alphabetical order.
func contaminantOrder(p *conflict.Project, grids map[string]string) ([]string, error) {
	if p != nil && len(p.Contaminants) > 0 {
		for _, c := range p.Contaminants {
			if _, ok := gridFor(grids, c); !ok {
				return nil, fmt.Errorf("conflict: no contamination grid for selected contaminant %q", c)
			}
		}
		return p.Contaminants, nil
	}
	if len(grids) == 0 {
		return nil, fmt.Errorf("conflict: the Contamination configuration variable is empty")
	}
	o := make([]string, 0, len(grids))
	for c := range grids {
		o = append(o, c)
	}
	sort.Strings(o)
	return o, nil
}

// gridFor returns the grid of contaminant c. Configuration files lower-case
// map keys, so names are matched without regard to case if there is no
// exact match.
func gridFor(grids map[string]string, c string) (string, bool) {
	if g, ok := grids[c]; ok {
		return g, true
	}
	for k, g := range grids {
		if strings.EqualFold(k, c) {
			return g, true
		}
	}
	return "", false
}

// canonicalName returns the entry of names that matches c without regard to
// case, or c if there is none.
func canonicalName(names []string, c string) string {
	for _, n := range names {
		if n == c {
			return n
		}
	}
	for _, n := range names {
		if strings.EqualFold(n, c) {
			return n
		}
	}
	return c
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("conflict: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("conflict: invalid type for %s: %#v", varName, i)
	}
}
