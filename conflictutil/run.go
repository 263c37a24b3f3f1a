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
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/conflict"
)

// Rasterize converts the land use parcels in landUseFile to a categorical
// grid with cells of size dx by dy and writes it to outputFile. When aoiFile
// is not empty, the AOI polygon defines the grid extent and cells outside of
// it are set to NoData; otherwise the extent of the shapefile is used.
func Rasterize(log logrus.FieldLogger, landUseFile, nameField, codeField string, dx, dy float64, aoiFile, outputFile, projection string) error {
	landUseFile, err := checkInputFile("LandUseShapefile", landUseFile)
	if err != nil {
		return err
	}
	if outputFile, err = checkOutputFile(outputFile); err != nil {
		return err
	}
	layer, err := conflict.ReadLandUseShapefile(landUseFile, nameField, codeField)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":    landUseFile,
		"parcels": len(layer.Parcels),
	}).Info("read land use layer")

	extent := layer.Extent
	var aoi conflict.Boundary
	if aoiFile != "" {
		if aoi, extent, err = readAOI(aoiFile); err != nil {
			return err
		}
	}
	l, err := conflict.SamplePoints(extent, dx, dy)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"rows": l.Rows, "cols": l.Cols}).Debug("created sample lattice")

	r, err := conflict.Rasterize(layer.Parcels, l)
	if err != nil {
		return err
	}
	if aoi != nil {
		m, err := conflict.BuildMask(l, aoi)
		if err != nil {
			return err
		}
		if r, err = conflict.ApplyMask(r, m); err != nil {
			return err
		}
		log.WithField("cells", m.Count()).Debug("applied AOI mask")
	}

	if projection, err = outputProjection(projection, landUseFile); err != nil {
		return err
	}
	if err := writeGrid(outputFile, r, projection); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":  outputFile,
		"valid": len(r.Valid()),
	}).Info("wrote land use grid")
	return nil
}

// Mask writes a grid covering the AOI polygon in aoiFile in which cells
// whose centers are inside the polygon are 1 and others are 0.
func Mask(log logrus.FieldLogger, aoiFile string, dx, dy float64, outputFile, projection string) error {
	outputFile, err := checkOutputFile(outputFile)
	if err != nil {
		return err
	}
	aoi, extent, err := readAOI(aoiFile)
	if err != nil {
		return err
	}
	l, err := conflict.SamplePoints(extent, dx, dy)
	if err != nil {
		return err
	}
	m, err := conflict.BuildMask(l, aoi)
	if err != nil {
		return err
	}
	r, err := m.Raster(l)
	if err != nil {
		return err
	}
	if projection, err = outputProjection(projection, os.ExpandEnv(aoiFile)); err != nil {
		return err
	}
	if err := writeGrid(outputFile, r, projection); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":   outputFile,
		"inside": m.Count(),
		"cells":  l.Len(),
	}).Info("wrote AOI mask")
	return nil
}

// Flag compares the contamination grids with the remediation targets of
// each parcel's land use and writes the results to the shapefile
// outputFile. The land use classes come from projectFile if it is set;
// otherwise codes 1 through nLandUses are used. When conflictGridDir is
// set, a per-cell conflict grid is also written there for each contaminant.
func Flag(log logrus.FieldLogger, landUseFile, nameField, codeField, projectFile, targetFile string, nLandUses int, contamination map[string]string, outputFile, conflictGridDir, projection string) error {
	landUseFile, err := checkInputFile("LandUseShapefile", landUseFile)
	if err != nil {
		return err
	}
	if outputFile, err = checkOutputFile(outputFile); err != nil {
		return err
	}
	if conflictGridDir != "" {
		conflictGridDir = os.ExpandEnv(conflictGridDir)
		if err := os.MkdirAll(conflictGridDir, 0755); err != nil {
			return fmt.Errorf("conflict: creating ConflictGridDir: %v", err)
		}
	}

	var p *conflict.Project
	legend := conflict.SequentialLegend(nLandUses)
	if projectFile != "" {
		if p, err = readProject(projectFile); err != nil {
			return err
		}
		legend = p.Legend()
		nLandUses = p.NLandUses()
	}
	if nLandUses < 1 {
		return fmt.Errorf("conflict: the number of land uses must be set with NLandUses or ProjectFile")
	}
	t, err := readTargets(targetFile, nLandUses)
	if err != nil {
		return err
	}
	if p != nil {
		if err := p.CheckTargets(t); err != nil {
			return err
		}
	}
	contaminants, err := contaminantOrder(p, contamination)
	if err != nil {
		return err
	}

	layer, err := conflict.ReadLandUseShapefile(landUseFile, nameField, codeField)
	if err != nil {
		return err
	}
	if projection, err = outputProjection(projection, landUseFile); err != nil {
		return err
	}

	reports := make([]*conflict.ConflictReport, len(contaminants))
	for i, name := range contaminants {
		g, _ := gridFor(contamination, name)
		gridFile, err := checkInputFile("Contamination["+name+"]", g)
		if err != nil {
			return err
		}
		c := canonicalName(t.Contaminants(), name)
		grid, err := conflict.ReadASCIIGridFile(gridFile)
		if err != nil {
			return err
		}
		if reports[i], err = conflict.FlagConflicts(layer.Parcels, grid, t, c, legend); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"contaminant": c,
			"compartment": reports[i].Compartment,
			"exceeded":    reports[i].Exceedances(),
			"parcels":     len(layer.Parcels),
		}).Info("flagged conflicts")

		if conflictGridDir == "" {
			continue
		}
		l, err := conflict.SamplePoints(grid.Extent, grid.Res.Dx, grid.Res.Dy)
		if err != nil {
			return err
		}
		lu, err := conflict.Rasterize(layer.Parcels, l)
		if err != nil {
			return err
		}
		cr, err := conflict.ConflictRaster(lu, grid, t, c, legend)
		if err != nil {
			return err
		}
		out := filepath.Join(conflictGridDir, c+"_conflict.asc")
		if err := conflict.WriteASCIIGridFile(out, cr, projection); err != nil {
			return err
		}
		log.WithField("file", out).Debug("wrote conflict grid")
	}
	if err := conflict.WriteConflictShapefile(outputFile, layer.Parcels, projection, reports...); err != nil {
		return err
	}
	log.WithField("file", outputFile).Info("wrote conflict shapefile")
	return nil
}

// Cleanup empties the layout directory layout in scenarioDir, keeping the
// entries listed in keep.
func Cleanup(log logrus.FieldLogger, scenarioDir, layout string, keep []string) error {
	l := Layout{
		ScenarioDir: os.ExpandEnv(scenarioDir),
		Name:        layout,
		Keep:        keep,
	}
	kept, err := CleanLayout(appFs, l)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"layout": filepath.Join(l.ScenarioDir, l.Name),
		"kept":   kept,
	}).Info("cleaned layout")
	return nil
}
