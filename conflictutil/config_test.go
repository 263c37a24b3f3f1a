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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/conflict"
)

func TestGetStringMapString(t *testing.T) {
	tests := []struct {
		name string
		val  interface{}
		want map[string]string
	}{
		{name: "json", val: `{"Benzene": "b.asc", "Lead": "pb.asc"}`, want: map[string]string{"Benzene": "b.asc", "Lead": "pb.asc"}},
		{name: "empty string", val: "", want: map[string]string{}},
		{name: "map", val: map[string]string{"Lead": "pb.asc"}, want: map[string]string{"Lead": "pb.asc"}},
		{name: "interface map", val: map[string]interface{}{"lead": "pb.asc"}, want: map[string]string{"lead": "pb.asc"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("Contamination", test.val)
			have, err := GetStringMapString("Contamination", cfg)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have, test.want) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
	t.Run("bad json", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("Contamination", "{Benzene")
		if _, err := GetStringMapString("Contamination", cfg); err == nil {
			t.Error("invalid JSON should be reported")
		}
	})
}

func TestReadAOI(t *testing.T) {
	dir := t.TempDir()
	t.Run("geojson", func(t *testing.T) {
		f := writeFile(t, filepath.Join(dir, "aoi.geojson"),
			`{"type": "Polygon","coordinates": [ [ [1, 1], [3, 1], [3, 2], [1, 2], [1, 1] ] ] }`)
		b, e, err := readAOI(f)
		if err != nil {
			t.Fatal(err)
		}
		if want := (conflict.Extent{XMin: 1, XMax: 3, YMin: 1, YMax: 2}); e != want {
			t.Errorf("extent: have %+v, want %+v", e, want)
		}
		if len(b) != 5 {
			t.Errorf("have %d vertices, want 5", len(b))
		}
	})
	t.Run("shapefile", func(t *testing.T) {
		b, e, err := readAOI(writeLandUse(t, dir))
		if err == nil {
			t.Errorf("a two-polygon AOI should be rejected, got %v %+v", b, e)
		}
	})
	t.Run("environment", func(t *testing.T) {
		os.Setenv("CONFLICT_TEST_DIR", dir)
		defer os.Unsetenv("CONFLICT_TEST_DIR")
		if _, _, err := readAOI("$CONFLICT_TEST_DIR/aoi.geojson"); err != nil {
			t.Error(err)
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		if _, _, err := readAOI(writeFile(t, filepath.Join(dir, "aoi.kml"), "<kml/>")); err == nil {
			t.Error("unsupported file type should be reported")
		}
	})
	t.Run("missing", func(t *testing.T) {
		if _, _, err := readAOI(filepath.Join(dir, "none.shp")); err == nil {
			t.Error("missing file should be reported")
		}
	})
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := checkOutputFile(""); err == nil {
		t.Error("empty output file should be rejected")
	}
	if _, err := checkOutputFile(filepath.Join(dir, "missing", "out.asc")); err == nil {
		t.Error("output file in a missing directory should be rejected")
	}
	f, err := checkOutputFile(filepath.Join(dir, "out.asc"))
	if err != nil {
		t.Fatal(err)
	}
	if f != filepath.Join(dir, "out.asc") {
		t.Errorf("have %s", f)
	}
}

func TestContaminantOrder(t *testing.T) {
	grids := map[string]string{"Lead": "pb.asc", "Benzene": "b.asc", "Arsenic": "as.asc"}
	have, err := contaminantOrder(nil, grids)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Arsenic", "Benzene", "Lead"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	p := &conflict.Project{Contaminants: []string{"Lead", "Benzene"}}
	have, err = contaminantOrder(p, grids)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Lead", "Benzene"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	have, err = contaminantOrder(&conflict.Project{Contaminants: []string{"BENZENE"}}, grids)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"BENZENE"}; !reflect.DeepEqual(have, want) {
		t.Errorf("case-insensitive match: have %v, want %v", have, want)
	}
	if g, ok := gridFor(grids, "lead"); !ok || g != "pb.asc" {
		t.Errorf("gridFor: have %q %v", g, ok)
	}
	if n := canonicalName([]string{"Benzene", "Lead"}, "lead"); n != "Lead" {
		t.Errorf("canonicalName: have %s, want Lead", n)
	}

	p.Contaminants = append(p.Contaminants, "Mercury")
	if _, err := contaminantOrder(p, grids); err == nil {
		t.Error("missing grid should be reported")
	}
	if _, err := contaminantOrder(nil, nil); err == nil {
		t.Error("no grids should be reported")
	}
}

func TestResolutionFromEnvironment(t *testing.T) {
	os.Setenv("CONFLICT_DX", "2.5")
	defer os.Unsetenv("CONFLICT_DX")
	cfg := Cfg
	Cfg = viper.New()
	Cfg.SetEnvPrefix("CONFLICT")
	Cfg.AutomaticEnv()
	Cfg.SetDefault("Dy", 10.0)
	defer func() { Cfg = cfg }()

	dx, dy, err := resolution()
	if err != nil {
		t.Fatal(err)
	}
	if dx != 2.5 || dy != 10 {
		t.Errorf("have %g x %g, want 2.5 x 10", dx, dy)
	}
	os.Setenv("CONFLICT_DX", "wide")
	if _, _, err := resolution(); err == nil {
		t.Error("invalid Dx should be reported")
	}
}

func TestProjectPaths(t *testing.T) {
	dir := t.TempDir()
	project := writeFile(t, filepath.Join(dir, "project.toml"), "AOI = \"aoi.shp\"\n"+testProject)

	var s projectPaths
	if err := s.fillFrom(project); err != nil {
		t.Fatal(err)
	}
	want := projectPaths{
		AOI:         filepath.Join(dir, "aoi.shp"),
		ScenarioDir: filepath.Join(dir, "scenario1"),
		Layout:      "layoutA",
	}
	if s != want {
		t.Errorf("have %+v, want %+v", s, want)
	}

	s = projectPaths{AOI: "other.json", Layout: "layoutB"}
	if err := s.fillFrom(project); err != nil {
		t.Fatal(err)
	}
	if s.AOI != "other.json" || s.Layout != "layoutB" || s.ScenarioDir != want.ScenarioDir {
		t.Errorf("set values should be kept: %+v", s)
	}

	s = projectPaths{}
	if err := s.fillFrom(""); err != nil || s != (projectPaths{}) {
		t.Errorf("no project file: %+v, %v", s, err)
	}
	if err := s.fillFrom(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("a missing project file should be reported")
	}
}
