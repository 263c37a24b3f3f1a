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

	"github.com/kr/pretty"
)

func TestLoadTargets(t *testing.T) {
	rows := [][]string{
		{"Benzene", "soil", "1.5", "2.5", "benz_r", "1", "3"},
		{"Lead", "groundwater", "10", "0.25", "pb", "false", "0"},
	}
	table, err := LoadTargets(rows, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []TargetRow{
		{Contaminant: "Benzene", Compartment: "soil", Targets: []float64{1.5, 2.5}, RasterField: "benz_r", ConflictType: true, Realization: 3},
		{Contaminant: "Lead", Compartment: "groundwater", Targets: []float64{10, 0.25}, RasterField: "pb", ConflictType: false, Realization: 0},
	}
	if diff := pretty.Diff(table.Rows, want); len(diff) != 0 {
		t.Errorf("rows differ:\n%v", diff)
	}
	if diff := pretty.Diff(table.Contaminants(), []string{"Benzene", "Lead"}); len(diff) != 0 {
		t.Errorf("contaminants differ: %v", diff)
	}

	v, err := table.Lookup("Benzene", 1)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2.5 {
		t.Errorf("Benzene, land use 1: have %g, want 2.5", v)
	}
	v, err = table.Lookup("Lead", 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 10 {
		t.Errorf("Lead, land use 0: have %g, want 10", v)
	}
}

func TestLoadTargetsErrors(t *testing.T) {
	t.Run("extra target", func(t *testing.T) {
		_, err := LoadTargets([][]string{{"Arsenic", "soil", "1", "2", "3", "as_r", "0", "1"}}, 2)
		var me *MalformedTargetRowError
		if !errors.As(err, &me) {
			t.Fatalf("have error %v, want MalformedTargetRowError", err)
		}
		want := &MalformedTargetRowError{Row: 0, Fields: 8, WantFields: 7}
		if diff := pretty.Diff(me, want); len(diff) != 0 {
			t.Errorf("error differs: %v", diff)
		}
	})
	t.Run("bad number", func(t *testing.T) {
		_, err := LoadTargets([][]string{
			{"Benzene", "soil", "1.5", "2.5", "benz_r", "1", "3"},
			{"Lead", "soil", "ten", "2", "pb", "0", "1"},
		}, 2)
		var me *MalformedTargetRowError
		if !errors.As(err, &me) {
			t.Fatalf("have error %v, want MalformedTargetRowError", err)
		}
		if me.Row != 1 || me.Err == nil {
			t.Errorf("error fields: %+v", me)
		}
	})
	t.Run("bad flag", func(t *testing.T) {
		_, err := LoadTargets([][]string{{"Lead", "soil", "1", "2", "pb", "maybe", "1"}}, 2)
		var me *MalformedTargetRowError
		if !errors.As(err, &me) {
			t.Fatalf("have error %v, want MalformedTargetRowError", err)
		}
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := LoadTargets([][]string{
			{"Lead", "soil", "1", "2", "pb", "0", "1"},
			{"Lead", "soil", "1", "2", "pb", "0", "1"},
		}, 2)
		if err == nil {
			t.Error("duplicate contaminants should be rejected")
		}
	})
	t.Run("no land uses", func(t *testing.T) {
		if _, err := LoadTargets(nil, 0); err == nil {
			t.Error("zero land uses should be rejected")
		}
	})
}

func TestLookupErrors(t *testing.T) {
	table, err := LoadTargets([][]string{{"Benzene", "soil", "1.5", "2.5", "benz_r", "1", "3"}}, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = table.Lookup("Mercury", 0)
	var ue *UnknownContaminantError
	if !errors.As(err, &ue) {
		t.Errorf("have error %v, want UnknownContaminantError", err)
	} else if ue.Name != "Mercury" {
		t.Errorf("name: have %q, want Mercury", ue.Name)
	}
	for _, i := range []int{-1, 2, 10} {
		_, err = table.Lookup("Benzene", i)
		var ie *IndexOutOfRangeError
		if !errors.As(err, &ie) {
			t.Errorf("index %d: have error %v, want IndexOutOfRangeError", i, err)
		}
	}
}

func TestTargetRowFields(t *testing.T) {
	for n, want := range map[int]int{1: 6, 2: 7, 5: 10} {
		if have := TargetRowFields(n); have != want {
			t.Errorf("%d land uses: have %d, want %d", n, have, want)
		}
	}
}
