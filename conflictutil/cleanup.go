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
	"strings"

	"github.com/spf13/afero"
)

// appFs is the file system that layout cleanup operates on.
var appFs = afero.NewOsFs()

// DefaultKeep lists the layout entries that survive cleanup by default:
// the cost, cost key, sensitivity, and weighting files of the layout and
// the optimizer's scratch directory.
var DefaultKeep = []string{".cost", ".cosk", ".snh", ".WE", "opttemp"}

// Layout identifies a land use layout directory within a scenario
// directory.
type Layout struct {
	ScenarioDir string
	Name        string

	// Keep lists the entries to preserve. Entries beginning with '.' are
	// suffixes appended to Name; others are entry names within the
	// layout directory.
	Keep []string
}

// Dir returns the path of the layout directory.
func (l Layout) Dir() string { return filepath.Join(l.ScenarioDir, l.Name) }

func (l Layout) entries() []string {
	o := make([]string, len(l.Keep))
	for i, k := range l.Keep {
		if strings.HasPrefix(k, ".") {
			o[i] = l.Name + k
		} else {
			o[i] = k
		}
	}
	return o
}

func (l Layout) check() error {
	if l.ScenarioDir == "" {
		return fmt.Errorf("conflict: cleanup: scenario directory is not set")
	}
	if l.Name == "" || l.Name == "." || l.Name == ".." || strings.ContainsAny(l.Name, `/\`) {
		return fmt.Errorf("conflict: cleanup: invalid layout name %q", l.Name)
	}
	for _, e := range l.entries() {
		if e == "" || e == ".." || strings.ContainsAny(e, `/\`) {
			return fmt.Errorf("conflict: cleanup: invalid entry to keep %q", e)
		}
	}
	return nil
}

// CleanLayout removes everything in the layout directory except the entries
// named by l.Keep, which are set aside in a temporary directory inside the
// scenario directory while the layout directory is deleted and recreated.
// The layout directory is created if it does not exist. The names of the
// entries that were kept are returned.
func CleanLayout(fs afero.Fs, l Layout) ([]string, error) {
	if err := l.check(); err != nil {
		return nil, err
	}
	if ok, err := afero.DirExists(fs, l.ScenarioDir); err != nil {
		return nil, fmt.Errorf("conflict: cleanup: %v", err)
	} else if !ok {
		return nil, fmt.Errorf("conflict: cleanup: scenario directory %s does not exist", l.ScenarioDir)
	}
	stash, err := afero.TempDir(fs, l.ScenarioDir, "."+l.Name+"-keep")
	if err != nil {
		return nil, fmt.Errorf("conflict: cleanup: %v", err)
	}
	defer fs.RemoveAll(stash)

	dir := l.Dir()
	var kept []string
	for _, e := range l.entries() {
		src := filepath.Join(dir, e)
		if _, err := fs.Stat(src); os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("conflict: cleanup: %v", err)
		}
		if err := copyTree(fs, src, filepath.Join(stash, e)); err != nil {
			return nil, err
		}
		kept = append(kept, e)
	}

	if err := fs.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("conflict: cleanup: removing layout: %v", err)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("conflict: cleanup: creating layout: %v", err)
	}
	for _, e := range kept {
		if err := copyTree(fs, filepath.Join(stash, e), filepath.Join(dir, e)); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

// copyTree copies the file or directory src to dst.
func copyTree(fs afero.Fs, src, dst string) error {
	err := afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return afero.WriteFile(fs, target, b, info.Mode().Perm())
	})
	if err != nil {
		return fmt.Errorf("conflict: cleanup: copying %s: %v", src, err)
	}
	return nil
}
