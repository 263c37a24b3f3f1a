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
	"encoding/gob"
	"fmt"
	"io"
)

// Save writes r to w in gob format so that it can be reloaded with Load
// without repeating the rasterization.
func Save(w io.Writer, r *Raster) error {
	e := gob.NewEncoder(w)
	if err := e.Encode(r); err != nil {
		return fmt.Errorf("conflict.Save: %v", err)
	}
	return nil
}

// Load reads a raster previously written by Save.
func Load(rd io.Reader) (*Raster, error) {
	dec := gob.NewDecoder(rd)
	r := new(Raster)
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("conflict.Load: %v", err)
	}
	if r.Data == nil || len(r.Data.Shape) != 2 {
		return nil, fmt.Errorf("conflict.Load: raster data is not two-dimensional")
	}
	r.Data.Fix()
	if len(r.Data.Elements) != r.Rows()*r.Cols() {
		return nil, fmt.Errorf("conflict.Load: raster has %d values but shape %dx%d",
			len(r.Data.Elements), r.Rows(), r.Cols())
	}
	return r, nil
}
