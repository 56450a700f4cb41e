/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package datasettest writes small data files for use in tests.
package datasettest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
)

// WriteCSV writes contents to a file called name in dir and returns
// the file's path.
func WriteCSV(dir, name, contents string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return "", fmt.Errorf("datasettest: %v", err)
	}
	return path, nil
}

// Var describes a variable to be written to a netCDF file. Values are
// stored as doubles.
type Var struct {
	Name   string
	Dims   []string
	Values []float64

	// Attrs are added in the order given. Values must be strings or
	// []float64.
	Attrs []Attr
}

// Attr is a netCDF attribute.
type Attr struct {
	Name  string
	Value interface{}
}

// Grid describes a netCDF classic file. A dimension with length 0 is
// the record dimension.
type Grid struct {
	Dims    []string
	Lengths []int
	Attrs   []Attr
	Vars    []Var
}

// WriteGrid writes g to a file called name in dir and returns the
// file's path.
func WriteGrid(dir, name string, g Grid) (string, error) {
	h := cdf.NewHeader(g.Dims, g.Lengths)
	for _, a := range g.Attrs {
		h.AddAttribute("", a.Name, a.Value)
	}
	for _, v := range g.Vars {
		h.AddVariable(v.Name, v.Dims, []float64{0})
		for _, a := range v.Attrs {
			h.AddAttribute(v.Name, a.Name, a.Value)
		}
	}
	h.Define()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("datasettest: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Create(f, h)
	if err != nil {
		return "", fmt.Errorf("datasettest: creating %s: %v", path, err)
	}
	for _, v := range g.Vars {
		if len(v.Values) == 0 {
			continue
		}
		w := ff.Writer(v.Name, nil, nil)
		if _, err := w.Write(v.Values); err != nil && err != io.EOF {
			return "", fmt.Errorf("datasettest: writing %s: %v", v.Name, err)
		}
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		return "", fmt.Errorf("datasettest: %v", err)
	}
	return path, nil
}
