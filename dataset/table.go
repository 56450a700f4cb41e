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

package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table holds the full contents of a tabular data file.
type Table struct {
	Columns []string
	Rows    [][]string
}

// MissingColumnError is returned when a tabular file lacks a column
// required to compute its metadata.
type MissingColumnError struct {
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dataset: missing column %q", e.Column)
	}
	return fmt.Sprintf("dataset: %s has no %q column", e.Path, e.Column)
}

// ReadTable reads a comma-separated file whose first row names the
// columns.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening tabular file: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading tabular file %s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("dataset: tabular file %s has no header row", path)
	}
	t := &Table{Columns: recs[0], Rows: recs[1:]}
	for i, c := range t.Columns {
		t.Columns[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return t, nil
}

// Format helps fulfill the Data interface.
func (t *Table) Format() Format { return Tabular }

// VariableNames helps fulfill the Data interface by returning the
// column names.
func (t *Table) VariableNames() []string { return t.Columns }

func (t *Table) index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]string, error) {
	i := t.index(name)
	if i < 0 {
		return nil, &MissingColumnError{Column: name}
	}
	o := make([]string, len(t.Rows))
	for j, row := range t.Rows {
		o[j] = strings.TrimSpace(row[i])
	}
	return o, nil
}

// Floats returns the values of the named column as numbers. Empty
// cells and "NaN" become NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	s, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	o := make([]float64, len(s))
	for i, v := range s {
		if v == "" {
			o[i] = math.NaN()
			continue
		}
		o[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: column %q row %d: %w", name, i+1, err)
		}
	}
	return o, nil
}
