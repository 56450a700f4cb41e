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

// Data is the in-memory contents of a data file: a *Table for tabular
// files or a *Grid for gridded files.
type Data interface {
	Format() Format

	// VariableNames returns the names of the data columns or variables.
	VariableNames() []string
}

// Read reads the file at path in the given format.
func Read(path string, f Format) (Data, error) {
	var d Data
	var err error
	switch f {
	case Tabular:
		d, err = ReadTable(path)
	case Gridded:
		d, err = ReadGrid(path)
	default:
		return nil, &UnknownFormatError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
