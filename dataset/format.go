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

// Package dataset reads local oceanographic data files and summarizes
// their spatial and temporal extent.
//
// Two kinds of files are understood: delimited tabular files (CSV), which
// must hold longitude, latitude and time columns, and gridded netCDF files,
// whose coordinate variables declare their axis roles through attributes.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies how a data file is laid out.
type Format int

const (
	// Tabular files are delimited text with one record per row.
	Tabular Format = iota + 1
	// Gridded files are netCDF files with coordinate and data variables.
	Gridded
)

// Driver names, as they appear in catalog documents.
const (
	CSVDriver    = "csv"
	NetCDFDriver = "netcdf"
)

// String returns the driver name of f.
func (f Format) String() string {
	switch f {
	case Tabular:
		return CSVDriver
	case Gridded:
		return NetCDFDriver
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// extensions maps lower-case file extensions to formats.
var extensions = map[string]Format{
	".csv":    Tabular,
	".nc":     Gridded,
	".nc4":    Gridded,
	".cdf":    Gridded,
	".netcdf": Gridded,
}

// UnknownFormatError is returned when a file's format cannot be
// determined from its name or a catalog names an unknown driver.
type UnknownFormatError struct {
	Path   string
	Driver string
}

func (e *UnknownFormatError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("dataset: unknown driver %q", e.Driver)
	}
	return fmt.Sprintf("dataset: cannot determine the format of %s: "+
		"file extension %q is not one of .csv, .nc, .nc4, .cdf or .netcdf", e.Path, filepath.Ext(e.Path))
}

// FormatFromPath returns the format of the file at path as implied by
// its extension.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f, nil
	}
	return 0, &UnknownFormatError{Path: path}
}

// ParseDriver returns the format named by a catalog driver.
func ParseDriver(driver string) (Format, error) {
	switch driver {
	case CSVDriver:
		return Tabular, nil
	case NetCDFDriver:
		return Gridded, nil
	}
	return 0, &UnknownFormatError{Driver: driver}
}
