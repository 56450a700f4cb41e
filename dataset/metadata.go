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
	"sort"
	"time"

	"github.com/ctessum/geom"
)

// Metadata summarizes the contents of one data file.
// Tabular files fill in Variables and the bounds; gridded files
// additionally report their coordinates and which coordinate plays
// the time, longitude and latitude roles. A role that could not be
// inferred leaves its name empty and its bounds unset.
type Metadata struct {
	Coords       []string `yaml:"coords,omitempty"`
	Variables    []string `yaml:"variables"`
	TimeVariable string   `yaml:"time_variable,omitempty"`
	LonVariable  string   `yaml:"lon_variable,omitempty"`
	LatVariable  string   `yaml:"lat_variable,omitempty"`

	LonMin *float64 `yaml:"geospatial_lon_min,omitempty"`
	LonMax *float64 `yaml:"geospatial_lon_max,omitempty"`
	LatMin *float64 `yaml:"geospatial_lat_min,omitempty"`
	LatMax *float64 `yaml:"geospatial_lat_max,omitempty"`

	TimeStart string `yaml:"time_coverage_start,omitempty"`
	TimeEnd   string `yaml:"time_coverage_end,omitempty"`

	// Extra holds any additional keys found in a catalog document.
	Extra map[string]interface{} `yaml:",inline"`
}

// Field is one populated metadata key and its value.
type Field struct {
	Key   string
	Value interface{}
}

// Fields returns the populated keys of m in a fixed order, followed by
// any extra keys sorted by name.
func (m *Metadata) Fields() []Field {
	var o []Field
	addStrings := func(k string, v []string) {
		if v != nil {
			o = append(o, Field{Key: k, Value: v})
		}
	}
	addString := func(k, v string) {
		if v != "" {
			o = append(o, Field{Key: k, Value: v})
		}
	}
	addFloat := func(k string, v *float64) {
		if v != nil {
			o = append(o, Field{Key: k, Value: *v})
		}
	}
	addStrings("coords", m.Coords)
	addStrings("variables", m.Variables)
	addString("time_variable", m.TimeVariable)
	addString("lon_variable", m.LonVariable)
	addString("lat_variable", m.LatVariable)
	addFloat("geospatial_lon_min", m.LonMin)
	addFloat("geospatial_lon_max", m.LonMax)
	addFloat("geospatial_lat_min", m.LatMin)
	addFloat("geospatial_lat_max", m.LatMax)
	addString("time_coverage_start", m.TimeStart)
	addString("time_coverage_end", m.TimeEnd)

	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o = append(o, Field{Key: k, Value: m.Extra[k]})
	}
	return o
}

// Bounds returns the horizontal extent of the file, or nil if any of
// the four bounds is missing.
func (m *Metadata) Bounds() *geom.Bounds {
	if m.LonMin == nil || m.LonMax == nil || m.LatMin == nil || m.LatMax == nil {
		return nil
	}
	return &geom.Bounds{
		Min: geom.Point{X: *m.LonMin, Y: *m.LatMin},
		Max: geom.Point{X: *m.LonMax, Y: *m.LatMax},
	}
}

// TimeRange parses the time coverage of the file. ok is false when the
// coverage is empty or is not expressed as timestamps.
func (m *Metadata) TimeRange() (start, end time.Time, ok bool) {
	if m.TimeStart == "" || m.TimeEnd == "" {
		return
	}
	var err error
	if start, err = ParseTime(m.TimeStart); err != nil {
		return time.Time{}, time.Time{}, false
	}
	if end, err = ParseTime(m.TimeEnd); err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func float64Ptr(v float64) *float64 { return &v }
