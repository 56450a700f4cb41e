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
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Column names required in tabular files.
const (
	LonColumn  = "longitude"
	LatColumn  = "latitude"
	TimeColumn = "time"
)

// Attribute values that mark a gridded coordinate as playing a role.
var (
	timeMarkers = map[string]bool{"time": true, "T": true}
	lonMarkers  = map[string]bool{"lon": true, "longitude": true, "X": true}
	latMarkers  = map[string]bool{"lat": true, "latitude": true, "Y": true}
)

// Extract reads the file at path and summarizes its contents.
func Extract(path string, f Format) (*Metadata, error) {
	switch f {
	case Tabular:
		t, err := ReadTable(path)
		if err != nil {
			return nil, err
		}
		return extractTable(path, t)
	case Gridded:
		g, err := ReadGrid(path)
		if err != nil {
			return nil, err
		}
		return extractGrid(g), nil
	default:
		return nil, &UnknownFormatError{Path: path}
	}
}

func extractTable(path string, t *Table) (*Metadata, error) {
	for _, c := range []string{LonColumn, LatColumn, TimeColumn} {
		if t.index(c) < 0 {
			return nil, &MissingColumnError{Path: path, Column: c}
		}
	}
	m := &Metadata{Variables: append([]string{}, t.Columns...)}
	lon, err := t.Floats(LonColumn)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	lat, err := t.Floats(LatColumn)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	m.LonMin, m.LonMax = minMax(lon)
	m.LatMin, m.LatMax = minMax(lat)
	times, err := t.Column(TimeColumn)
	if err != nil {
		return nil, err
	}
	m.TimeStart, m.TimeEnd = timeBounds(times)
	return m, nil
}

// timeBounds returns the earliest and latest of the non-empty values.
// When every value is a timestamp they are compared as times and
// rendered as RFC 3339; otherwise the raw text is compared.
func timeBounds(vals []string) (start, end string) {
	var raw []string
	for _, v := range vals {
		if v != "" {
			raw = append(raw, v)
		}
	}
	if len(raw) == 0 {
		return "", ""
	}
	var first, last time.Time
	parsed := true
	for i, v := range raw {
		t, err := ParseTime(v)
		if err != nil {
			parsed = false
			break
		}
		if i == 0 || t.Before(first) {
			first = t
		}
		if i == 0 || t.After(last) {
			last = t
		}
	}
	if parsed {
		return formatTime(first), formatTime(last)
	}
	sort.Strings(raw)
	return raw[0], raw[len(raw)-1]
}

func extractGrid(g *Grid) *Metadata {
	m := &Metadata{
		Coords:    append([]string{}, g.Coords...),
		Variables: g.VariableNames(),
	}
	m.TimeVariable = g.coordFor(timeMarkers)
	m.LonVariable = g.coordFor(lonMarkers)
	m.LatVariable = g.coordFor(latMarkers)

	if v := g.Variables[m.LonVariable]; v != nil && v.Data != nil {
		m.LonMin, m.LonMax = minMax(v.Data.Elements)
	}
	if v := g.Variables[m.LatVariable]; v != nil && v.Data != nil {
		m.LatMin, m.LatMax = minMax(v.Data.Elements)
	}
	if v := g.Variables[m.TimeVariable]; v != nil && v.Data != nil {
		var dec *timeDecoder
		if units, ok := v.Attributes["units"].(string); ok {
			dec, _ = newTimeDecoder(units)
		}
		if lo, hi := minMax(v.Data.Elements); lo != nil {
			// Values that cannot be represented leave the coverage empty.
			start, err1 := formatTimeValue(*lo, dec)
			end, err2 := formatTimeValue(*hi, dec)
			if err1 == nil && err2 == nil {
				m.TimeStart, m.TimeEnd = start, end
			}
		}
	}
	return m
}

// coordFor returns the coordinate carrying one of the given marker
// values in any of its string attributes. If several coordinates
// match, the first by name is returned.
func (g *Grid) coordFor(markers map[string]bool) string {
	var match []string
	for _, c := range g.Coords {
		for _, a := range g.Variables[c].Attributes {
			if s, ok := a.(string); ok && markers[s] {
				match = append(match, c)
				break
			}
		}
	}
	if len(match) == 0 {
		return ""
	}
	sort.Strings(match)
	return match[0]
}

// minMax returns the smallest and largest values in vals, ignoring NaN.
// Both are nil if there are no such values.
func minMax(vals []float64) (lo, hi *float64) {
	valid := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}
	return float64Ptr(floats.Min(valid)), float64Ptr(floats.Max(valid))
}
