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

package local

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/spf13/cast"
)

// Keys recognized by RegionFromMap and StationsFromMap. Other keys are
// ignored so that the same arguments can be passed to several kinds of
// reader.
const (
	ParallelKey    = "parallel"
	CatalogNameKey = "catalog_name"
	FilenamesKey   = "filenames"
	CatalogDirKey  = "catalog_dir"
	KWKey          = "kw"
	VariablesKey   = "variables"
	DatasetIDsKey  = "dataset_ids"
	StationsKey    = "stations"
)

// RegionFromMap creates a region Reader from loosely typed arguments.
// The "kw" key is required and holds the time window ("min_time",
// "max_time") and, optionally, the bounds ("min_lon", "max_lon",
// "min_lat", "max_lat").
func RegionFromMap(args map[string]interface{}) (*Reader, error) {
	o, err := optionsFromMap(args)
	if err != nil {
		return nil, err
	}
	if _, ok := args[KWKey]; !ok {
		return nil, &ConfigurationError{Field: KWKey, Reason: "required for a region reader"}
	}
	ro := RegionOptions{Options: o}
	if ro.Bounds, err = boundsFromMap(args[KWKey]); err != nil {
		return nil, err
	}
	if ro.Variables, err = stringList(VariablesKey, args[VariablesKey]); err != nil {
		return nil, err
	}
	return NewRegion(ro)
}

// StationsFromMap creates a stations Reader from loosely typed
// arguments.
func StationsFromMap(args map[string]interface{}) (*Reader, error) {
	o, err := optionsFromMap(args)
	if err != nil {
		return nil, err
	}
	so := StationsOptions{Options: o}
	if so.DatasetIDs, err = stringList(DatasetIDsKey, args[DatasetIDsKey]); err != nil {
		return nil, err
	}
	if so.StationIDs, err = stringList(StationsKey, args[StationsKey]); err != nil {
		return nil, err
	}
	return NewStations(so)
}

func optionsFromMap(args map[string]interface{}) (Options, error) {
	var o Options
	if v, ok := args[ParallelKey]; ok && v != nil {
		p, err := cast.ToBoolE(v)
		if err != nil {
			return o, &ConfigurationError{Field: ParallelKey, Value: v, Err: err}
		}
		o.Parallel = Bool(p)
	}
	var err error
	if o.CatalogLocation, err = stringValue(CatalogNameKey, args[CatalogNameKey]); err != nil {
		return o, err
	}
	if o.CatalogDir, err = stringValue(CatalogDirKey, args[CatalogDirKey]); err != nil {
		return o, err
	}
	if o.Files, err = stringList(FilenamesKey, args[FilenamesKey]); err != nil {
		return o, err
	}
	kw, err := kwMap(args[KWKey])
	if err != nil {
		return o, err
	}
	minT, err := stringValue("min_time", kw["min_time"])
	if err != nil {
		return o, err
	}
	maxT, err := stringValue("max_time", kw["max_time"])
	if err != nil {
		return o, err
	}
	o.TimeWindow, err = ParseTimeWindow(minT, maxT)
	return o, err
}

func kwMap(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, &ConfigurationError{Field: KWKey, Value: v, Reason: "must be a mapping"}
	}
	return m, nil
}

// boundsFromMap returns the bounds in kw, or nil if kw holds none of
// them. Either all four or none must be given.
func boundsFromMap(v interface{}) (*geom.Bounds, error) {
	kw, err := kwMap(v)
	if err != nil {
		return nil, err
	}
	keys := []string{"min_lon", "min_lat", "max_lon", "max_lat"}
	vals := make([]float64, len(keys))
	n := 0
	for i, k := range keys {
		x, ok := kw[k]
		if !ok || x == nil {
			continue
		}
		n++
		if vals[i], err = cast.ToFloat64E(x); err != nil {
			return nil, &ConfigurationError{Field: k, Value: x, Err: err}
		}
	}
	switch n {
	case 0:
		return nil, nil
	case len(keys):
		return &geom.Bounds{
			Min: geom.Point{X: vals[0], Y: vals[1]},
			Max: geom.Point{X: vals[2], Y: vals[3]},
		}, nil
	}
	return nil, &ConfigurationError{Field: KWKey, Value: v,
		Reason: "min_lon, min_lat, max_lon and max_lat must be given together"}
}

// stringValue converts a scalar argument to a string.
func stringValue(field string, v interface{}) (string, error) {
	switch v.(type) {
	case nil:
		return "", nil
	case []interface{}, []string, map[string]interface{}, map[interface{}]interface{}:
		return "", &ConfigurationError{Field: field, Value: v, Reason: "must be a single value"}
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &ConfigurationError{Field: field, Value: v, Err: err}
	}
	return s, nil
}

// stringList converts an argument that may be a single value or a
// sequence of values to a list of strings.
func stringList(field string, v interface{}) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	case []interface{}:
		o := make([]string, len(x))
		for i, e := range x {
			s, err := stringValue(field, e)
			if err != nil {
				return nil, &ConfigurationError{Field: field, Value: v,
					Reason: fmt.Sprintf("element %d must be a single value", i)}
			}
			o[i] = s
		}
		return o, nil
	}
	s, err := stringValue(field, v)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}
