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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/oceandata/odg/catalog"
	"github.com/oceandata/odg/dataset"
	"github.com/oceandata/odg/dataset/datasettest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const testCSV = `longitude,latitude,time,temp
-70,40,2020-01-01T00:00:00Z,12.1
-67.5,41,2020-01-03T00:00:00Z,11.9
-65,42,2020-01-05T00:00:00Z,11.5
`

func testGrid() datasettest.Grid {
	return datasettest.Grid{
		Dims:    []string{"time", "lat", "lon"},
		Lengths: []int{2, 2, 2},
		Vars: []datasettest.Var{
			{Name: "time", Dims: []string{"time"}, Values: []float64{0, 24},
				Attrs: []datasettest.Attr{
					{Name: "standard_name", Value: "time"},
					{Name: "units", Value: "hours since 2020-01-01"},
				}},
			{Name: "lat", Dims: []string{"lat"}, Values: []float64{40.5, 41.5},
				Attrs: []datasettest.Attr{{Name: "standard_name", Value: "latitude"}}},
			{Name: "lon", Dims: []string{"lon"}, Values: []float64{-69, -68},
				Attrs: []datasettest.Attr{{Name: "standard_name", Value: "longitude"}}},
			{Name: "sea_water_temperature", Dims: []string{"time", "lat", "lon"},
				Values: []float64{10, 11, 12, 13, 14, 15, 16, 17}},
		},
	}
}

// testFiles writes a.csv and b.nc to a new directory and returns their
// paths.
func testFiles(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	a, err := datasettest.WriteCSV(dir, "a.csv", testCSV)
	if err != nil {
		t.Fatal(err)
	}
	b, err := datasettest.WriteGrid(dir, "b.nc", testGrid())
	if err != nil {
		t.Fatal(err)
	}
	return []string{a, b}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	log, _ := test.NewNullLogger()
	return Options{
		Files:      testFiles(t),
		CatalogDir: filepath.Join(t.TempDir(), "catalogs"),
		Log:        log,
	}
}

func TestRegion_scenario(t *testing.T) {
	r, err := NewRegion(RegionOptions{Options: testOptions(t)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "local" || r.Approach() != Region || !r.Parallel() {
		t.Errorf("name %s, approach %s, parallel %v", r.Name(), r.Approach(), r.Parallel())
	}
	if r.TimeWindow() != DefaultTimeWindow() {
		t.Errorf("time window %v", r.TimeWindow())
	}
	ids, err := r.DatasetIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"a.csv", "b.nc"}) {
		t.Errorf("ids: %v", ids)
	}
	if _, err := os.Stat(r.CatalogLocation()); err != nil {
		t.Errorf("catalog not written: %v", err)
	}

	meta, err := r.MetaTable()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(meta.Index, ids) {
		t.Errorf("meta index: %v", meta.Index)
	}
	v, ok := meta.Value("a.csv", "geospatial_lon_min")
	if !ok || v != -70.0 {
		t.Errorf("a.csv geospatial_lon_min = %v, %v", v, ok)
	}
	v, ok = meta.Value("b.nc", "time_coverage_end")
	if !ok || v != "2020-01-02T00:00:00Z" {
		t.Errorf("b.nc time_coverage_end = %v, %v", v, ok)
	}
	if _, ok := meta.Value("a.csv", "lon_variable"); ok {
		t.Error("a.csv should have no lon_variable")
	}
	if meta2, _ := r.MetaTable(); meta2 != meta {
		t.Error("meta table should be computed once")
	}

	e, err := r.EntryFor("b.nc")
	if err != nil {
		t.Fatal(err)
	}
	if e.Metadata.TimeVariable != "time" {
		t.Errorf("time variable %s", e.Metadata.TimeVariable)
	}

	data, err := r.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tbl, ok := data["a.csv"].(*dataset.Table)
	if !ok || len(tbl.Rows) != 3 {
		t.Errorf("bad a.csv data %#v", data["a.csv"])
	}
	g, ok := data["b.nc"].(*dataset.Grid)
	if !ok {
		t.Fatalf("bad b.nc data %#v", data["b.nc"])
	}
	want := []float64{10, 11, 12, 13, 14, 15, 16, 17}
	if have := g.Variables["sea_water_temperature"].Data.Elements; !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

// A second reader on the same catalog location reuses the document.
func TestReader_reuseCatalog(t *testing.T) {
	o := testOptions(t)
	o.CatalogLocation = filepath.Join(t.TempDir(), "cat.yml")
	r1, err := NewStations(StationsOptions{Options: o})
	if err != nil {
		t.Fatal(err)
	}
	ids1, err := r1.DatasetIDs()
	if err != nil {
		t.Fatal(err)
	}
	b1, err := os.ReadFile(o.CatalogLocation)
	if err != nil {
		t.Fatal(err)
	}

	o.Files = o.Files[:1]
	r2, err := NewStations(StationsOptions{Options: o})
	if err != nil {
		t.Fatal(err)
	}
	ids2, err := r2.DatasetIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids1, ids2) {
		t.Errorf("%v != %v", ids2, ids1)
	}
	b2, err := os.ReadFile(o.CatalogLocation)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Error("catalog was rewritten")
	}
}

func TestReader_empty(t *testing.T) {
	log, hook := test.NewNullLogger()
	r, err := NewStations(StationsOptions{Options: Options{Log: log}})
	if err != nil {
		t.Fatal(err)
	}
	ids, err := r.DatasetIDs()
	if err != nil {
		t.Fatal(err)
	}
	if ids == nil || len(ids) != 0 {
		t.Errorf("ids should be empty, have %#v", ids)
	}
	if len(hook.Entries) != 1 || hook.LastEntry().Level != logrus.WarnLevel {
		t.Errorf("want one warning, have %v", hook.AllEntries())
	}
	meta, err := r.MetaTable()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Len() != 0 {
		t.Errorf("meta table has %d rows", meta.Len())
	}
	data, err := r.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("data has %d entries", len(data))
	}
	if r.CatalogLocation() != "" {
		t.Errorf("catalog location %s", r.CatalogLocation())
	}
}

func TestReader_missingCatalog(t *testing.T) {
	log, _ := test.NewNullLogger()
	r, err := NewStations(StationsOptions{Options: Options{
		CatalogLocation: filepath.Join(t.TempDir(), "missing.yml"),
		Log:             log,
	}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.DatasetIDs()
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, have %v", err)
	}
	if !errors.Is(err, catalog.ErrNoSources) {
		t.Errorf("want ErrNoSources, have %v", err)
	}
}

func TestReader_unknownID(t *testing.T) {
	r, err := NewStations(StationsOptions{Options: testOptions(t)})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.EntryFor("c.csv")
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("want NotFoundError, have %v", err)
	}
	if nfe.ID != "c.csv" {
		t.Errorf("%s != c.csv", nfe.ID)
	}
	if _, err := r.Load(context.Background(), "c.csv"); !errors.As(err, &nfe) {
		t.Errorf("want NotFoundError, have %v", err)
	}
}

func TestRegion_unknownVariable(t *testing.T) {
	_, err := NewRegion(RegionOptions{
		Options:   testOptions(t),
		Variables: []string{"sea_water_temperature", "fish_happiness"},
	})
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigurationError, have %v", err)
	}
	if ce.Field != "variables" || !strings.Contains(ce.Error(), "fish_happiness") {
		t.Errorf("bad error %v", ce)
	}
}

func TestRegion_variables(t *testing.T) {
	r, err := NewRegion(RegionOptions{
		Options:    testOptions(t),
		Variables:  []string{"temp"},
		Vocabulary: []string{"temp", "salt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Variables(), []string{"temp"}) {
		t.Errorf("variables: %v", r.Variables())
	}
	// Variables do not restrict what is loaded.
	data, err := r.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	g := data["b.nc"].(*dataset.Grid)
	if _, ok := g.Variables["sea_water_temperature"]; !ok {
		t.Error("variable should not have been filtered")
	}
}

func TestReader_malformed(t *testing.T) {
	corruptions := []struct {
		name    string
		corrupt func(path string) error
	}{
		{
			name: "garbage",
			corrupt: func(path string) error {
				return os.WriteFile(path, []byte("CDF\x01 truncated"), 0644)
			},
		},
		{
			name: "truncated",
			corrupt: func(path string) error {
				fi, err := os.Stat(path)
				if err != nil {
					return err
				}
				return os.Truncate(path, fi.Size()-3)
			},
		},
	}
	for _, c := range corruptions {
		for _, parallel := range []bool{true, false} {
			o := testOptions(t)
			o.Parallel = Bool(parallel)
			r, err := NewStations(StationsOptions{Options: o})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := r.Catalog(); err != nil {
				t.Fatal(err)
			}
			// Corrupt the gridded file after it has been cataloged.
			if err := c.corrupt(o.Files[1]); err != nil {
				t.Fatal(err)
			}
			data, err := r.Data(context.Background())
			var ble *BatchLoadError
			if !errors.As(err, &ble) {
				t.Fatalf("%s parallel=%v: want BatchLoadError, have %v", c.name, parallel, err)
			}
			if ble.ID != "b.nc" {
				t.Errorf("%s parallel=%v: %s != b.nc", c.name, parallel, ble.ID)
			}
			if data != nil {
				t.Errorf("%s parallel=%v: partial result %v", c.name, parallel, data)
			}
		}
	}
}

func TestReader_dataMemoized(t *testing.T) {
	r, err := NewStations(StationsOptions{Options: testOptions(t)})
	if err != nil {
		t.Fatal(err)
	}
	d1, err := r.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	d2, err := r.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d1["a.csv"] != d2["a.csv"] {
		t.Error("data should be loaded once")
	}

	// Each reader has its own cache.
	o := testOptions(t)
	o.CatalogLocation = r.CatalogLocation()
	r2, err := NewStations(StationsOptions{Options: o})
	if err != nil {
		t.Fatal(err)
	}
	d3, err := r2.Data(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d3["a.csv"] == d1["a.csv"] {
		t.Error("readers should not share data")
	}
	if diff := pretty.Diff(d3, d1); len(diff) != 0 {
		t.Errorf("data differ: %v", diff)
	}
}
