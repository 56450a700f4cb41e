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

package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"
	"github.com/oceandata/odg/dataset"
	"github.com/oceandata/odg/dataset/datasettest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const testCSV = `longitude,latitude,time,temp
-70,40,2020-01-01T00:00:00Z,12.1
-68,42,2020-01-02T00:00:00Z,11.5
`

func testGrid() datasettest.Grid {
	return datasettest.Grid{
		Dims:    []string{"lat", "lon"},
		Lengths: []int{2, 2},
		Vars: []datasettest.Var{
			{Name: "lat", Dims: []string{"lat"}, Values: []float64{30, 31},
				Attrs: []datasettest.Attr{{Name: "standard_name", Value: "latitude"}}},
			{Name: "lon", Dims: []string{"lon"}, Values: []float64{-80, -79},
				Attrs: []datasettest.Attr{{Name: "standard_name", Value: "longitude"}}},
			{Name: "salt", Dims: []string{"lat", "lon"}, Values: []float64{35, 35.1, 35.2, 35.3}},
		},
	}
}

// testFiles writes a.csv and b.nc to a new directory.
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

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func TestBuild(t *testing.T) {
	files := testFiles(t)
	b, err := Build(files, nullLogger())
	if err != nil {
		t.Fatal(err)
	}
	entries, err := Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	c, err := New("", entries)
	if err != nil {
		t.Fatal(err)
	}
	if ids := c.IDs(); !reflect.DeepEqual(ids, []string{"a.csv", "b.nc"}) {
		t.Errorf("ids: %v", ids)
	}
	a, err := c.Entry("a.csv")
	if err != nil {
		t.Fatal(err)
	}
	if a.Driver != dataset.CSVDriver {
		t.Errorf("driver %s != %s", a.Driver, dataset.CSVDriver)
	}
	if a.Args.URLPath != files[0] {
		t.Errorf("urlpath %s != %s", a.Args.URLPath, files[0])
	}
	if *a.Metadata.LonMin != -70 {
		t.Errorf("geospatial_lon_min %v != -70", *a.Metadata.LonMin)
	}
	bn, err := c.Entry("b.nc")
	if err != nil {
		t.Fatal(err)
	}
	if f, err := bn.Format(); err != nil || f != dataset.Gridded {
		t.Errorf("format %v, %v", f, err)
	}
	if !reflect.DeepEqual(bn.Metadata.Variables, []string{"salt"}) {
		t.Errorf("variables: %v", bn.Metadata.Variables)
	}
}

func TestBuild_document(t *testing.T) {
	files := testFiles(t)
	b, err := Build(files[:1], nullLogger())
	if err != nil {
		t.Fatal(err)
	}
	want := `sources:
  a.csv:
    description: ""
    driver: csv
    args:
      urlpath: ` + files[0] + `
    metadata:
      variables:
        - longitude
        - latitude
        - time
        - temp
      geospatial_lon_min: -70
      geospatial_lon_max: -68
      geospatial_lat_min: 40
      geospatial_lat_max: 42
      time_coverage_start: "2020-01-01T00:00:00Z"
      time_coverage_end: "2020-01-02T00:00:00Z"
`
	if string(b) != want {
		t.Errorf("document mismatch:\n%s\n!=\n%s", b, want)
	}
}

func TestBuild_unknownFormat(t *testing.T) {
	files := testFiles(t)
	txt := filepath.Join(filepath.Dir(files[0]), "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Build(append(files, txt), nullLogger())
	var ufe *dataset.UnknownFormatError
	if !errors.As(err, &ufe) {
		t.Fatalf("want UnknownFormatError, have %v", err)
	}
}

func TestBuild_duplicateID(t *testing.T) {
	files := testFiles(t)
	dir2 := t.TempDir()
	a2, err := datasettest.WriteCSV(dir2, "a.csv", testCSV)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build([]string{files[0], a2}, nullLogger()); err == nil {
		t.Fatal("want an error for duplicate identifiers")
	}
}

func TestDecode_roundTrip(t *testing.T) {
	entries := []*Entry{
		{ID: "z.nc", Driver: "netcdf", Args: Args{URLPath: "/d/z.nc"}, Metadata: &dataset.Metadata{
			Coords:    []string{"time"},
			Variables: []string{"u", "v"},
			Extra:     map[string]interface{}{"institution": "WHOI"},
		}},
		{ID: "a.csv", Driver: "csv", Description: "surface drifters", Args: Args{URLPath: "/d/a.csv"},
			Metadata: &dataset.Metadata{Variables: []string{"longitude"}, LonMin: floatPtr(-1.5)}},
		{ID: "true", Driver: "csv", Args: Args{URLPath: "/d/true"}, Metadata: &dataset.Metadata{Variables: []string{}}},
	}
	var b bytes.Buffer
	if err := Encode(&b, entries); err != nil {
		t.Fatal(err)
	}
	have, err := Decode(&b)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, entries) {
		t.Errorf("round trip mismatch: %v", pretty.Diff(have, entries))
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestDecode_empty(t *testing.T) {
	for _, doc := range []string{"", "sources:\n", "sources: {}\n"} {
		entries, err := Decode(strings.NewReader(doc))
		if err != nil {
			t.Errorf("%q: %v", doc, err)
			continue
		}
		if len(entries) != 0 {
			t.Errorf("%q: %d entries", doc, len(entries))
		}
	}
	if _, err := Decode(strings.NewReader("sources: [a, b]\n")); err == nil {
		t.Error("want an error for a sequence of sources")
	}
}

func TestNew_duplicate(t *testing.T) {
	_, err := New("", []*Entry{{ID: "a.csv"}, {ID: "a.csv"}})
	if err == nil {
		t.Error("want an error for duplicate identifiers")
	}
}

func TestEntry_notFound(t *testing.T) {
	c, err := New("/tmp/cat.yml", []*Entry{{ID: "a.csv"}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Entry("b.nc")
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("want NotFoundError, have %v", err)
	}
	if nfe.ID != "b.nc" {
		t.Errorf("%s != b.nc", nfe.ID)
	}
}

func TestEnsure(t *testing.T) {
	files := testFiles(t)
	path := filepath.Join(t.TempDir(), "sub", "dir", "cat.yml")
	log, hook := test.NewNullLogger()

	c, err := Ensure(path, files, log)
	if err != nil {
		t.Fatal(err)
	}
	if c.Path() != path || c.Len() != 2 {
		t.Errorf("path %s, len %d", c.Path(), c.Len())
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "catalog: wrote catalog" {
		t.Errorf("missing log entry: %v", hook.AllEntries())
	}
	b1, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	info1, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	// A second call with different files must not rebuild.
	c2, err := Ensure(path, files[:1], log)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	info2, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) || !info1.ModTime().Equal(info2.ModTime()) {
		t.Error("existing catalog was modified")
	}
	if !reflect.DeepEqual(c.IDs(), c2.IDs()) {
		t.Errorf("ids %v != %v", c2.IDs(), c.IDs())
	}
}

func TestEnsure_noSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat.yml")
	if _, err := Ensure(path, nil, nullLogger()); !errors.Is(err, ErrNoSources) {
		t.Errorf("want ErrNoSources, have %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no catalog should have been written")
	}
}

func TestEnsure_buildFailure(t *testing.T) {
	files := testFiles(t)
	bad := filepath.Join(filepath.Dir(files[0]), "bad.csv")
	if err := os.WriteFile(bad, []byte("longitude,time\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cat.yml")
	_, err := Ensure(path, append(files, bad), nullLogger())
	var mce *dataset.MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("want MissingColumnError, have %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no catalog should have been written")
	}
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	p := DefaultPath("/tmp/odg/catalogs", now)
	if p != DefaultPath("/tmp/odg/catalogs", now) {
		t.Error("path is not stable")
	}
	name := filepath.Base(p)
	if !strings.HasPrefix(name, "catalog_") || !strings.HasSuffix(name, ".yml") || len(name) != len("catalog_")+7+len(".yml") {
		t.Errorf("bad catalog name %s", name)
	}
	if filepath.Dir(p) != "/tmp/odg/catalogs" {
		t.Errorf("bad directory %s", filepath.Dir(p))
	}
}
