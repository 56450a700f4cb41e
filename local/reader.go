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

// Package local reads data from oceanographic files on the local file
// system. A Reader catalogs a set of CSV and netCDF files, summarizing
// the extent of each, and loads their contents on demand.
package local

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/oceandata/odg/catalog"
	"github.com/oceandata/odg/dataset"
	"github.com/sirupsen/logrus"
)

// Name identifies this kind of reader among other data sources.
const Name = "local"

// Approach is the way a Reader selects datasets.
type Approach string

const (
	// Region readers select datasets by spatial and temporal extent.
	Region Approach = "region"
	// Stations readers select datasets by identifier.
	Stations Approach = "stations"
)

// RegionOptions configures a region Reader.
type RegionOptions struct {
	Options

	// Bounds is the horizontal area of interest.
	Bounds *geom.Bounds

	// Variables, if set, are the variables of interest. Each must be in
	// Vocabulary. They are recorded but do not restrict what is loaded.
	Variables []string

	// Vocabulary lists the allowed variable names. It defaults to
	// StandardNames.
	Vocabulary []string
}

// StationsOptions configures a stations Reader. The identifiers are
// recorded but do not restrict which datasets are loaded.
type StationsOptions struct {
	Options

	DatasetIDs []string
	StationIDs []string
}

// Reader catalogs and loads local data files. Derived state (the
// catalog, metadata table and loaded data) is computed on first use
// and kept for the life of the Reader.
type Reader struct {
	approach        Approach
	parallel        bool
	window          TimeWindow
	catalogLocation string
	files           []string
	log             logrus.FieldLogger

	bounds     *geom.Bounds
	variables  []string
	datasetIDs []string
	stationIDs []string

	mu      sync.Mutex
	catalog *catalog.Catalog
	meta    *MetaTable
	data    map[string]dataset.Data
}

// NewRegion creates a Reader that selects data by region.
func NewRegion(o RegionOptions) (*Reader, error) {
	if bad := newVocabulary(o.Vocabulary).unknown(o.Variables); len(bad) > 0 {
		return nil, &ConfigurationError{
			Field:  "variables",
			Value:  strings.Join(bad, ", "),
			Reason: "not a recognized variable name",
		}
	}
	if o.Bounds != nil && (o.Bounds.Min.X > o.Bounds.Max.X || o.Bounds.Min.Y > o.Bounds.Max.Y) {
		return nil, &ConfigurationError{Field: "bounds", Value: *o.Bounds,
			Reason: "minimum is greater than maximum"}
	}
	r, err := newReader(o.Options, Region)
	if err != nil {
		return nil, err
	}
	r.bounds = o.Bounds
	r.variables = o.Variables
	return r, nil
}

// NewStations creates a Reader that selects data by dataset or station
// identifier.
func NewStations(o StationsOptions) (*Reader, error) {
	r, err := newReader(o.Options, Stations)
	if err != nil {
		return nil, err
	}
	r.datasetIDs = o.DatasetIDs
	r.stationIDs = o.StationIDs
	return r, nil
}

func newReader(o Options, a Approach) (*Reader, error) {
	o.setDefaults()
	r := &Reader{
		approach:        a,
		parallel:        *o.Parallel,
		window:          o.TimeWindow,
		catalogLocation: o.CatalogLocation,
		files:           o.Files,
		log:             o.Log,
	}
	if o.CatalogLocation == "" && len(o.Files) == 0 {
		r.log.WithFields(logrus.Fields{
			"reader":   Name,
			"approach": a,
		}).Warn("local: no datasets: neither a catalog location nor data files were given")
		c, err := catalog.New("", nil)
		if err != nil {
			return nil, err
		}
		r.catalog = c
		return r, nil
	}
	if r.catalogLocation == "" {
		r.catalogLocation = catalog.DefaultPath(o.CatalogDir, time.Now())
	} else if _, err := os.Stat(r.catalogLocation); err == nil {
		// An existing catalog is read right away.
		if _, err := r.Catalog(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Name returns the name of this kind of reader.
func (r *Reader) Name() string { return Name }

// Approach returns how r selects datasets.
func (r *Reader) Approach() Approach { return r.approach }

// Parallel returns whether r loads datasets concurrently.
func (r *Reader) Parallel() bool { return r.parallel }

// TimeWindow returns the time range r was configured with.
func (r *Reader) TimeWindow() TimeWindow { return r.window }

// CatalogLocation returns the path of r's catalog document, or "" if
// r has no datasets.
func (r *Reader) CatalogLocation() string { return r.catalogLocation }

// Files returns the data files r was configured with.
func (r *Reader) Files() []string { return r.files }

// Bounds returns the area of interest of a region Reader.
func (r *Reader) Bounds() *geom.Bounds { return r.bounds }

// Variables returns the variables requested from a region Reader.
func (r *Reader) Variables() []string { return r.variables }

// RequestedDatasetIDs returns the dataset identifiers given to a
// stations Reader.
func (r *Reader) RequestedDatasetIDs() []string { return r.datasetIDs }

// StationIDs returns the station identifiers given to a stations
// Reader.
func (r *Reader) StationIDs() []string { return r.stationIDs }

// Catalog returns r's catalog, building and writing it first if it
// does not exist.
func (r *Reader) Catalog() (*catalog.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalogLocked()
}

func (r *Reader) catalogLocked() (*catalog.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	c, err := catalog.Ensure(r.catalogLocation, r.files, r.log)
	if errors.Is(err, catalog.ErrNoSources) {
		return nil, &ConfigurationError{Field: "catalog_name", Value: r.catalogLocation, Err: err}
	} else if err != nil {
		return nil, err
	}
	r.catalog = c
	return c, nil
}

// DatasetIDs returns the identifiers of the datasets in r's catalog.
func (r *Reader) DatasetIDs() ([]string, error) {
	c, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	return c.IDs(), nil
}

// EntryFor returns the catalog entry for dataset id.
func (r *Reader) EntryFor(id string) (*catalog.Entry, error) {
	c, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	return c.Entry(id)
}

// MetaTable returns the metadata of r's datasets as a table. The table
// is empty if r has no datasets.
func (r *Reader) MetaTable() (*MetaTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meta != nil {
		return r.meta, nil
	}
	c, err := r.catalogLocked()
	if err != nil {
		return nil, err
	}
	r.meta = NewMetaTable(c)
	return r.meta, nil
}

// Load reads dataset id in full. The time window is not applied.
func (r *Reader) Load(ctx context.Context, id string) (dataset.Data, error) {
	c, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	_, d, err := Load(ctx, c, id)
	return d, err
}

// Data loads every dataset in r's catalog, concurrently if r is
// parallel. The result is kept for later calls; a failed load is not.
func (r *Reader) Data(ctx context.Context) (map[string]dataset.Data, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data != nil {
		return r.data, nil
	}
	c, err := r.catalogLocked()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	d, err := LoadAll(ctx, c, c.IDs(), r.parallel)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"datasets": len(d),
		"parallel": r.parallel,
		"duration": time.Since(start),
	}).Debug("local: loaded datasets")
	r.data = d
	return d, nil
}
