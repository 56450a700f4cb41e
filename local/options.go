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
	"os"
	"path/filepath"
	"time"

	"github.com/oceandata/odg/dataset"
	"github.com/sirupsen/logrus"
)

// TimeWindow is the time range a Reader is interested in. It is
// recorded but not applied when data are loaded.
type TimeWindow struct {
	Min, Max time.Time
}

// DefaultTimeWindow spans 1900-01-01 through 2100-12-31.
func DefaultTimeWindow() TimeWindow {
	return TimeWindow{
		Min: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		Max: time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ParseTimeWindow parses a time window from its bounds. Empty bounds
// take their default values.
func ParseTimeWindow(min, max string) (TimeWindow, error) {
	w := DefaultTimeWindow()
	var err error
	if min != "" {
		if w.Min, err = dataset.ParseTime(min); err != nil {
			return w, &ConfigurationError{Field: "min_time", Value: min, Err: err}
		}
	}
	if max != "" {
		if w.Max, err = dataset.ParseTime(max); err != nil {
			return w, &ConfigurationError{Field: "max_time", Value: max, Err: err}
		}
	}
	if w.Max.Before(w.Min) {
		return w, &ConfigurationError{Field: "max_time", Value: max,
			Reason: fmt.Sprintf("before min_time %s", w.Min.Format(time.RFC3339))}
	}
	return w, nil
}

// IsZero reports whether w is unset.
func (w TimeWindow) IsZero() bool { return w.Min.IsZero() && w.Max.IsZero() }

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Min.Format(time.RFC3339), w.Max.Format(time.RFC3339))
}

// DefaultCatalogDir returns the directory that holds generated
// catalogs when no catalog location is given.
func DefaultCatalogDir() string {
	return filepath.Join(os.TempDir(), "odg", "catalogs")
}

// Options holds the settings shared by both kinds of Reader.
type Options struct {
	// Parallel specifies whether datasets are loaded concurrently.
	// The default is true.
	Parallel *bool

	// CatalogLocation is the path of the catalog document. An existing
	// document is reused; otherwise one is built from Files and written
	// there. If empty, a new name in CatalogDir is generated.
	CatalogLocation string

	// CatalogDir holds generated catalogs. It defaults to
	// DefaultCatalogDir().
	CatalogDir string

	// Files are the data files to catalog.
	Files []string

	// TimeWindow defaults to DefaultTimeWindow().
	TimeWindow TimeWindow

	// Log receives diagnostics. It defaults to logrus.StandardLogger().
	Log logrus.FieldLogger
}

// Bool returns a pointer to b, for use in Options.
func Bool(b bool) *bool { return &b }

func (o *Options) setDefaults() {
	if o.Parallel == nil {
		o.Parallel = Bool(true)
	}
	if o.CatalogDir == "" {
		o.CatalogDir = DefaultCatalogDir()
	}
	if o.TimeWindow.IsZero() {
		o.TimeWindow = DefaultTimeWindow()
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
}
