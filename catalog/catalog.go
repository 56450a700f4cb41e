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

// Package catalog builds, stores and reads catalogs: YAML documents
// that list local data files together with a summary of each file's
// contents.
package catalog

import (
	"fmt"

	"github.com/oceandata/odg/dataset"
)

// Args holds the arguments a driver needs to open a data file.
type Args struct {
	URLPath string `yaml:"urlpath"`
}

// Entry describes one data file in a catalog.
type Entry struct {
	// ID is the key of the entry in the catalog: the base name of the
	// file.
	ID string `yaml:"-"`

	Description string            `yaml:"description"`
	Driver      string            `yaml:"driver"`
	Args        Args              `yaml:"args"`
	Metadata    *dataset.Metadata `yaml:"metadata"`
}

// Format returns the format of the file e describes.
func (e *Entry) Format() (dataset.Format, error) {
	f, err := dataset.ParseDriver(e.Driver)
	if err != nil {
		return 0, fmt.Errorf("catalog: entry %s: %w", e.ID, err)
	}
	return f, nil
}

// NotFoundError is returned when a dataset identifier is not present
// in a catalog.
type NotFoundError struct {
	ID      string
	Catalog string
}

func (e *NotFoundError) Error() string {
	if e.Catalog == "" {
		return fmt.Sprintf("catalog: dataset %q not found", e.ID)
	}
	return fmt.Sprintf("catalog: dataset %q not found in %s", e.ID, e.Catalog)
}

// Catalog is an ordered set of entries with unique identifiers.
type Catalog struct {
	path    string
	entries []*Entry
	index   map[string]*Entry
}

// New creates a catalog from entries, which must have unique, non-empty
// identifiers. path is the location the catalog was read from, if any.
func New(path string, entries []*Entry) (*Catalog, error) {
	c := &Catalog{
		path:    path,
		entries: entries,
		index:   make(map[string]*Entry, len(entries)),
	}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog: entry with empty identifier")
		}
		if _, ok := c.index[e.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate dataset identifier %q", e.ID)
		}
		c.index[e.ID] = e
	}
	return c, nil
}

// Path returns the location of the catalog document, or "" for a
// catalog that exists only in memory.
func (c *Catalog) Path() string { return c.path }

// Len returns the number of entries in c.
func (c *Catalog) Len() int { return len(c.entries) }

// IDs returns the entry identifiers in document order.
func (c *Catalog) IDs() []string {
	o := make([]string, len(c.entries))
	for i, e := range c.entries {
		o[i] = e.ID
	}
	return o
}

// Entries returns the entries in document order.
func (c *Catalog) Entries() []*Entry { return c.entries }

// Entry returns the entry with the given identifier.
func (c *Catalog) Entry(id string) (*Entry, error) {
	e, ok := c.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id, Catalog: c.path}
	}
	return e, nil
}
