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

// Package odg gathers oceanographic data from multiple sources behind a
// common interface. Subpackages implement the individual readers; see
// package local for files on the local file system.
package odg

import (
	"context"

	"github.com/oceandata/odg/catalog"
	"github.com/oceandata/odg/dataset"
	"github.com/oceandata/odg/local"
)

// Version gives the version number.
const Version = "0.3.0"

// Reader is the interface implemented by data source readers.
type Reader interface {
	// Name identifies the kind of reader.
	Name() string

	// DatasetIDs returns the identifiers of the available datasets.
	DatasetIDs() ([]string, error)

	// EntryFor returns the catalog entry of one dataset.
	EntryFor(id string) (*catalog.Entry, error)

	// Load reads one dataset.
	Load(ctx context.Context, id string) (dataset.Data, error)

	// Data reads every available dataset.
	Data(ctx context.Context) (map[string]dataset.Data, error)
}

var _ Reader = &local.Reader{}
