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
	"fmt"
	"path/filepath"

	"github.com/oceandata/odg/dataset"
	"github.com/sirupsen/logrus"
)

// NewEntry summarizes the data file at path. The entry identifier is
// the file's base name.
func NewEntry(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	f, err := dataset.FormatFromPath(abs)
	if err != nil {
		return nil, err
	}
	m, err := dataset.Extract(abs, f)
	if err != nil {
		return nil, err
	}
	return &Entry{
		ID:       filepath.Base(abs),
		Driver:   f.String(),
		Args:     Args{URLPath: abs},
		Metadata: m,
	}, nil
}

// BuildEntries creates an entry for each of files, in order. Any
// failure aborts the build.
func BuildEntries(files []string, log logrus.FieldLogger) ([]*Entry, error) {
	entries := make([]*Entry, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		e, err := NewEntry(file)
		if err != nil {
			return nil, fmt.Errorf("catalog: building entry for %s: %w", file, err)
		}
		if prev, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("catalog: %s and %s would both have identifier %q",
				prev, e.Args.URLPath, e.ID)
		}
		seen[e.ID] = e.Args.URLPath
		log.WithFields(logrus.Fields{
			"id":     e.ID,
			"driver": e.Driver,
		}).Debug("catalog: summarized data file")
		entries = append(entries, e)
	}
	return entries, nil
}

// Build returns a catalog document describing files.
func Build(files []string, log logrus.FieldLogger) ([]byte, error) {
	entries, err := BuildEntries(files, log)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := Encode(&b, entries); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
