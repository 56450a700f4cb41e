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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oceandata/odg/internal/hash"
	"github.com/sirupsen/logrus"
)

// ErrNoSources is returned by Ensure when the catalog does not exist
// and there are no data files to build it from.
var ErrNoSources = errors.New("catalog: catalog does not exist and no data files were given")

// Open reads the catalog document at path.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening catalog: %w", err)
	}
	defer f.Close()
	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return New(path, entries)
}

// Ensure returns the catalog at path, first building it from files if
// it does not exist. An existing catalog is never modified, even if
// files differ from the ones it was built from.
func Ensure(path string, files []string, log logrus.FieldLogger) (*Catalog, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		log.WithField("catalog", path).Info("catalog: using existing catalog")
		return Open(path)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("catalog: %w", err)
	case len(files) == 0:
		return nil, ErrNoSources
	}

	b, err := Build(files, log)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("catalog: creating catalog directory: %w", err)
	}
	w, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		// Created by someone else since we checked.
		return Open(path)
	} else if err != nil {
		return nil, fmt.Errorf("catalog: creating catalog: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		w.Close()
		os.Remove(path)
		return nil, fmt.Errorf("catalog: writing catalog: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("catalog: writing catalog: %w", err)
	}
	log.WithFields(logrus.Fields{
		"catalog":  path,
		"datasets": len(files),
	}).Info("catalog: wrote catalog")
	return Open(path)
}

// DefaultPath returns a catalog location in dir whose name is derived
// from now and the current process identifier.
func DefaultPath(dir string, now time.Time) string {
	key := struct {
		Time time.Time
		PID  int
	}{Time: now, PID: os.Getpid()}
	return filepath.Join(dir, fmt.Sprintf("catalog_%s.yml", hash.Short(key, 7)))
}
