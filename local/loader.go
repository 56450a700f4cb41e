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
	"context"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/oceandata/odg/catalog"
	"github.com/oceandata/odg/dataset"
)

// Load reads the dataset with the given identifier in full, using the
// reader for the format recorded in its catalog entry. It returns the
// identifier along with the data so that results from concurrent calls
// can be matched up.
func Load(ctx context.Context, cat *catalog.Catalog, id string) (string, dataset.Data, error) {
	if err := ctx.Err(); err != nil {
		return id, nil, err
	}
	e, err := cat.Entry(id)
	if err != nil {
		return id, nil, err
	}
	f, err := e.Format()
	if err != nil {
		return id, nil, err
	}
	d, err := dataset.Read(e.Args.URLPath, f)
	if err != nil {
		return id, nil, err
	}
	return id, d, nil
}

type loadRequest struct {
	cat *catalog.Catalog
	id  string
}

// Loader loads batches of datasets on a fixed pool of workers. The
// workers live as long as the process.
type Loader struct {
	cache *requestcache.Cache
}

var (
	shared     *Loader
	sharedOnce sync.Once
)

// LoadAll loads the datasets in ids as (*Loader).LoadAll does. Parallel
// loads run on a pool shared by every caller in the process, with one
// worker per processor.
func LoadAll(ctx context.Context, cat *catalog.Catalog, ids []string, parallel bool) (map[string]dataset.Data, error) {
	if !parallel {
		return loadSequential(ctx, cat, ids)
	}
	sharedOnce.Do(func() {
		shared = NewLoader(runtime.GOMAXPROCS(-1))
	})
	return shared.LoadAll(ctx, cat, ids, true)
}

// NewLoader creates a Loader that loads up to workers datasets at a
// time.
func NewLoader(workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	return &Loader{
		cache: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			r := request.(loadRequest)
			_, d, err := Load(ctx, r.cat, r.id)
			return d, err
		}, workers),
	}
}

// LoadAll loads the datasets in ids. If parallel is true the datasets
// are loaded concurrently; otherwise they are loaded one at a time in
// order. Either way, the first failure aborts the batch and is returned
// as a *BatchLoadError, and no results are returned.
func (l *Loader) LoadAll(ctx context.Context, cat *catalog.Catalog, ids []string, parallel bool) (map[string]dataset.Data, error) {
	if !parallel {
		return loadSequential(ctx, cat, ids)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		id  string
		d   dataset.Data
		err error
	}
	uniq := unique(ids)
	results := make(chan result, len(uniq))
	for _, id := range uniq {
		go func(id string) {
			// The cache has no storage stages, so requests need no key.
			r, err := l.cache.NewRequest(ctx, loadRequest{cat: cat, id: id}, "").Result()
			d, _ := r.(dataset.Data)
			results <- result{id: id, d: d, err: err}
		}(id)
	}

	o := make(map[string]dataset.Data, len(uniq))
	var first *BatchLoadError
	for range uniq {
		r := <-results
		if r.err != nil {
			if first == nil {
				first = &BatchLoadError{ID: r.id, Err: r.err}
				cancel()
			}
			continue
		}
		o[r.id] = r.d
	}
	if first != nil {
		return nil, first
	}
	return o, nil
}

func loadSequential(ctx context.Context, cat *catalog.Catalog, ids []string) (map[string]dataset.Data, error) {
	o := make(map[string]dataset.Data, len(ids))
	for _, id := range ids {
		_, d, err := Load(ctx, cat, id)
		if err != nil {
			return nil, &BatchLoadError{ID: id, Err: err}
		}
		o[id] = d
	}
	return o, nil
}

// unique returns ids without repeats, in order.
func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	o := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			o = append(o, id)
		}
	}
	return o
}
