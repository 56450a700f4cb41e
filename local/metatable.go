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
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/oceandata/odg/catalog"
)

// DownloadURLColumn is the MetaTable column holding each dataset's
// location.
const DownloadURLColumn = "download_url"

// MetaTable is a tabular view of catalog metadata, with one row per
// dataset and one column per metadata key observed in any dataset.
type MetaTable struct {
	// Index holds the dataset identifiers in catalog order.
	Index []string
	// Columns holds DownloadURLColumn followed by the metadata keys,
	// sorted.
	Columns []string

	rows map[string]map[string]interface{}
}

// NewMetaTable creates a MetaTable from the entries of cat.
func NewMetaTable(cat *catalog.Catalog) *MetaTable {
	t := &MetaTable{
		Index:   cat.IDs(),
		Columns: []string{DownloadURLColumn},
		rows:    make(map[string]map[string]interface{}, cat.Len()),
	}
	keys := make(map[string]bool)
	for _, e := range cat.Entries() {
		row := map[string]interface{}{DownloadURLColumn: e.Args.URLPath}
		if e.Metadata != nil {
			for _, f := range e.Metadata.Fields() {
				row[f.Key] = f.Value
				keys[f.Key] = true
			}
		}
		t.rows[e.ID] = row
	}
	delete(keys, DownloadURLColumn)
	var cols []string
	for k := range keys {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	t.Columns = append(t.Columns, cols...)
	return t
}

// Len returns the number of rows in t.
func (t *MetaTable) Len() int { return len(t.Index) }

// Value returns the value in the given row and column. ok is false
// if the dataset has no value for the column.
func (t *MetaTable) Value(id, column string) (v interface{}, ok bool) {
	v, ok = t.rows[id][column]
	return
}

// Row returns the values for dataset id in column order, with nil for
// missing values. It returns nil if id is not in the table.
func (t *MetaTable) Row(id string) []interface{} {
	row, ok := t.rows[id]
	if !ok {
		return nil
	}
	o := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		o[i] = row[c]
	}
	return o
}

// WriteTo writes t to w as aligned text.
func (t *MetaTable) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", strings.Join(t.Columns, "\t"))
	for _, id := range t.Index {
		cells := make([]string, len(t.Columns))
		for i, v := range t.Row(id) {
			cells[i] = formatCell(v)
		}
		fmt.Fprintf(tw, "%s\t%s\n", id, strings.Join(cells, "\t"))
	}
	err := tw.Flush()
	return cw.n, err
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprint(x)
	}
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
