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

package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Dimension is a named netCDF dimension.
type Dimension struct {
	Name   string
	Length int
}

// Variable is one variable of a gridded file. Numeric variables are
// held in Data regardless of their on-disk type, with fill values set
// to NaN and any scale_factor and add_offset applied; character
// variables are held in Text.
type Variable struct {
	Dimensions []string
	Attributes map[string]interface{}
	Data       *sparse.DenseArray
	Text       string
}

// Grid holds the full contents of a gridded data file.
type Grid struct {
	Dimensions []Dimension
	Attributes map[string]interface{}

	// Names lists every variable in file order.
	Names []string
	// Coords lists the coordinate variables in file order.
	Coords    []string
	Variables map[string]*Variable
}

// Format helps fulfill the Data interface.
func (g *Grid) Format() Format { return Gridded }

// VariableNames helps fulfill the Data interface by returning the
// names of the data (non-coordinate) variables in file order.
func (g *Grid) VariableNames() []string {
	isCoord := make(map[string]bool, len(g.Coords))
	for _, c := range g.Coords {
		isCoord[c] = true
	}
	o := []string{}
	for _, n := range g.Names {
		if !isCoord[n] {
			o = append(o, n)
		}
	}
	return o
}

// findCoords sets the coordinate list of g. Coordinates are the
// variables defined over a single dimension of the same name, plus any
// variable named in another variable's "coordinates" attribute.
func (g *Grid) findCoords() {
	named := make(map[string]bool)
	for _, v := range g.Variables {
		if s, ok := v.Attributes["coordinates"].(string); ok {
			for _, c := range strings.Fields(s) {
				named[c] = true
			}
		}
	}
	g.Coords = []string{}
	for _, n := range g.Names {
		v := g.Variables[n]
		if named[n] || (len(v.Dimensions) == 1 && v.Dimensions[0] == n) {
			g.Coords = append(g.Coords, n)
		}
	}
}

var (
	classicMagic = []byte("CDF")
	hdf5Magic    = []byte("\x89HDF")
)

// ReadGrid reads a netCDF file. Classic (version 1 and 2) files are
// read with the CDF reader; 64-bit data (version 5) and netCDF-4/HDF5
// files are read with the native netCDF-4 reader.
func ReadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening gridded file: %w", err)
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("dataset: %s is not a netCDF file: %v", path, err)
	}
	var g *Grid
	switch {
	case bytes.HasPrefix(magic, classicMagic) && (magic[3] == 1 || magic[3] == 2):
		g, err = readClassic(f)
	case bytes.HasPrefix(magic, classicMagic), bytes.Equal(magic, hdf5Magic):
		g, err = readNetCDF4(path)
	default:
		return nil, fmt.Errorf("dataset: %s is not a netCDF file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: reading gridded file %s: %w", path, err)
	}
	g.findCoords()
	for _, v := range g.Variables {
		v.unpack()
	}
	return g, nil
}

// readClassic reads a netCDF classic file.
func readClassic(f *os.File) (*Grid, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, err
	}
	h := nc.Header
	numRecs := int(h.NumRecs(fi.Size()))
	if hdr, err := headerNumRecs(f); err != nil {
		return nil, err
	} else if hdr != streaming && hdr != numRecs {
		return nil, fmt.Errorf("file is truncated: header declares %d records but the file holds %d", hdr, numRecs)
	}

	g := &Grid{
		Attributes: classicAttributes(h, ""),
		Variables:  make(map[string]*Variable),
	}
	dims, lengths := h.Dimensions(""), h.Lengths("")
	for i, d := range dims {
		l := lengths[i]
		if l == 0 {
			l = numRecs
		}
		g.Dimensions = append(g.Dimensions, Dimension{Name: d, Length: l})
	}

	for _, name := range h.Variables() {
		shape := append([]int{}, h.Lengths(name)...)
		if h.IsRecordVariable(name) {
			shape[0] = numRecs
		}
		v := &Variable{
			Dimensions: h.Dimensions(name),
			Attributes: classicAttributes(h, name),
		}
		g.Names = append(g.Names, name)
		g.Variables[name] = v

		n := product(shape)
		_, isChar := h.ZeroValue(name, 0).(string)
		if n == 0 {
			if !isChar {
				v.Data = sparse.ZerosDense(shape...)
			}
			continue
		}
		var r cdf.Reader
		if h.IsRecordVariable(name) {
			begin, end := make([]int, len(shape)), make([]int, len(shape))
			for i, l := range shape {
				end[i] = l - 1
			}
			r = nc.Reader(name, begin, end)
		} else {
			r = nc.Reader(name, nil, nil)
		}
		buf := r.Zero(n)
		if got, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("reading variable %s: %w", name, err)
		} else if got != n {
			return nil, fmt.Errorf("reading variable %s: read %d of %d values", name, got, n)
		}
		if isChar {
			v.Text = strings.TrimRight(string(buf.([]byte)), "\x00")
			continue
		}
		var nums []float64
		if err := flatten(reflect.ValueOf(buf), &nums, nil); err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		v.Data = sparse.ZerosDense(shape...)
		copy(v.Data.Elements, nums)
	}
	return g, nil
}

// streaming is the numrecs header value of files whose record count
// must be derived from their size.
const streaming = -1

// headerNumRecs returns the record count stored in a classic file's
// header.
func headerNumRecs(f io.ReaderAt) (int, error) {
	var b [4]byte
	if _, err := f.ReadAt(b[:], 4); err != nil {
		return 0, fmt.Errorf("reading record count: %w", err)
	}
	return int(int32(binary.BigEndian.Uint32(b[:]))), nil
}

func classicAttributes(h *cdf.Header, v string) map[string]interface{} {
	o := make(map[string]interface{})
	for _, a := range h.Attributes(v) {
		o[a] = normalizeAttribute(h.GetAttribute(v, a))
	}
	return o
}

// readNetCDF4 reads a netCDF-4 (HDF5) or CDF-5 file.
func readNetCDF4(path string) (*Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	g := &Grid{
		Attributes: attributeMap(nc.Attributes()),
		Variables:  make(map[string]*Variable),
	}
	for _, d := range nc.ListDimensions() {
		l, _ := nc.GetDimension(d)
		g.Dimensions = append(g.Dimensions, Dimension{Name: d, Length: int(l)})
	}
	for _, name := range nc.ListVariables() {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vals, err := vg.Values()
		if err != nil {
			return nil, fmt.Errorf("reading variable %s: %w", name, err)
		}
		v := &Variable{
			Dimensions: vg.Dimensions(),
			Attributes: attributeMap(vg.Attributes()),
		}
		g.Names = append(g.Names, name)
		g.Variables[name] = v

		var nums []float64
		var strs []string
		if err := flatten(reflect.ValueOf(vals), &nums, &strs); err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		if len(strs) > 0 {
			v.Text = strings.Join(strs, "\n")
			continue
		}
		shape := dimShape(nc, v.Dimensions)
		if product(shape) != len(nums) {
			shape = valueShape(reflect.ValueOf(vals))
		}
		if product(shape) != len(nums) {
			return nil, fmt.Errorf("variable %s: %d values do not fit shape %v", name, len(nums), shape)
		}
		v.Data = sparse.ZerosDense(shape...)
		copy(v.Data.Elements, nums)
	}
	return g, nil
}

// dimShape returns the lengths of the named dimensions, or nil if any
// is not defined in nc.
func dimShape(nc api.Group, dims []string) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		l, ok := nc.GetDimension(d)
		if !ok {
			return nil
		}
		shape[i] = int(l)
	}
	return shape
}

// valueShape returns the lengths of the nested slices in v.
func valueShape(v reflect.Value) []int {
	var shape []int
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return shape
		}
		v = v.Elem()
	}
	for v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		shape = append(shape, v.Len())
		if v.Len() == 0 {
			break
		}
		v = v.Index(0)
	}
	return shape
}

func product(shape []int) int {
	n := 1
	for _, l := range shape {
		n *= l
	}
	return n
}

// unpack replaces the fill values of v with NaN and applies its
// scale_factor and add_offset attributes.
func (v *Variable) unpack() {
	if v.Data == nil {
		return
	}
	var fill []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		switch x := v.Attributes[a].(type) {
		case float64:
			fill = append(fill, x)
		case []float64:
			fill = append(fill, x...)
		}
	}
	scale, offset := 1.0, 0.0
	if x, ok := v.Attributes["scale_factor"].(float64); ok {
		scale = x
	}
	if x, ok := v.Attributes["add_offset"].(float64); ok {
		offset = x
	}
	for i, x := range v.Data.Elements {
		for _, f := range fill {
			if x == f {
				x = math.NaN()
				break
			}
		}
		v.Data.Elements[i] = x*scale + offset
	}
}

// provenanceKey names the attribute recording the software that wrote
// a netCDF-4 file. It is hidden from the attribute keys.
const provenanceKey = "_NCProperties"

func attributeMap(am api.AttributeMap) map[string]interface{} {
	o := make(map[string]interface{})
	if am == nil {
		return o
	}
	keys := append([]string{}, am.Keys()...)
	for _, k := range append(keys, provenanceKey) {
		if v, ok := am.Get(k); ok {
			o[k] = normalizeAttribute(v)
		}
	}
	return o
}

// normalizeAttribute converts an attribute value to a string, a float64
// (single numbers) or a []float64 (several numbers).
func normalizeAttribute(a interface{}) interface{} {
	if s, ok := a.(string); ok {
		return strings.TrimRight(s, "\x00")
	}
	var nums []float64
	var strs []string
	if err := flatten(reflect.ValueOf(a), &nums, &strs); err != nil {
		return a
	}
	switch {
	case len(strs) == 1 && len(nums) == 0:
		return strs[0]
	case len(strs) > 0:
		return strs
	case len(nums) == 1:
		return nums[0]
	}
	return nums
}

// flatten appends the numbers in v, which may be a scalar or a nested
// slice, to nums, and any strings to strs. strs may be nil if strings
// are not expected.
func flatten(v reflect.Value, nums *[]float64, strs *[]string) error {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := flatten(v.Index(i), nums, strs); err != nil {
				return err
			}
		}
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return flatten(v.Elem(), nums, strs)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		*nums = append(*nums, float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		*nums = append(*nums, float64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		*nums = append(*nums, v.Float())
	case reflect.String:
		if strs == nil {
			return fmt.Errorf("unexpected string value")
		}
		*strs = append(*strs, v.String())
	default:
		return fmt.Errorf("unsupported value type %s", v.Type())
	}
	return nil
}
