// Package grid turns the header-prefixed row objects stored with an answer
// record into a numeric matrix and back.
package grid

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// columnKeyPrefix is the prefix of every stored cell key (col1, col2, ...)
const columnKeyPrefix = "col"

// Row is one stored row object. Keys are column names such as "col1"; the
// object itself is unordered, so callers must go through Keys or Cells.
type Row map[string]interface{}

// Keys returns the row's column keys in display order. Keys of the form
// colN sort by N so that col10 follows col9; anything else sorts after them
// lexically.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := columnNumber(keys[i])
		nj, jok := columnNumber(keys[j])
		switch {
		case iok && jok:
			return ni < nj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Cells returns the row's values in display order.
func (r Row) Cells() []interface{} {
	keys := r.Keys()
	cells := make([]interface{}, len(keys))
	for i, k := range keys {
		cells[i] = r[k]
	}
	return cells
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ColumnKey returns the stored key for a 1-based column position.
func ColumnKey(position int) string {
	return columnKeyPrefix + strconv.Itoa(position)
}

func columnNumber(key string) (int, bool) {
	if !strings.HasPrefix(key, columnKeyPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(key[len(columnKeyPrefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Numeric coerces a stored cell to a finite number. Anything that is not a
// number or a numeric string (nil, labels, garbage, NaN, Inf) becomes 0.
func Numeric(v interface{}) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		return ParseInput(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Label renders a cell used as a header or row label.
func Label(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
