// Package totals computes row, column and grand totals over a grid matrix.
//
// Totals are either summed from the matrix or, for synthesized grids, passed
// through from externally computed arrays. Every call recomputes from
// scratch; nothing is cached between edits.
package totals

import (
	"seds-backend/domain/core/grid"
)

// Options controls how totals are derived.
type Options struct {
	// Synthesized marks a grid whose values are derived from other tables.
	// Row totals are only taken from RowTotals when this is set.
	Synthesized bool

	// ColumnTotals, when non-empty, replaces the computed column totals.
	// Entry 0 is the first data column.
	ColumnTotals []float64

	// RowTotals holds externally computed row totals for synthesized grids.
	// Entry 0 is the first data row.
	RowTotals []float64
}

// Result holds one total per data row and per data column plus the grand
// total.
type Result struct {
	RowTotals    []float64 `json:"rowTotals"`
	ColumnTotals []float64 `json:"columnTotals"`
	GrandTotal   float64   `json:"grandTotal"`
}

// ColumnSum returns the sum of the column totals. It differs from GrandTotal
// when column totals were supplied externally.
func (r Result) ColumnSum() float64 {
	var sum float64
	for _, v := range r.ColumnTotals {
		sum += v
	}
	return sum
}

// ColumnTotals returns one total per data column and the grand total.
//
// When external is non-empty its values are used verbatim. The grand total
// is always the sum of every cell in the matrix, so with external column
// totals it need not equal the sum of the returned columns.
func ColumnTotals(m grid.Matrix, external []float64) ([]float64, float64) {
	cols := m.NumCols()
	totals := make([]float64, cols)
	var grand float64

	for r := 0; r < m.NumRows(); r++ {
		row := r + grid.FirstIndex
		for c := 0; c < m.RowLen(row); c++ {
			v := m.At(row, c+grid.FirstIndex)
			totals[c] += v
			grand += v
		}
	}

	if len(external) > 0 {
		totals = overlay(totals, external)
	}
	return totals, grand
}

// RowTotals returns one total per data row. Synthesized grids take the
// positional value from external where one exists; rows past the end of
// external, and all rows of other grids, are summed.
func RowTotals(m grid.Matrix, synthesized bool, external []float64) []float64 {
	totals := make([]float64, m.NumRows())
	for r := range totals {
		row := r + grid.FirstIndex
		var sum float64
		for c := 0; c < m.RowLen(row); c++ {
			sum += m.At(row, c+grid.FirstIndex)
		}
		totals[r] = sum
	}

	if synthesized && len(external) > 0 {
		totals = overlay(totals, external)
	}
	return totals
}

// Compute runs both passes. For synthesized grids with external row totals
// the grand total is the mean of those row totals, the figure shown in the
// corner cell of a cross-table average.
func Compute(m grid.Matrix, opts Options) Result {
	columns, grand := ColumnTotals(m, opts.ColumnTotals)
	rows := RowTotals(m, opts.Synthesized, opts.RowTotals)

	if opts.Synthesized && len(opts.RowTotals) > 0 {
		grand = mean(opts.RowTotals)
	}

	return Result{
		RowTotals:    rows,
		ColumnTotals: columns,
		GrandTotal:   grand,
	}
}

// Display renders a total for a totals cell. Totals that are zero or
// negative render as "0".
func Display(total float64, precision int) string {
	if !(total > 0) {
		return "0"
	}
	return grid.FormatForDisplay(total, precision)
}

// overlay copies external values over computed ones position by position.
// The result always has len(computed) entries; external values for rows or
// columns the grid lacks are dropped.
func overlay(computed, external []float64) []float64 {
	out := make([]float64, len(computed))
	copy(out, computed)
	for i, v := range external {
		if i >= len(out) {
			break
		}
		out[i] = grid.Numeric(v)
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += grid.Numeric(v)
	}
	return sum / float64(len(values))
}
