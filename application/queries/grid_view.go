package queries

import (
	"seds-backend/domain/core/grid"
	"seds-backend/domain/core/totals"
)

// GridView is a grid ready for presentation: labels, formatted cells and
// formatted totals alongside the raw numbers.
type GridView struct {
	AnswerEntry   string   `json:"answer_entry,omitempty"`
	Question      string   `json:"question,omitempty"`
	Label         string   `json:"label,omitempty"`
	ColumnHeaders []string `json:"column_headers"`
	RowLabels     []string `json:"row_labels"`

	Values [][]float64 `json:"values"`
	Cells  [][]string  `json:"cells"`

	Totals       totals.Result `json:"totals"`
	RowTotals    []string      `json:"row_totals"`
	ColumnTotals []string      `json:"column_totals"`
	GrandTotal   string        `json:"grand_total"`

	// ColumnSum is the sum of the column totals. It differs from the grand
	// total when external column totals were supplied.
	ColumnSum float64 `json:"column_sum"`

	Synthesized bool `json:"synthesized"`
	ReadOnly    bool `json:"read_only"`
}

// ViewOptions controls how BuildGridView formats and totals a grid.
type ViewOptions struct {
	Precision    int
	Synthesized  bool
	ColumnTotals []float64
	RowTotals    []float64
}

// BuildGridView projects stored rows onto a GridView.
func BuildGridView(rows []grid.Row, opts ViewOptions) GridView {
	m := grid.ToMatrix(rows)
	result := totals.Compute(m, totals.Options{
		Synthesized:  opts.Synthesized,
		ColumnTotals: opts.ColumnTotals,
		RowTotals:    opts.RowTotals,
	})

	values := m.Values()
	cells := make([][]string, len(values))
	for i, row := range values {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = grid.FormatForDisplay(v, opts.Precision)
		}
	}

	return GridView{
		ColumnHeaders: grid.ColumnHeaders(rows),
		RowLabels:     grid.RowLabels(rows),
		Values:        values,
		Cells:         cells,
		Totals:        result,
		RowTotals:     displayAll(result.RowTotals, opts.Precision),
		ColumnTotals:  displayAll(result.ColumnTotals, opts.Precision),
		GrandTotal:    totals.Display(result.GrandTotal, opts.Precision),
		ColumnSum:     result.ColumnSum(),
		Synthesized:   opts.Synthesized,
		ReadOnly:      opts.Synthesized,
	}
}

func displayAll(values []float64, precision int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = totals.Display(v, precision)
	}
	return out
}
