package grid

// FirstIndex is the coordinate of the first data row and data column.
// Row 1 and column 1 hold the header row and the row labels.
const FirstIndex = 2

// Matrix is the numeric body of a grid with the header row and label column
// removed. It is addressed with header-inclusive coordinates starting at
// FirstIndex; rows may be ragged.
type Matrix struct {
	cells [][]float64
}

// NewMatrix builds a matrix from dense data values, values[0][0] being the
// cell at (FirstIndex, FirstIndex). The input is copied.
func NewMatrix(values [][]float64) Matrix {
	cells := make([][]float64, len(values))
	for i, row := range values {
		cells[i] = append([]float64(nil), row...)
	}
	return Matrix{cells: cells}
}

// ToMatrix converts stored rows into a matrix. Row 0 is the header and is
// skipped; the first cell of every other row is its label and is skipped.
// Cells that are not numeric are read as 0.
func ToMatrix(rows []Row) Matrix {
	if len(rows) <= 1 {
		return Matrix{}
	}
	cells := make([][]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := row.Cells()
		data := make([]float64, 0, len(values))
		for i, v := range values {
			if i == 0 {
				continue
			}
			data = append(data, Numeric(v))
		}
		cells = append(cells, data)
	}
	return Matrix{cells: cells}
}

// NumRows returns the number of data rows.
func (m Matrix) NumRows() int {
	return len(m.cells)
}

// NumCols returns the width of the widest data row.
func (m Matrix) NumCols() int {
	width := 0
	for _, row := range m.cells {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// RowLen returns the width of one data row, or 0 when the row is absent.
func (m Matrix) RowLen(row int) int {
	i := row - FirstIndex
	if i < 0 || i >= len(m.cells) {
		return 0
	}
	return len(m.cells[i])
}

// At returns the value at (row, col). Coordinates outside the matrix read as 0.
func (m Matrix) At(row, col int) float64 {
	i, j := row-FirstIndex, col-FirstIndex
	if i < 0 || i >= len(m.cells) || j < 0 || j >= len(m.cells[i]) {
		return 0
	}
	return m.cells[i][j]
}

// Set replaces the value at (row, col) and reports whether the cell exists.
// The matrix never grows through Set.
func (m Matrix) Set(row, col int, value float64) bool {
	i, j := row-FirstIndex, col-FirstIndex
	if i < 0 || i >= len(m.cells) || j < 0 || j >= len(m.cells[i]) {
		return false
	}
	m.cells[i][j] = Numeric(value)
	return true
}

// Values returns a copy of the data values, values[0][0] being the cell at
// (FirstIndex, FirstIndex).
func (m Matrix) Values() [][]float64 {
	return NewMatrix(m.cells).cells
}

// Clone returns an independent copy of the matrix.
func (m Matrix) Clone() Matrix {
	return NewMatrix(m.cells)
}

// Equal reports whether both matrices hold the same shape and values.
func (m Matrix) Equal(other Matrix) bool {
	if len(m.cells) != len(other.cells) {
		return false
	}
	for i := range m.cells {
		if len(m.cells[i]) != len(other.cells[i]) {
			return false
		}
		for j := range m.cells[i] {
			if m.cells[i][j] != other.cells[i][j] {
				return false
			}
		}
	}
	return true
}

// ColumnHeaders returns the labels of the header row, including the blank
// corner cell.
func ColumnHeaders(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cells := rows[0].Cells()
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = Label(c)
	}
	return headers
}

// RowLabels returns the first cell of every data row.
func RowLabels(rows []Row) []string {
	if len(rows) <= 1 {
		return nil
	}
	labels := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := row.Cells()
		if len(cells) == 0 {
			labels = append(labels, "")
			continue
		}
		labels = append(labels, Label(cells[0]))
	}
	return labels
}

// ToRows writes a matrix back into the stored row shape. The header row and
// the row labels come from template, and data cells are stored under the
// template's own column keys. Rows or columns the template lacks get colN
// keys and blank labels. Template data cells the matrix does not cover are
// written as 0.
func ToRows(template []Row, m Matrix) []Row {
	dataRows := m.NumRows()
	if len(template)-1 > dataRows {
		dataRows = len(template) - 1
	}

	out := make([]Row, 0, dataRows+1)
	if len(template) > 0 {
		out = append(out, template[0].Clone())
	} else {
		header := Row{ColumnKey(1): ""}
		for c := 0; c < m.NumCols(); c++ {
			header[ColumnKey(c+FirstIndex)] = ""
		}
		out = append(out, header)
	}

	for i := 0; i < dataRows; i++ {
		var row Row
		if i+1 < len(template) {
			row = template[i+1].Clone()
		}
		if row == nil {
			row = Row{ColumnKey(1): ""}
		}
		keys := row.Keys()
		rowIndex := i + FirstIndex
		width := m.RowLen(rowIndex)
		if len(keys)-1 > width {
			width = len(keys) - 1
		}
		for c := 0; c < width; c++ {
			key := ColumnKey(c + FirstIndex)
			if c+1 < len(keys) {
				key = keys[c+1]
			}
			row[key] = m.At(rowIndex, c+FirstIndex)
		}
		out = append(out, row)
	}
	return out
}
