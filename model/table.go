package model

// Table represents a table with cells organized in rows. Cells carry spans,
// so rows may hold different numbers of cells; the builder guarantees that
// every coordinate of the declared grid is covered by exactly one cell's
// span.
type Table struct {
	Rows []TableRow
}

func (t *Table) Type() BlockType { return BlockTypeTable }

// TableRow is an ordered sequence of cells.
type TableRow struct {
	Cells []TableCell
}

// TableCell holds its own block sequence (cells may contain full paragraphs
// or nested tables) plus the number of grid rows and columns it occupies.
type TableCell struct {
	Blocks  []Block
	RowSpan int
	ColSpan int
}

// Text returns the cell's plain text with inner newlines collapsed.
func (c *TableCell) Text() string {
	doc := Document{Blocks: c.Blocks}
	return doc.Text()
}

// RowCount returns the number of declared grid rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// GridSize returns the table's bounding grid dimensions, accounting for
// spans.
func (t *Table) GridSize() (rows, cols int) {
	rows = len(t.Rows)
	occupied := make(map[[2]int]bool)
	for i, row := range t.Rows {
		col := 0
		for _, cell := range row.Cells {
			for occupied[[2]int{i, col}] {
				col++
			}
			rs, cs := cell.RowSpan, cell.ColSpan
			if rs < 1 {
				rs = 1
			}
			if cs < 1 {
				cs = 1
			}
			for r := i; r < i+rs; r++ {
				for c := col; c < col+cs; c++ {
					occupied[[2]int{r, c}] = true
					if r+1 > rows {
						rows = r + 1
					}
					if c+1 > cols {
						cols = c + 1
					}
				}
			}
			col += cs
		}
	}
	return rows, cols
}

// Coverage returns, for every coordinate of the bounding grid, how many cell
// spans cover it. A well-formed table has exactly 1 everywhere.
func (t *Table) Coverage() [][]int {
	rows, cols := t.GridSize()
	cover := make([][]int, rows)
	for i := range cover {
		cover[i] = make([]int, cols)
	}
	occupied := make(map[[2]int]bool)
	for i, row := range t.Rows {
		col := 0
		for _, cell := range row.Cells {
			for occupied[[2]int{i, col}] {
				col++
			}
			rs, cs := cell.RowSpan, cell.ColSpan
			if rs < 1 {
				rs = 1
			}
			if cs < 1 {
				cs = 1
			}
			for r := i; r < i+rs && r < rows; r++ {
				for c := col; c < col+cs && c < cols; c++ {
					cover[r][c]++
					occupied[[2]int{r, c}] = true
				}
			}
			col += cs
		}
	}
	return cover
}
