package hwpdoc

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/twkang/hanmaru/model"
)

// Control ids carried in the first word of a ctrl-header record. The id
// is four ASCII bytes packed big-endian into a little-endian word.
func makeCtrlID(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

var (
	ctrlIDTable       = makeCtrlID('t', 'b', 'l', ' ')
	ctrlIDShapeObject = makeCtrlID('g', 's', 'o', ' ')
	ctrlIDSectionDef  = makeCtrlID('s', 'e', 'c', 'd')
	ctrlIDColumnDef   = makeCtrlID('c', 'o', 'l', 'd')
)

// Table record layout: attribute word, then row and column counts.
const (
	tableMinLen     = 8
	tableRowsOffset = 4
	tableColsOffset = 6
)

// Cell list-header layout: the span pair of a table cell.
const (
	cellColSpanOffset = 22
	cellRowSpanOffset = 24
	cellPropMinLen    = 26
)

// Picture shape-component layout: borders, coordinates, crop and margin
// fields total 68 bytes, followed by brightness, contrast and effect
// bytes, then the bin-data item id.
const (
	picBinIDOffset = 71
	picMinLen      = 73
)

type frameKind uint8

const (
	frameSection frameKind = iota
	frameTable
	frameCell
	frameObject
	frameCtrl
)

// frame is one level of open structural context. The bottom frame is the
// section body; tables, cells, embedded objects and other controls stack
// above it and close when the record level returns to the level at which
// they opened.
type frame struct {
	kind   frameKind
	level  uint16
	blocks []model.Block
	para   *paraState

	table *tableBuild // frameTable
	cell  *cellBuild  // frameCell

	resourceID string // frameObject, once a picture component is seen
}

type paraState struct {
	items []textItem
	refs  []styleRef
}

type tableBuild struct {
	rows, cols int
	cells      []*cellBuild
}

type cellBuild struct {
	rowSpan, colSpan int
	blocks           []model.Block
}

type builder struct {
	stack    []*frame
	warnings []string
}

// buildSection assembles the blocks of one decompressed section stream.
// A truncated stream is not fatal: everything decoded before the
// truncation point is returned along with the error.
func buildSection(data []byte) ([]model.Block, []string, error) {
	b := &builder{stack: []*frame{{kind: frameSection}}}
	rr := NewRecordReader(data)
	for {
		rec, ok := rr.Next()
		if !ok {
			break
		}
		b.closeContexts(rec.Level)
		b.dispatch(rec)
	}
	for len(b.stack) > 1 {
		b.closeTop()
	}
	b.finishPara(b.top())
	return b.top().blocks, b.warnings, rr.Err()
}

func (b *builder) top() *frame {
	return b.stack[len(b.stack)-1]
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// closeContexts pops every open context whose opening level the incoming
// record has returned to or above.
func (b *builder) closeContexts(level uint16) {
	for len(b.stack) > 1 && level <= b.top().level {
		b.closeTop()
	}
}

func (b *builder) closeTop() {
	f := b.top()
	b.finishPara(f)
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.top()
	switch f.kind {
	case frameTable:
		parent.blocks = append(parent.blocks, b.finalizeTable(f.table))
	case frameCell:
		f.cell.blocks = f.blocks
		// reattach to the owning table, which sits directly below
		if parent.kind == frameTable {
			parent.table.cells = append(parent.table.cells, f.cell)
		} else {
			b.warnf("table cell closed outside a table context")
		}
	case frameObject:
		if f.resourceID != "" {
			parent.blocks = append(parent.blocks, &model.ObjectRef{ResourceID: f.resourceID})
		}
		parent.blocks = append(parent.blocks, f.blocks...)
	case frameCtrl:
		// headers, footers, notes and unrecognized controls keep their
		// text in reading order
		parent.blocks = append(parent.blocks, f.blocks...)
	}
}

func (b *builder) push(f *frame) {
	b.stack = append(b.stack, f)
}

func (b *builder) dispatch(rec Record) {
	switch rec.Tag {
	case TagParaHeader:
		b.finishPara(b.top())
		b.top().para = &paraState{}
	case TagParaText:
		f := b.top()
		if f.para == nil {
			f.para = &paraState{}
		}
		f.para.items = decodeParaText(rec.Data)
	case TagParaCharShape:
		f := b.top()
		if f.para == nil {
			f.para = &paraState{}
		}
		f.para.refs = parseParaCharShape(rec.Data)
	case TagCtrlHeader:
		// the anchoring paragraph ends here so the control's block
		// lands after it in reading order
		b.finishPara(b.top())
		b.openCtrl(rec)
	case TagTable:
		f := b.top()
		if f.kind != frameTable {
			b.warnf("table record outside a table control")
			return
		}
		if len(rec.Data) < tableMinLen {
			b.warnf("table record too short: %d bytes", len(rec.Data))
			return
		}
		f.table.rows = int(binary.LittleEndian.Uint16(rec.Data[tableRowsOffset:]))
		f.table.cols = int(binary.LittleEndian.Uint16(rec.Data[tableColsOffset:]))
	case TagListHeader:
		if b.top().kind == frameTable {
			b.openCell(rec)
		}
		// list headers outside a table (header/footer bodies, notes)
		// carry no content of their own
	case TagShapeComponentPicture:
		b.attachPicture(rec)
	case TagParaLineSeg, TagParaRangeTag, TagPageDef, TagFootnoteShape,
		TagPageBorderFill, TagShapeComponent, TagShapeComponentLine,
		TagShapeComponentRect, TagCtrlData:
		// layout-only records
	default:
		b.top().blocks = append(b.top().blocks, &model.Unknown{Tag: rec.Tag})
	}
}

func (b *builder) openCtrl(rec Record) {
	if len(rec.Data) < 4 {
		b.warnf("control header too short: %d bytes", len(rec.Data))
		return
	}
	switch id := binary.LittleEndian.Uint32(rec.Data); id {
	case ctrlIDTable:
		b.push(&frame{kind: frameTable, level: rec.Level, table: &tableBuild{}})
	case ctrlIDShapeObject:
		b.push(&frame{kind: frameObject, level: rec.Level})
	case ctrlIDSectionDef, ctrlIDColumnDef:
		// page and column geometry, no list content
	default:
		b.push(&frame{kind: frameCtrl, level: rec.Level})
	}
}

func (b *builder) openCell(rec Record) {
	cell := &cellBuild{rowSpan: 1, colSpan: 1}
	if len(rec.Data) >= cellPropMinLen {
		if n := int(binary.LittleEndian.Uint16(rec.Data[cellColSpanOffset:])); n > 1 {
			cell.colSpan = n
		}
		if n := int(binary.LittleEndian.Uint16(rec.Data[cellRowSpanOffset:])); n > 1 {
			cell.rowSpan = n
		}
	}
	b.push(&frame{kind: frameCell, level: rec.Level, cell: cell})
}

func (b *builder) attachPicture(rec Record) {
	if len(rec.Data) < picMinLen {
		b.warnf("picture component too short: %d bytes", len(rec.Data))
		return
	}
	id := int(binary.LittleEndian.Uint16(rec.Data[picBinIDOffset:]))
	if id == 0 {
		return
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].kind == frameObject {
			b.stack[i].resourceID = model.NewResourceID(id)
			return
		}
	}
	// a picture with no enclosing object control still yields a
	// reference at the current position
	b.top().blocks = append(b.top().blocks, &model.ObjectRef{ResourceID: model.NewResourceID(id)})
}

// finishPara converts the frame's open paragraph state into Paragraph
// blocks. A paragraph-break item splits the text; an anchor forces a run
// boundary without emitting anything. Segments that decode to no runs
// are dropped.
func (b *builder) finishPara(f *frame) {
	p := f.para
	if p == nil {
		return
	}
	f.para = nil

	var runs []model.StyledRun
	var buf []rune
	curStyle := model.DefaultStyle
	flush := func() {
		if len(buf) > 0 {
			runs = append(runs, model.StyledRun{Text: string(buf), StyleID: curStyle})
			buf = buf[:0]
		}
	}
	endParagraph := func() {
		flush()
		if len(runs) > 0 {
			f.blocks = append(f.blocks, &model.Paragraph{Runs: runs})
			runs = nil
		}
	}
	for _, it := range p.items {
		switch it.kind {
		case itemParaBreak:
			endParagraph()
		case itemAnchor:
			flush()
		case itemRune:
			if s := styleAt(it.pos, p.refs); s != curStyle {
				flush()
				curStyle = s
			}
			buf = append(buf, it.r)
		}
	}
	endParagraph()
}

// finalizeTable places declared cells into the announced grid. Cells go
// left to right, top to bottom into the first free coordinate; spans are
// clamped so no two cells overlap and nothing extends past the grid
// edge. Cells that do not fit grow the grid by whole rows, and any
// coordinate left uncovered gets an empty 1x1 cell, so that coverage of
// the result is exactly 1 everywhere.
func (b *builder) finalizeTable(t *tableBuild) *model.Table {
	rows, cols := t.rows, t.cols
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = len(t.cells)
		if rows == 0 {
			rows = 1
		}
	}
	if t.rows <= 0 || t.cols <= 0 {
		b.warnf("table missing grid declaration, assuming %dx%d", rows, cols)
	}

	type placed struct {
		row, col int
		cell     *cellBuild
	}
	occ := make(map[[2]int]bool, rows*cols)
	var placements []placed
	occupy := func(r, c, rs, cs int) {
		for i := r; i < r+rs; i++ {
			for j := c; j < c+cs; j++ {
				occ[[2]int{i, j}] = true
			}
		}
	}
	free := func(r, c int) bool { return !occ[[2]int{r, c}] }

	next := 0 // row-major scan position, cells never move backwards
	for _, cell := range t.cells {
		r, c := -1, -1
		for k := next; k < rows*cols; k++ {
			if free(k/cols, k%cols) {
				r, c, next = k/cols, k%cols, k
				break
			}
		}
		if r < 0 {
			// declared more cells than the grid holds
			b.warnf("table cell overflow, growing grid to %d rows", rows+1)
			rows++
			r, c = rows-1, 0
		}
		cs := cell.colSpan
		if cs > cols-c {
			cs = cols - c
		}
		for j := c + 1; j < c+cs; j++ {
			if !free(r, j) {
				cs = j - c
				break
			}
		}
		rs := cell.rowSpan
		if rs > rows-r {
			rs = rows - r
		}
	clampRows:
		for i := r + 1; i < r+rs; i++ {
			for j := c; j < c+cs; j++ {
				if !free(i, j) {
					rs = i - r
					break clampRows
				}
			}
		}
		if cs != cell.colSpan || rs != cell.rowSpan {
			b.warnf("table cell span clamped from %dx%d to %dx%d", cell.rowSpan, cell.colSpan, rs, cs)
		}
		cell.rowSpan, cell.colSpan = rs, cs
		occupy(r, c, rs, cs)
		placements = append(placements, placed{row: r, col: c, cell: cell})
	}

	filled := false
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if free(r, c) {
				occupy(r, c, 1, 1)
				placements = append(placements, placed{row: r, col: c, cell: &cellBuild{rowSpan: 1, colSpan: 1}})
				filled = true
			}
		}
	}
	if filled {
		b.warnf("table grid had uncovered cells, padded with empty cells")
	}

	tbl := &model.Table{Rows: make([]model.TableRow, rows)}
	byRow := make([][]placed, rows)
	for _, p := range placements {
		byRow[p.row] = append(byRow[p.row], p)
	}
	for r := 0; r < rows; r++ {
		row := byRow[r]
		sort.Slice(row, func(i, j int) bool { return row[i].col < row[j].col })
		cells := make([]model.TableCell, 0, len(row))
		for _, p := range row {
			cells = append(cells, model.TableCell{
				Blocks:  p.cell.blocks,
				RowSpan: p.cell.rowSpan,
				ColSpan: p.cell.colSpan,
			})
		}
		tbl.Rows[r] = model.TableRow{Cells: cells}
	}
	return tbl
}
