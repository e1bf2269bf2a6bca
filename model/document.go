package model

import "strings"

// Document is the root of the intermediate representation.
type Document struct {
	// Format identifies the source format ("hwp", "hwpx", "pdf").
	Format string

	Metadata Metadata

	// Blocks in document reading order. Readers never reorder blocks
	// relative to their source order.
	Blocks []Block

	// Resources holds extracted binary assets in extraction order.
	Resources []*Resource

	// Styles maps a style id to its character style. Runs reference
	// styles by id; DefaultStyle is the id for unstyled text.
	Styles map[int]CharStyle
}

// DefaultStyle is the style id used for runs with no character formatting.
const DefaultStyle = -1

// Metadata contains document-level information. All fields are optional.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
	Version  string
	// Custom holds source-specific properties that don't map to a
	// dedicated field.
	Custom map[string]string
}

// SplitKeywords splits a keyword field on the comma and semicolon
// separators source formats use, trimming whitespace and dropping empty
// entries.
func SplitKeywords(s string) []string {
	var out []string
	for _, kw := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// NewDocument creates an empty document for the given format tag.
func NewDocument(format string) *Document {
	return &Document{
		Format:   format,
		Metadata: Metadata{Custom: make(map[string]string)},
		Styles:   make(map[int]CharStyle),
	}
}

// AddBlock appends a block, preserving reading order.
func (d *Document) AddBlock(b Block) {
	d.Blocks = append(d.Blocks, b)
}

// Style returns the character style for an id, or the zero style if the id
// is unknown or DefaultStyle.
func (d *Document) Style(id int) CharStyle {
	if s, ok := d.Styles[id]; ok {
		return s
	}
	return CharStyle{}
}

// Resource returns the resource with the given id, or nil.
func (d *Document) Resource(id string) *Resource {
	for _, r := range d.Resources {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Text returns the plain text of the whole document: paragraphs separated by
// newlines, table cells separated by tabs. Unknown blocks contribute nothing.
func (d *Document) Text() string {
	var sb strings.Builder
	writeBlocksText(&sb, d.Blocks)
	return strings.TrimRight(sb.String(), "\n")
}

func writeBlocksText(sb *strings.Builder, blocks []Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			sb.WriteString(v.Text())
			sb.WriteString("\n")
		case *Table:
			for _, row := range v.Rows {
				for j, cell := range row.Cells {
					if j > 0 {
						sb.WriteString("\t")
					}
					var cellText strings.Builder
					writeBlocksText(&cellText, cell.Blocks)
					sb.WriteString(strings.TrimRight(strings.ReplaceAll(cellText.String(), "\n", " "), " "))
				}
				sb.WriteString("\n")
			}
		case *PageBreak:
			sb.WriteString("\n")
		}
	}
}

// Tables returns all tables in reading order, including tables nested in
// cells.
func (d *Document) Tables() []*Table {
	return collectTables(d.Blocks)
}

func collectTables(blocks []Block) []*Table {
	var tables []*Table
	for _, b := range blocks {
		t, ok := b.(*Table)
		if !ok {
			continue
		}
		tables = append(tables, t)
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				tables = append(tables, collectTables(cell.Blocks)...)
			}
		}
	}
	return tables
}
