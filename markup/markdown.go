// Package markup renders parsed documents to markdown and emits the
// companion resource manifest.
package markup

import (
	"fmt"
	"strings"

	"github.com/twkang/hanmaru/model"
)

// Options control rendering.
type Options struct {
	// Source is the original file name recorded in front matter and the
	// manifest.
	Source string
	// AssetDir is the directory image references point into. Defaults
	// to "assets".
	AssetDir string
	// NoFrontMatter suppresses the YAML front-matter block.
	NoFrontMatter bool
}

func (o Options) assetDir() string {
	if o.AssetDir == "" {
		return "assets"
	}
	return o.AssetDir
}

// Render writes the document as markdown. Paragraph styles become
// emphasis markers, tables become pipe tables and object references
// become image links into the asset directory. Unknown blocks are
// never rendered.
func Render(doc *model.Document, opts Options) string {
	var sb strings.Builder
	if !opts.NoFrontMatter {
		writeFrontMatter(&sb, doc, opts)
	}
	first := true
	for _, blk := range doc.Blocks {
		var rendered string
		switch b := blk.(type) {
		case *model.Paragraph:
			rendered = renderParagraph(doc, b)
		case *model.Table:
			rendered = renderTable(doc, b, opts)
		case *model.ObjectRef:
			rendered = renderObjectRef(doc, b, opts)
		case *model.PageBreak:
			rendered = "---"
		}
		if rendered == "" {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		sb.WriteString(rendered)
		sb.WriteString("\n")
		first = false
	}
	return sb.String()
}

func writeFrontMatter(sb *strings.Builder, doc *model.Document, opts Options) {
	sb.WriteString("---\n")
	fmt.Fprintf(sb, "format: %s\n", doc.Format)
	if opts.Source != "" {
		fmt.Fprintf(sb, "source: %s\n", yamlString(opts.Source))
	}
	if doc.Metadata.Title != "" {
		fmt.Fprintf(sb, "title: %s\n", yamlString(doc.Metadata.Title))
	}
	if doc.Metadata.Author != "" {
		fmt.Fprintf(sb, "author: %s\n", yamlString(doc.Metadata.Author))
	}
	if doc.Metadata.Subject != "" {
		fmt.Fprintf(sb, "subject: %s\n", yamlString(doc.Metadata.Subject))
	}
	if len(doc.Metadata.Keywords) > 0 {
		fmt.Fprintf(sb, "keywords: %s\n", yamlString(strings.Join(doc.Metadata.Keywords, ", ")))
	}
	sb.WriteString("---\n\n")
}

// yamlString quotes a scalar when it contains characters that would
// change its YAML meaning.
func yamlString(s string) string {
	if strings.ContainsAny(s, ":#\"'\n[]{}") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func renderParagraph(doc *model.Document, p *model.Paragraph) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		sb.WriteString(styledText(run.Text, doc.Style(run.StyleID)))
	}
	return strings.TrimRight(sb.String(), " \t")
}

// styledText wraps text in emphasis markers, innermost first: strikeout,
// then bold and italic, then underline on the outside.
func styledText(text string, style model.CharStyle) string {
	if text == "" || strings.TrimSpace(text) == "" {
		return text
	}
	if style.Strikeout {
		text = "~~" + text + "~~"
	}
	if style.Bold && style.Italic {
		text = "***" + text + "***"
	} else if style.Bold {
		text = "**" + text + "**"
	} else if style.Italic {
		text = "*" + text + "*"
	}
	if style.Underline {
		text = "<u>" + text + "</u>"
	}
	return text
}

func renderObjectRef(doc *model.Document, ref *model.ObjectRef, opts Options) string {
	res := doc.Resource(ref.ResourceID)
	if res == nil || res.Error != "" || !res.IsImage() {
		return ""
	}
	return fmt.Sprintf("![%s](%s/%s)", res.ID, opts.assetDir(), res.Filename())
}

// renderTable emits a pipe table over the full row-by-column grid.
// Spanning cells render in their anchor position; the coordinates they
// cover render as empty cells, keeping every row the same width.
func renderTable(doc *model.Document, t *model.Table, opts Options) string {
	rows, cols := t.GridSize()
	if rows == 0 || cols == 0 {
		return ""
	}
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	for r, row := range t.Rows {
		c := 0
		for _, cell := range row.Cells {
			for c < cols && grid[r][c] != "" {
				c++
			}
			if c >= cols {
				break
			}
			grid[r][c] = cellText(doc, cell, opts)
			if grid[r][c] == "" {
				grid[r][c] = " "
			}
			for dr := 0; dr < cell.RowSpan; dr++ {
				for dc := 0; dc < cell.ColSpan; dc++ {
					rr, cc := r+dr, c+dc
					if (dr != 0 || dc != 0) && rr < rows && cc < cols {
						grid[rr][cc] = " "
					}
				}
			}
			c += cell.ColSpan
		}
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		sb.WriteString("|")
		for c := 0; c < cols; c++ {
			sb.WriteString(" " + strings.TrimSpace(grid[r][c]) + " |")
		}
		sb.WriteString("\n")
		if r == 0 {
			sb.WriteString("|")
			sb.WriteString(strings.Repeat(" --- |", cols))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// cellText flattens a cell's blocks to a single line; pipes and line
// breaks would break the table syntax.
func cellText(doc *model.Document, cell model.TableCell, opts Options) string {
	var parts []string
	for _, blk := range cell.Blocks {
		switch b := blk.(type) {
		case *model.Paragraph:
			parts = append(parts, renderParagraph(doc, b))
		case *model.Table:
			// nested tables flatten to their text
			parts = append(parts, strings.ReplaceAll(blockTableText(b), "\n", " "))
		case *model.ObjectRef:
			if img := renderObjectRef(doc, b, opts); img != "" {
				parts = append(parts, img)
			}
		}
	}
	text := strings.Join(parts, " ")
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}

func blockTableText(t *model.Table) string {
	var sb strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, cell := range row.Cells {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(cell.Text())
		}
	}
	return sb.String()
}
