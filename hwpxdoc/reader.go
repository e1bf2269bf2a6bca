// Package hwpxdoc reads HWPX documents, the zip+XML successor of the
// HWP 5.0 binary format. A package holds Contents/section%d.xml streams
// with paragraphs and tables, Contents/header.xml with shared character
// properties, Contents/content.hpf with package metadata and a BinData/
// directory with embedded images.
package hwpxdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/twkang/hanmaru/format"
	"github.com/twkang/hanmaru/model"
)

const (
	sectionPathFmt = "Contents/section%d.xml"
	headerPath     = "Contents/header.xml"
	packagePath    = "Contents/content.hpf"
	binDataDir     = "BinData/"
)

// Reader provides access to an HWPX package.
type Reader struct {
	files    map[string]*zip.File
	warnings []string
}

// Open reads the HWPX package at path.
func Open(name string) (*Reader, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}

// FromBytes parses an HWPX package already in memory.
func FromBytes(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("hwpxdoc: opening package: %w", err)
	}
	r := &Reader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}
	if _, ok := r.files[fmt.Sprintf(sectionPathFmt, 0)]; !ok {
		return nil, fmt.Errorf("hwpxdoc: package has no content sections")
	}
	return r, nil
}

// Warnings returns the problems recovered from during parsing.
func (r *Reader) Warnings() []string {
	return r.warnings
}

func (r *Reader) warnf(formatStr string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(formatStr, args...))
}

func (r *Reader) readFile(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("hwpxdoc: no %s in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Document parses every section of the package. A section that fails to
// parse becomes a warning; the remaining sections still extract.
func (r *Reader) Document() (*model.Document, error) {
	doc := model.NewDocument("hwpx")
	r.readMetadata(doc)
	doc.Styles = r.readStyles()
	doc.Resources = r.readResources()

	for i := 0; ; i++ {
		name := fmt.Sprintf(sectionPathFmt, i)
		if _, ok := r.files[name]; !ok {
			break
		}
		if i > 0 {
			doc.AddBlock(&model.PageBreak{})
		}
		data, err := r.readFile(name)
		if err != nil {
			r.warnf("section %d: %v", i, err)
			continue
		}
		var sec sectionXML
		if err := xml.Unmarshal(data, &sec); err != nil {
			r.warnf("section %d: %v", i, err)
			continue
		}
		for _, p := range sec.Paragraphs {
			appendParagraph(doc, p)
		}
	}
	return doc, nil
}

func appendParagraph(doc *model.Document, p paraXML) {
	para, tables := convertParagraph(p)
	if para != nil {
		doc.AddBlock(para)
	}
	for _, t := range tables {
		doc.AddBlock(t)
	}
}

// convertParagraph flattens a paragraph's runs into styled runs and
// pulls any inline tables out as sibling blocks.
func convertParagraph(p paraXML) (*model.Paragraph, []*model.Table) {
	var runs []model.StyledRun
	var tables []*model.Table
	for _, run := range p.Runs {
		styleID := model.DefaultStyle
		if run.CharPrID != nil {
			styleID = *run.CharPrID
		}
		for _, t := range run.Texts {
			if t == "" {
				continue
			}
			runs = append(runs, model.StyledRun{Text: t, StyleID: styleID})
		}
		for _, tbl := range run.Tables {
			tables = append(tables, convertTable(tbl))
		}
	}
	if len(runs) == 0 {
		return nil, tables
	}
	return &model.Paragraph{Runs: runs}, tables
}

func convertTable(t tableXML) *model.Table {
	tbl := &model.Table{Rows: make([]model.TableRow, 0, len(t.Rows))}
	for _, row := range t.Rows {
		cells := make([]model.TableCell, 0, len(row.Cells))
		for _, c := range row.Cells {
			cell := model.TableCell{RowSpan: 1, ColSpan: 1}
			if c.Span.Row > 1 {
				cell.RowSpan = c.Span.Row
			}
			if c.Span.Col > 1 {
				cell.ColSpan = c.Span.Col
			}
			for _, p := range c.SubList.Paragraphs {
				para, nested := convertParagraph(p)
				if para != nil {
					cell.Blocks = append(cell.Blocks, para)
				}
				for _, n := range nested {
					cell.Blocks = append(cell.Blocks, n)
				}
			}
			cells = append(cells, cell)
		}
		tbl.Rows = append(tbl.Rows, model.TableRow{Cells: cells})
	}
	return tbl
}

func (r *Reader) readStyles() map[int]model.CharStyle {
	styles := make(map[int]model.CharStyle)
	data, err := r.readFile(headerPath)
	if err != nil {
		r.warnf("header: %v", err)
		return styles
	}
	var hdr headerXML
	if err := xml.Unmarshal(data, &hdr); err != nil {
		r.warnf("header: %v", err)
		return styles
	}
	for _, pr := range hdr.CharProperties {
		styles[pr.ID] = model.CharStyle{
			Bold:      pr.Bold != nil,
			Italic:    pr.Italic != nil,
			Underline: pr.Underline.set(),
			Strikeout: pr.Strikeout.set(),
		}
	}
	return styles
}

func (r *Reader) readMetadata(doc *model.Document) {
	data, err := r.readFile(packagePath)
	if err != nil {
		return
	}
	var pkg packageXML
	if err := xml.Unmarshal(data, &pkg); err != nil {
		r.warnf("package manifest: %v", err)
		return
	}
	doc.Metadata.Title = strings.TrimSpace(pkg.Title)
	doc.Metadata.Author = strings.TrimSpace(pkg.Creator)
	doc.Metadata.Subject = strings.TrimSpace(pkg.Subject)
	doc.Metadata.Keywords = model.SplitKeywords(pkg.Keyword)
}

// readResources numbers embedded binaries by sorted archive name so ids
// are deterministic across runs.
func (r *Reader) readResources() []*model.Resource {
	var names []string
	for name := range r.files {
		if strings.HasPrefix(name, binDataDir) && name != binDataDir {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	resources := make([]*model.Resource, 0, len(names))
	for i, name := range names {
		res := &model.Resource{ID: model.NewResourceID(i + 1), Name: path.Base(name)}
		data, err := r.readFile(name)
		if err != nil {
			res.Error = err.Error()
			res.ContentType = "application/octet-stream"
			r.warnf("binary entry %s: %v", name, err)
		} else {
			res.Data = data
			res.ContentType = format.SniffContentType(data)
		}
		resources = append(resources, res)
	}
	return resources
}
