package hanmaru

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twkang/hanmaru/format"
	"github.com/twkang/hanmaru/hwpdoc"
	"github.com/twkang/hanmaru/hwpxdoc"
	"github.com/twkang/hanmaru/markup"
	"github.com/twkang/hanmaru/model"
	"github.com/twkang/hanmaru/pdfdoc"
)

// Extractor provides a fluent interface for converting HWP, HWPX and PDF
// documents. Each configuration method returns a new Extractor instance,
// making chains safe to share; terminal operations return the result, any
// warnings accumulated along the way, and an error.
type Extractor struct {
	// Source: either a filename or in-memory bytes.
	filename string
	data     []byte
	format   format.Format

	options ConvertOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Extractor with a deep copy of
// options, so configuration methods never mutate the receiver.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		format:   e.format,
		options:  e.options.clone(),
		err:      e.err,
		warnings: append([]Warning(nil), e.warnings...),
	}
}

// Context sets the context used for parsing. Multi-section documents
// observe cancellation between sections.
func (e *Extractor) Context(ctx context.Context) *Extractor {
	ne := e.clone()
	if ctx == nil {
		ctx = context.Background()
	}
	ne.options.ctx = ctx
	return ne
}

// Password supplies the password for encrypted PDF input. Encrypted HWP
// documents are not supported and fail regardless of password.
func (e *Extractor) Password(password string) *Extractor {
	ne := e.clone()
	ne.options.password = password
	return ne
}

// Sections limits extraction to the given zero-based section indices
// (pages, for PDF input). Indices outside the document are ignored with
// a warning; an empty call leaves all sections selected.
func (e *Extractor) Sections(indices ...int) *Extractor {
	ne := e.clone()
	ne.options.sections = append([]int(nil), indices...)
	return ne
}

// KeepUnknownBlocks keeps diagnostic blocks for unrecognized records in
// the document instead of filtering them out.
func (e *Extractor) KeepUnknownBlocks() *Extractor {
	ne := e.clone()
	ne.options.keepUnknown = true
	return ne
}

// AssetDir sets the directory name that markdown image references and
// manifest paths point into. Default is "assets".
func (e *Extractor) AssetDir(dir string) *Extractor {
	ne := e.clone()
	if dir != "" {
		ne.options.assetDir = dir
	}
	return ne
}

// NoFrontMatter suppresses the YAML front-matter block in markdown
// output.
func (e *Extractor) NoFrontMatter() *Extractor {
	ne := e.clone()
	ne.options.noFrontMatter = true
	return ne
}

// Format overrides content-based format detection.
func (e *Extractor) Format(f format.Format) *Extractor {
	ne := e.clone()
	ne.format = f
	return ne
}

func (e *Extractor) warnf(code, formatStr string, args ...any) {
	e.warnings = append(e.warnings, Warning{Code: code, Message: fmt.Sprintf(formatStr, args...)})
}

func (e *Extractor) warnAll(code string, msgs []string) {
	for _, m := range msgs {
		e.warnings = append(e.warnings, Warning{Code: code, Message: m})
	}
}

// load reads the source bytes and settles the format.
func (e *Extractor) load() error {
	if e.err != nil {
		return e.err
	}
	if e.data == nil {
		if e.filename == "" {
			return fmt.Errorf("no input specified")
		}
		data, err := os.ReadFile(e.filename)
		if err != nil {
			return err
		}
		e.data = data
	}
	if e.format == format.Unknown {
		f, err := format.DetectFromReader(bytes.NewReader(e.data), int64(len(e.data)))
		if err != nil || f == format.Unknown {
			f = format.Detect(e.filename)
		}
		e.format = f
	}
	if e.format == format.Unknown {
		return fmt.Errorf("unrecognized document format")
	}
	return nil
}

// parse runs the format-specific reader over the loaded bytes.
func (e *Extractor) parse() (*model.Document, error) {
	if err := e.load(); err != nil {
		return nil, err
	}
	var (
		doc *model.Document
		err error
	)
	switch e.format {
	case format.HWP:
		var r *hwpdoc.Reader
		r, err = hwpdoc.FromBytes(e.data)
		if err != nil {
			return nil, err
		}
		doc, err = r.DocumentContext(e.options.ctx)
		e.warnAll(WarnParse, r.Warnings())
	case format.HWPX:
		var r *hwpxdoc.Reader
		r, err = hwpxdoc.FromBytes(e.data)
		if err != nil {
			return nil, err
		}
		doc, err = r.Document()
		e.warnAll(WarnParse, r.Warnings())
	case format.PDF:
		var r *pdfdoc.Reader
		r, err = pdfdoc.FromBytes(e.data, e.options.password)
		if err != nil {
			return nil, err
		}
		doc, err = r.Document()
		e.warnAll(WarnParse, r.Warnings())
	default:
		return nil, fmt.Errorf("unsupported file format: %s", e.format)
	}
	if err != nil {
		return nil, err
	}
	if !e.options.keepUnknown {
		dropUnknownBlocks(doc)
	}
	e.selectSections(doc)
	return doc, nil
}

// selectSections rewrites doc.Blocks to the section groups named in the
// options, in document order. Sections are the page-break-delimited runs
// of blocks, so the same selection works for every input format.
func (e *Extractor) selectSections(doc *model.Document) {
	if len(e.options.sections) == 0 {
		return
	}
	var groups [][]model.Block
	var cur []model.Block
	for _, blk := range doc.Blocks {
		if blk.Type() == model.BlockTypePageBreak {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, blk)
	}
	groups = append(groups, cur)

	want := make(map[int]bool, len(e.options.sections))
	for _, idx := range e.options.sections {
		if idx < 0 || idx >= len(groups) {
			e.warnf(WarnParse, "section %d does not exist (document has %d)", idx, len(groups))
			continue
		}
		want[idx] = true
	}

	var kept []model.Block
	for i, group := range groups {
		if !want[i] {
			continue
		}
		if len(kept) > 0 {
			kept = append(kept, &model.PageBreak{})
		}
		kept = append(kept, group...)
	}
	doc.Blocks = kept
}

func dropUnknownBlocks(doc *model.Document) {
	kept := doc.Blocks[:0]
	for _, blk := range doc.Blocks {
		if blk.Type() != model.BlockTypeUnknown {
			kept = append(kept, blk)
		}
	}
	doc.Blocks = kept
}

// Document parses the input into the structured document model.
func (e *Extractor) Document() (*model.Document, []Warning, error) {
	ne := e.clone()
	doc, err := ne.parse()
	if err != nil {
		return nil, ne.warnings, err
	}
	return doc, ne.warnings, nil
}

// Text extracts plain text: paragraphs separated by newlines, table
// cells separated by tabs.
func (e *Extractor) Text() (string, []Warning, error) {
	ne := e.clone()
	doc, err := ne.parse()
	if err != nil {
		return "", ne.warnings, err
	}
	return doc.Text(), ne.warnings, nil
}

// Markdown renders the document as markdown with YAML front matter.
func (e *Extractor) Markdown() (string, []Warning, error) {
	ne := e.clone()
	doc, err := ne.parse()
	if err != nil {
		return "", ne.warnings, err
	}
	out := markup.Render(doc, ne.renderOptions())
	return out, ne.warnings, nil
}

// Manifest builds the resource manifest describing extracted assets.
func (e *Extractor) Manifest() (*markup.Manifest, []Warning, error) {
	ne := e.clone()
	doc, err := ne.parse()
	if err != nil {
		return nil, ne.warnings, err
	}
	return markup.BuildManifest(doc, ne.renderOptions()), ne.warnings, nil
}

// Resources returns the embedded binary assets. Entries that failed to
// decode are present as zero-length placeholders with Error set.
func (e *Extractor) Resources() ([]*model.Resource, []Warning, error) {
	ne := e.clone()
	doc, err := ne.parse()
	if err != nil {
		return nil, ne.warnings, err
	}
	return doc.Resources, ne.warnings, nil
}

func (e *Extractor) renderOptions() markup.Options {
	return markup.Options{
		Source:        filepath.Base(e.filename),
		AssetDir:      e.options.assetDir,
		NoFrontMatter: e.options.noFrontMatter,
	}
}

// DocumentInfo summarizes a document without extracting its content.
type DocumentInfo struct {
	Format     string
	Version    string
	Title      string
	Author     string
	Sections   int
	Paragraphs int
	Tables     int
	Resources  int
	Compressed bool
	Streams    []string // container stream names, HWP only
}

// Info inspects the document and reports summary information.
func (e *Extractor) Info() (*DocumentInfo, []Warning, error) {
	ne := e.clone()
	if err := ne.load(); err != nil {
		return nil, ne.warnings, err
	}
	info := &DocumentInfo{Format: ne.format.String()}

	var hwpReader *hwpdoc.Reader
	if ne.format == format.HWP {
		r, err := hwpdoc.FromBytes(ne.data)
		if err != nil {
			return nil, ne.warnings, err
		}
		hwpReader = r
	}

	doc, err := ne.parse()
	if err != nil {
		return nil, ne.warnings, err
	}
	info.Version = doc.Metadata.Version
	info.Title = doc.Metadata.Title
	info.Author = doc.Metadata.Author
	info.Resources = len(doc.Resources)
	info.Sections = 1
	for _, blk := range doc.Blocks {
		switch blk.Type() {
		case model.BlockTypeParagraph:
			info.Paragraphs++
		case model.BlockTypeTable:
			info.Tables++
		case model.BlockTypePageBreak:
			info.Sections++
		}
	}
	if hwpReader != nil {
		hdr := hwpReader.FileHeader()
		info.Compressed = hdr.Compressed
		info.Sections = hwpReader.SectionCount()
		info.Streams = hwpReader.StreamNames()
	}
	return info, ne.warnings, nil
}
