// Package pdfdoc reads PDF files into the shared document model. It
// covers text extraction and document-information metadata; page layout
// and embedded images are out of its reach, so output is a flat sequence
// of paragraphs with page breaks between pages.
package pdfdoc

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/twkang/hanmaru/model"
)

// Reader wraps an open PDF.
type Reader struct {
	r        *pdf.Reader
	warnings []string
}

// Open reads the PDF at path. The password is used only when the file is
// encrypted; pass "" for unprotected files.
func Open(path, password string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(data, password)
}

// FromBytes parses a PDF already in memory.
func FromBytes(data []byte, password string) (*Reader, error) {
	src := bytes.NewReader(data)
	size := int64(len(data))
	var (
		pr  *pdf.Reader
		err error
	)
	if password != "" {
		pr, err = pdf.NewReaderEncrypted(src, size, func() string { return password })
	} else {
		pr, err = pdf.NewReader(src, size)
	}
	if err != nil {
		return nil, fmt.Errorf("pdfdoc: %w", err)
	}
	return &Reader{r: pr}, nil
}

// Warnings returns the per-page problems recovered from during parsing.
func (r *Reader) Warnings() []string {
	return r.warnings
}

func (r *Reader) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Document extracts every page. A page whose content cannot be decoded
// becomes a warning and an Unknown block; the remaining pages still
// extract.
func (r *Reader) Document() (*model.Document, error) {
	doc := model.NewDocument("pdf")
	r.readMetadata(doc)

	n := r.r.NumPage()
	for i := 1; i <= n; i++ {
		if i > 1 {
			doc.AddBlock(&model.PageBreak{})
		}
		page := r.r.Page(i)
		if page.V.IsNull() {
			r.warnf("page %d: missing page object", i)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			r.warnf("page %d: %v", i, err)
			doc.AddBlock(&model.Unknown{Err: err})
			continue
		}
		for _, para := range splitParagraphs(text) {
			doc.AddBlock(&model.Paragraph{
				Runs: []model.StyledRun{{Text: para, StyleID: model.DefaultStyle}},
			})
		}
	}
	return doc, nil
}

func (r *Reader) readMetadata(doc *model.Document) {
	defer func() {
		// malformed xref or info dictionaries panic inside the decoder;
		// metadata is best effort
		if p := recover(); p != nil {
			r.warnf("document info: %v", p)
		}
	}()
	info := r.r.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	get := func(key string) string {
		v := info.Key(key)
		if v.Kind() != pdf.String {
			return ""
		}
		return strings.TrimSpace(v.RawString())
	}
	doc.Metadata.Title = get("Title")
	doc.Metadata.Author = get("Author")
	doc.Metadata.Subject = get("Subject")
	doc.Metadata.Keywords = model.SplitKeywords(get("Keywords"))
	if producer := get("Producer"); producer != "" {
		doc.Metadata.Custom = map[string]string{"producer": producer}
	}
}

// splitParagraphs breaks extracted page text on blank lines and folds
// the remaining line breaks, which are layout artifacts, into spaces.
func splitParagraphs(text string) []string {
	var paras []string
	for _, chunk := range strings.Split(text, "\n\n") {
		lines := strings.Fields(strings.ReplaceAll(chunk, "\n", " "))
		if len(lines) == 0 {
			continue
		}
		paras = append(paras, strings.Join(lines, " "))
	}
	return paras
}
