// Package hanmaru provides a fluent API for extracting text, tables,
// images and metadata from HWP 5.0, HWPX and PDF documents, and for
// converting them to markdown with a companion resource manifest.
//
// Basic usage:
//
//	text, warnings, err := hanmaru.Open("report.hwp").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", hanmaru.FormatWarnings(warnings))
//	}
//
// Markdown conversion with options:
//
//	md, _, err := hanmaru.Open("report.hwp").
//	    AssetDir("images").
//	    NoFrontMatter().
//	    Markdown()
//
// For lower-level access the hwpdoc, hwpxdoc and pdfdoc packages are
// also available.
package hanmaru

import "github.com/twkang/hanmaru/format"

// Open prepares an Extractor for the document at filename. The file is
// not read until a terminal operation runs; the format is detected from
// content, falling back to the file extension.
//
// Example:
//
//	doc, warnings, err := hanmaru.Open("report.hwp").Document()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes prepares an Extractor for a document already in memory.
// The name is optional and only used for front matter, the manifest
// and extension-based format fallback.
func FromBytes(name string, data []byte) *Extractor {
	return &Extractor{
		filename: name,
		data:     data,
		options:  defaultOptions(),
	}
}

// WithFormat is shorthand for FromBytes followed by a Format override,
// for callers that already know what they hold.
func WithFormat(data []byte, f format.Format) *Extractor {
	return &Extractor{
		data:    data,
		format:  f,
		options: defaultOptions(),
	}
}

// Must wraps a call returning (T, error) and panics on error. Intended
// for scripts and tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText extracts plain text and panics on error, discarding
// warnings.
func MustText(filename string) string {
	text, _, err := Open(filename).Text()
	if err != nil {
		panic(err)
	}
	return text
}
