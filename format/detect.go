// Package format provides file format detection for the hanmaru library.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HWP indicates an HWP 5.0 compound-file document.
	HWP
	// HWPX indicates an HWPX (zip+XML) document.
	HWPX
	// PDF indicates a PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HWP:
		return "HWP"
	case HWPX:
		return "HWPX"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HWP:
		return ".hwp"
	case HWPX:
		return ".hwpx"
	case PDF:
		return ".pdf"
	default:
		return ""
	}
}

// Compound-file binary signature shared by HWP 5.0 and other OLE2 documents.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// zipMagic is the local-file header of a ZIP archive (HWPX container).
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hwp":
		return HWP
	case ".hwpx":
		return HWPX
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading magic bytes to determine format. A ZIP
// archive alone is ambiguous, so callers with full content should use
// DetectFromReader; here a ZIP is reported as HWPX since that is the only
// zip-based format accepted.
func DetectFromMagic(data []byte) Format {
	if len(data) >= 8 && bytes.Equal(data[:8], cfbMagic) {
		return HWP
	}
	if len(data) >= 4 && bytes.Equal(data[:4], zipMagic) {
		return HWPX
	}
	if len(data) >= 5 && bytes.Equal(data[:5], []byte("%PDF-")) {
		return PDF
	}
	return Unknown
}

// DetectFromReader inspects content to determine format. More reliable than
// extension-based detection: compound files are checked by signature and ZIP
// archives are opened to confirm the HWPX mimetype entry.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 8)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if len(magic) >= 8 && bytes.Equal(magic[:8], cfbMagic) {
		return HWP, nil
	}
	if len(magic) >= 5 && bytes.Equal(magic[:5], []byte("%PDF-")) {
		return PDF, nil
	}
	if len(magic) >= 4 && bytes.Equal(magic[:4], zipMagic) {
		return detectZIPFormat(r, size)
	}
	return Unknown, nil
}

var imageMagics = []struct {
	prefix      []byte
	contentType string
}{
	{[]byte{0x89, 'P', 'N', 'G'}, "image/png"},
	{[]byte{0xFF, 0xD8}, "image/jpeg"},
	{[]byte("GIF8"), "image/gif"},
	{[]byte("BM"), "image/bmp"},
	{[]byte{'I', 'I', 0x2A, 0x00}, "image/tiff"},
	{[]byte{'M', 'M', 0x00, 0x2A}, "image/tiff"},
}

// SniffContentType classifies an embedded binary payload by its magic
// bytes, falling back to application/octet-stream.
func SniffContentType(data []byte) string {
	for _, m := range imageMagics {
		if bytes.HasPrefix(data, m.prefix) {
			return m.contentType
		}
	}
	return "application/octet-stream"
}

// detectZIPFormat inspects a ZIP archive to confirm it is an HWPX package.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			data := make([]byte, 256)
			n, _ := rc.Read(data)
			rc.Close()
			if strings.Contains(string(data[:n]), "hwp+zip") {
				return HWPX, nil
			}
		}
	}

	// No mimetype entry: accept the package when the content sections are
	// where HWPX puts them.
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "Contents/") {
			return HWPX, nil
		}
	}
	return Unknown, nil
}
