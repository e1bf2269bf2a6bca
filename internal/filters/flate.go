// Package filters implements stream decompression for the body-section and
// binary-data streams of compound documents.
package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"
)

// Inflate decompresses a deflate-compressed stream. HWP body sections are
// raw deflate (no zlib header) so that is tried first; some writers emit a
// zlib wrapper instead, so that is the fallback.
func Inflate(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(fr)
	fr.Close()
	if err == nil {
		return out, nil
	}

	zr, zerr := zlib.NewReader(bytes.NewReader(data))
	if zerr != nil {
		return nil, fmt.Errorf("inflate failed: %w", err)
	}
	defer zr.Close()
	out, zerr = io.ReadAll(zr)
	if zerr != nil {
		return nil, fmt.Errorf("inflate failed: %w", zerr)
	}
	return out, nil
}

// DecompressIfNeeded returns the stream's plain bytes. When compressed is
// false the input is returned unchanged (and still borrowed, not copied).
func DecompressIfNeeded(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	return Inflate(data)
}

// TryInflate decompresses when the data is compressed and returns it
// untouched otherwise. Used for binary-data entries, which may or may not be
// independently compressed with no flag saying which.
func TryInflate(data []byte) []byte {
	if out, err := Inflate(data); err == nil {
		return out
	}
	return data
}
