package model

import "fmt"

// Resource is one extracted embedded binary asset. The id is deterministic
// for a given input (sequential, zero padded), the content type comes from
// magic-byte sniffing only, and Data is owned by the Resource until it is
// written out.
type Resource struct {
	// ID is the stable generated id, e.g. "bin0001".
	ID string
	// Name is the original entry name inside the source file, if known.
	Name string
	// ContentType is the detected MIME type, e.g. "image/png".
	// "application/octet-stream" when no signature matched.
	ContentType string
	// Data holds the raw bytes. Empty when Error is set.
	Data []byte
	// Error marks an entry that could not be extracted. The placeholder is
	// kept so resource ids stay deterministic.
	Error string
}

// NewResourceID formats the id for the n-th extracted asset (1-based).
func NewResourceID(n int) string {
	return fmt.Sprintf("bin%04d", n)
}

// Ext returns the file extension for the detected content type, including
// the leading dot. Unknown types map to ".bin".
func (r *Resource) Ext() string {
	switch r.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tif"
	default:
		return ".bin"
	}
}

// Filename returns the id plus the detected extension, the name used for the
// asset on disk and in markup references.
func (r *Resource) Filename() string {
	return r.ID + r.Ext()
}

// IsImage reports whether the detected content type is an image type.
func (r *Resource) IsImage() bool {
	switch r.ContentType {
	case "image/png", "image/jpeg", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}
