package model

import "strings"

// BlockType identifies the concrete type of a Block.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeTable
	BlockTypeObjectRef
	BlockTypePageBreak
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeTable:
		return "Table"
	case BlockTypeObjectRef:
		return "ObjectRef"
	case BlockTypePageBreak:
		return "PageBreak"
	default:
		return "Unknown"
	}
}

// Block is the interface for all document-level content blocks.
type Block interface {
	Type() BlockType
}

// Paragraph is an ordered sequence of styled text runs.
type Paragraph struct {
	Runs []StyledRun
}

func (p *Paragraph) Type() BlockType { return BlockTypeParagraph }

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// IsEmpty reports whether the paragraph contains no text at all.
func (p *Paragraph) IsEmpty() bool {
	for _, r := range p.Runs {
		if r.Text != "" {
			return false
		}
	}
	return true
}

// StyledRun is a contiguous span of text sharing one character style. Run
// text never contains undecoded control codes; control codes are resolved
// to characters or run boundaries during decoding.
type StyledRun struct {
	Text    string
	StyleID int
}

// CharStyle holds the character formatting flags for a run. Styles are value
// types; identity comes only from their id in the Document style table.
type CharStyle struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strikeout bool
}

// IsZero reports whether every formatting flag is unset.
func (s CharStyle) IsZero() bool {
	return !s.Bold && !s.Italic && !s.Underline && !s.Strikeout
}

// ObjectRef is a placeholder for an embedded binary object anchored in the
// text flow. ResourceID references an entry in Document.Resources; it is
// empty when the anchor could not be linked to an extracted resource.
type ObjectRef struct {
	ResourceID string
}

func (o *ObjectRef) Type() BlockType { return BlockTypeObjectRef }

// PageBreak marks an explicit page or section boundary.
type PageBreak struct{}

func (p *PageBreak) Type() BlockType { return BlockTypePageBreak }

// Unknown records a source record that no handler recognized, or a section
// that could not be decoded. Kept for diagnostics only; emitters skip it.
type Unknown struct {
	Tag uint16
	Err error
}

func (u *Unknown) Type() BlockType { return BlockTypeUnknown }
