package hwpdoc

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/twkang/hanmaru/model"
)

// A char-shape record opens with 7 face-name ids (u16 each), four 7-byte
// per-language metric arrays and a base size (u32), which places the
// attribute word at byte 46.
const (
	charShapeMinLen     = 50
	charShapeAttrOffset = 46
)

// Attribute word bits.
const (
	attrItalic         = 1 << 0
	attrBold           = 1 << 1
	attrUnderlineShift = 2
	attrUnderlineMask  = 0x3
	attrStrikeoutShift = 18
	attrStrikeoutMask  = 0xF
)

// parseCharShape extracts the boolean style facets of a char-shape
// record. Underline and strikeout are multi-bit kind fields; any nonzero
// kind counts as set.
func parseCharShape(data []byte) (model.CharStyle, error) {
	if len(data) < charShapeMinLen {
		return model.CharStyle{}, fmt.Errorf("char shape record too short: %d bytes", len(data))
	}
	attr := binary.LittleEndian.Uint32(data[charShapeAttrOffset:])
	return model.CharStyle{
		Italic:    attr&attrItalic != 0,
		Bold:      attr&attrBold != 0,
		Underline: attr>>attrUnderlineShift&attrUnderlineMask != 0,
		Strikeout: attr>>attrStrikeoutShift&attrStrikeoutMask != 0,
	}, nil
}

// styleRef marks the text-unit position from which a style id applies.
type styleRef struct {
	pos     int
	styleID int
}

// parseParaCharShape reads the (position, style id) pair array of a
// paragraph's char-shape mapping. Positions are ascending in well-formed
// files; a trailing partial pair is ignored.
func parseParaCharShape(data []byte) []styleRef {
	refs := make([]styleRef, 0, len(data)/8)
	for o := 0; o+8 <= len(data); o += 8 {
		refs = append(refs, styleRef{
			pos:     int(binary.LittleEndian.Uint32(data[o:])),
			styleID: int(binary.LittleEndian.Uint32(data[o+4:])),
		})
	}
	return refs
}

// styleAt returns the style id active at a unit position: the last ref
// at or before it, or model.DefaultStyle when the position precedes every
// ref.
func styleAt(pos int, refs []styleRef) int {
	id := model.DefaultStyle
	for _, ref := range refs {
		if ref.pos > pos {
			break
		}
		id = ref.styleID
	}
	return id
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16String decodes a little-endian UTF-16 byte slice, as used
// by string fields in DocInfo records.
func decodeUTF16String(data []byte) string {
	out, err := utf16LE.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}
