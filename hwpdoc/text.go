package hwpdoc

import (
	"encoding/binary"
	"unicode/utf16"
)

// Paragraph text is a sequence of 16-bit little-endian units. Values
// below 32 are control codes; some are inline character substitutes,
// some structural, and most carry a fixed-length payload of further
// units that must be skipped to stay aligned with the stream.
const (
	ctrlTab          = 0x09
	ctrlLineBreak    = 0x0A
	ctrlObjectAnchor = 0x0B
	ctrlParaBreak    = 0x0D
)

// ctrlExtraUnits is the payload of an extended or inline control: a
// 12-byte control id block plus a 2-byte trailer, 7 units in all.
const ctrlExtraUnits = 7

// extRangeExtraUnits is the payload applied uniformly to the reserved
// range 0x16..0x1F. It is a separate constant because readers of the
// format have historically disagreed about this range; the decode table
// references it for all ten codes so a correction lands in one place.
const extRangeExtraUnits = 7

type ctrlKind uint8

const (
	ctrlSkip ctrlKind = iota
	ctrlEmitTab
	ctrlEmitLineBreak
	ctrlSplitParagraph
	ctrlAnchor
)

type ctrlEntry struct {
	kind  ctrlKind
	extra int // additional units consumed after the code itself
}

// ctrlTable covers every code below 32. A wrong or missing skip length
// desynchronizes every character after the control, so all 32 entries
// are written out rather than defaulted.
var ctrlTable = [32]ctrlEntry{
	0x00: {ctrlSkip, 0},
	0x01: {ctrlSkip, ctrlExtraUnits},
	0x02: {ctrlSkip, ctrlExtraUnits},
	0x03: {ctrlSkip, ctrlExtraUnits},
	0x04: {ctrlSkip, ctrlExtraUnits},
	0x05: {ctrlSkip, ctrlExtraUnits},
	0x06: {ctrlSkip, ctrlExtraUnits},
	0x07: {ctrlSkip, ctrlExtraUnits},
	0x08: {ctrlSkip, ctrlExtraUnits},
	0x09: {ctrlEmitTab, 0},
	0x0A: {ctrlEmitLineBreak, 0},
	0x0B: {ctrlAnchor, ctrlExtraUnits},
	0x0C: {ctrlSkip, ctrlExtraUnits},
	0x0D: {ctrlSplitParagraph, 0},
	0x0E: {ctrlSkip, ctrlExtraUnits},
	0x0F: {ctrlSkip, ctrlExtraUnits},
	0x10: {ctrlSkip, ctrlExtraUnits},
	0x11: {ctrlSkip, ctrlExtraUnits},
	0x12: {ctrlSkip, ctrlExtraUnits},
	0x13: {ctrlSkip, ctrlExtraUnits},
	0x14: {ctrlSkip, ctrlExtraUnits},
	0x15: {ctrlSkip, ctrlExtraUnits},
	0x16: {ctrlSkip, extRangeExtraUnits},
	0x17: {ctrlSkip, extRangeExtraUnits},
	0x18: {ctrlSkip, extRangeExtraUnits},
	0x19: {ctrlSkip, extRangeExtraUnits},
	0x1A: {ctrlSkip, extRangeExtraUnits},
	0x1B: {ctrlSkip, extRangeExtraUnits},
	0x1C: {ctrlSkip, extRangeExtraUnits},
	0x1D: {ctrlSkip, extRangeExtraUnits},
	0x1E: {ctrlSkip, extRangeExtraUnits},
	0x1F: {ctrlSkip, extRangeExtraUnits},
}

type itemKind uint8

const (
	itemRune itemKind = iota
	itemParaBreak
	itemAnchor
)

// textItem is one decoded element of a paragraph-text payload, tagged
// with the unit position it started at. Style mappings address these
// positions, controls and payloads included.
type textItem struct {
	pos  int
	kind itemKind
	r    rune
}

const replacementChar = '�'

// decodeParaText decodes a paragraph-text payload into positioned items.
// Surrogate pairs combine into one rune at the high surrogate's
// position; a lone or mismatched surrogate becomes U+FFFD and decoding
// continues at the next unit. A trailing odd byte is ignored, and a
// control payload that would cross the record boundary is clamped to it.
func decodeParaText(data []byte) []textItem {
	units := len(data) / 2
	items := make([]textItem, 0, units)
	for pos := 0; pos < units; {
		u := binary.LittleEndian.Uint16(data[2*pos:])
		if u < 32 {
			e := ctrlTable[u]
			switch e.kind {
			case ctrlEmitTab:
				items = append(items, textItem{pos: pos, kind: itemRune, r: '\t'})
			case ctrlEmitLineBreak:
				items = append(items, textItem{pos: pos, kind: itemRune, r: '\n'})
			case ctrlSplitParagraph:
				items = append(items, textItem{pos: pos, kind: itemParaBreak})
			case ctrlAnchor:
				items = append(items, textItem{pos: pos, kind: itemAnchor})
			}
			pos += 1 + e.extra
			if pos > units {
				pos = units
			}
			continue
		}
		if utf16.IsSurrogate(rune(u)) {
			if pos+1 < units {
				u2 := binary.LittleEndian.Uint16(data[2*(pos+1):])
				if r := utf16.DecodeRune(rune(u), rune(u2)); r != replacementChar {
					items = append(items, textItem{pos: pos, kind: itemRune, r: r})
					pos += 2
					continue
				}
			}
			items = append(items, textItem{pos: pos, kind: itemRune, r: replacementChar})
			pos++
			continue
		}
		items = append(items, textItem{pos: pos, kind: itemRune, r: rune(u)})
		pos++
	}
	return items
}
