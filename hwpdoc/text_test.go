package hwpdoc

import (
	"encoding/binary"
	"testing"
)

// unitBytes packs 16-bit text units little-endian.
func unitBytes(units ...uint16) []byte {
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return buf
}

func decodedText(items []textItem) string {
	var runes []rune
	for _, it := range items {
		if it.kind == itemRune {
			runes = append(runes, it.r)
		}
	}
	return string(runes)
}

func TestCtrlTable_Complete(t *testing.T) {
	wantExtra := map[uint16]int{
		0x00: 0, 0x09: 0, 0x0A: 0, 0x0D: 0,
	}
	for code := uint16(0x01); code <= 0x1F; code++ {
		if _, ok := wantExtra[code]; !ok {
			wantExtra[code] = 7
		}
	}
	for code := uint16(0); code < 32; code++ {
		if got := ctrlTable[code].extra; got != wantExtra[code] {
			t.Errorf("code 0x%02X: extra = %d, want %d", code, got, wantExtra[code])
		}
	}
}

// Every control must consume exactly its declared payload: the character
// after the payload has to survive decoding.
func TestDecodeParaText_ControlConsumption(t *testing.T) {
	for code := uint16(0); code < 32; code++ {
		units := []uint16{code}
		for i := 0; i < ctrlTable[code].extra; i++ {
			units = append(units, 0xAAAA)
		}
		units = append(units, 'A')
		items := decodeParaText(unitBytes(units...))

		var got string
		for _, it := range items {
			if it.kind == itemRune && it.r != '\t' && it.r != '\n' {
				got += string(it.r)
			}
		}
		if got != "A" {
			t.Errorf("code 0x%02X: surviving text = %q, want %q", code, got, "A")
		}
	}
}

func TestDecodeParaText_InlineControls(t *testing.T) {
	items := decodeParaText(unitBytes('a', ctrlTab, 'b', ctrlLineBreak, 'c'))
	if got := decodedText(items); got != "a\tb\nc" {
		t.Errorf("text = %q, want %q", got, "a\tb\nc")
	}
}

func TestDecodeParaText_ParaBreakAndAnchor(t *testing.T) {
	units := []uint16{'H', 'i', ctrlParaBreak, 'B', ctrlObjectAnchor}
	for i := 0; i < ctrlExtraUnits; i++ {
		units = append(units, 0)
	}
	units = append(units, 'y')
	items := decodeParaText(unitBytes(units...))

	var breaks, anchors int
	for _, it := range items {
		switch it.kind {
		case itemParaBreak:
			breaks++
		case itemAnchor:
			anchors++
		}
	}
	if breaks != 1 || anchors != 1 {
		t.Errorf("breaks = %d, anchors = %d, want 1 and 1", breaks, anchors)
	}
	if got := decodedText(items); got != "HiBy" {
		t.Errorf("text = %q, want %q", got, "HiBy")
	}
}

func TestDecodeParaText_Positions(t *testing.T) {
	// positions count units, control payloads included
	units := []uint16{'a', 0x01}
	for i := 0; i < ctrlExtraUnits; i++ {
		units = append(units, 0)
	}
	units = append(units, 'b')
	items := decodeParaText(unitBytes(units...))
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].pos != 0 || items[1].pos != 1+1+ctrlExtraUnits {
		t.Errorf("positions = %d, %d; want 0, %d", items[0].pos, items[1].pos, 1+1+ctrlExtraUnits)
	}
}

func TestDecodeParaText_Surrogates(t *testing.T) {
	// U+1F600 as a UTF-16 pair
	items := decodeParaText(unitBytes('x', 0xD83D, 0xDE00, 'y'))
	if got := decodedText(items); got != "x\U0001F600y" {
		t.Errorf("pair: text = %q", got)
	}

	// lone high surrogate followed by a normal character
	items = decodeParaText(unitBytes(0xD83D, 'z'))
	if got := decodedText(items); got != "�z" {
		t.Errorf("lone high: text = %q", got)
	}

	// lone low surrogate
	items = decodeParaText(unitBytes(0xDE00, 'z'))
	if got := decodedText(items); got != "�z" {
		t.Errorf("lone low: text = %q", got)
	}

	// high surrogate at end of record
	items = decodeParaText(unitBytes('a', 0xD83D))
	if got := decodedText(items); got != "a�" {
		t.Errorf("trailing high: text = %q", got)
	}
}

func TestDecodeParaText_ClampedPayload(t *testing.T) {
	// control payload runs past the end of the record; decoding must
	// stop cleanly instead of reading out of bounds
	items := decodeParaText(unitBytes('a', 0x01, 0, 0))
	if got := decodedText(items); got != "a" {
		t.Errorf("text = %q, want %q", got, "a")
	}
}

func TestDecodeParaText_OddTrailingByte(t *testing.T) {
	data := append(unitBytes('a', 'b'), 0x41)
	if got := decodedText(decodeParaText(data)); got != "ab" {
		t.Errorf("text = %q, want %q", got, "ab")
	}
}
