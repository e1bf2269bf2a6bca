package hwpdoc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// encodeRecord builds the wire form of one record, using the extended
// size word when the payload does not fit the packed size field.
func encodeRecord(t *testing.T, tag, level uint16, payload []byte) []byte {
	t.Helper()
	size := uint32(len(payload))
	packed := size
	if size >= sizeEscape {
		packed = sizeEscape
	}
	w := uint32(tag) | uint32(level)<<levelShift | packed<<sizeShift
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, w)
	if packed == sizeEscape {
		binary.Write(&buf, binary.LittleEndian, size)
	}
	buf.Write(payload)
	return buf.Bytes()
}

func TestRecordReader_RoundTrip(t *testing.T) {
	var stream []byte
	stream = append(stream, encodeRecord(t, TagParaHeader, 0, []byte{1, 2, 3})...)
	stream = append(stream, encodeRecord(t, TagParaText, 1, []byte("hello"))...)
	stream = append(stream, encodeRecord(t, TagParaCharShape, 1, nil)...)

	recs, err := ReadAllRecords(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	want := []struct {
		tag   uint16
		level uint16
		size  int
	}{
		{TagParaHeader, 0, 3},
		{TagParaText, 1, 5},
		{TagParaCharShape, 1, 0},
	}
	for i, w := range want {
		if recs[i].Tag != w.tag || recs[i].Level != w.level || len(recs[i].Data) != w.size {
			t.Errorf("record %d: got tag=0x%02X level=%d size=%d, want tag=0x%02X level=%d size=%d",
				i, recs[i].Tag, recs[i].Level, len(recs[i].Data), w.tag, w.level, w.size)
		}
	}
	if string(recs[1].Data) != "hello" {
		t.Errorf("payload = %q, want %q", recs[1].Data, "hello")
	}
}

func TestRecordReader_SizeEscapeBoundary(t *testing.T) {
	// largest inline size
	inline := encodeRecord(t, TagParaText, 0, make([]byte, sizeEscape-1))
	recs, err := ReadAllRecords(inline)
	if err != nil {
		t.Fatalf("inline size: %v", err)
	}
	if len(recs) != 1 || len(recs[0].Data) != sizeEscape-1 {
		t.Fatalf("inline size: got %d records, size %d", len(recs), len(recs[0].Data))
	}

	// exactly the escape value must round-trip through the extended word
	escaped := encodeRecord(t, TagParaText, 0, make([]byte, sizeEscape))
	if len(escaped) != recordHeaderLen+extSizeLen+sizeEscape {
		t.Fatalf("escape encoding is %d bytes, want %d", len(escaped), recordHeaderLen+extSizeLen+sizeEscape)
	}
	recs, err = ReadAllRecords(escaped)
	if err != nil {
		t.Fatalf("escaped size: %v", err)
	}
	if len(recs) != 1 || len(recs[0].Data) != sizeEscape {
		t.Fatalf("escaped size: got %d records, size %d", len(recs), len(recs[0].Data))
	}
}

func TestRecordReader_Truncation(t *testing.T) {
	good := encodeRecord(t, TagParaHeader, 0, []byte{9})

	cases := []struct {
		name   string
		stream []byte
	}{
		{"partial header", append(append([]byte{}, good...), 0x01, 0x02)},
		{"payload overruns", append(append([]byte{}, good...), encodeRecord(t, TagParaText, 1, []byte("abcdef"))[:7]...)},
		{"missing extended size", append(append([]byte{}, good...),
			encodeRecord(t, TagParaText, 1, make([]byte, sizeEscape))[:recordHeaderLen+1]...)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := ReadAllRecords(tc.stream)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("error = %v, want ErrTruncated", err)
			}
			if len(recs) != 1 || recs[0].Tag != TagParaHeader {
				t.Errorf("records before truncation not preserved: %+v", recs)
			}
		})
	}
}

func TestRecordReader_EmptyStream(t *testing.T) {
	recs, err := ReadAllRecords(nil)
	if err != nil || len(recs) != 0 {
		t.Fatalf("got %d records, err %v", len(recs), err)
	}
}
