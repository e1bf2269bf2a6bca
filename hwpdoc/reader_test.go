package hwpdoc

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/twkang/hanmaru/model"
)

func fileHeaderBytes(t *testing.T, flags uint32) []byte {
	t.Helper()
	buf := make([]byte, 256)
	copy(buf, headerSignature)
	buf[headerVersionOffset+3] = 5
	buf[headerVersionOffset+1] = 3
	binary.LittleEndian.PutUint32(buf[headerFlagsOffset:], flags)
	return buf
}

// newTestReader assembles a Reader from raw streams, running the same
// header and inventory steps NewReader performs after container
// traversal.
func newTestReader(t *testing.T, streams map[string][]byte) *Reader {
	t.Helper()
	r := &Reader{streams: streams}
	if err := r.parseFileHeader(); err != nil {
		t.Fatalf("parseFileHeader: %v", err)
	}
	r.collectSections()
	r.collectBinaries()
	return r
}

func TestParseFileHeader(t *testing.T) {
	r := newTestReader(t, map[string][]byte{
		streamFileHeader: fileHeaderBytes(t, flagCompressed),
	})
	hdr := r.FileHeader()
	if hdr.Version != "5.0.3.0" {
		t.Errorf("version = %q, want 5.0.3.0", hdr.Version)
	}
	if !hdr.Compressed || hdr.Encrypted || hdr.Distributed {
		t.Errorf("flags = %+v", hdr)
	}
}

func TestParseFileHeader_Encrypted(t *testing.T) {
	for _, flags := range []uint32{flagEncrypted, flagDistributed, flagCompressed | flagEncrypted} {
		r := &Reader{streams: map[string][]byte{
			streamFileHeader: fileHeaderBytes(t, flags),
		}}
		if err := r.parseFileHeader(); !errors.Is(err, ErrEncrypted) {
			t.Errorf("flags %#x: error = %v, want ErrEncrypted", flags, err)
		}
	}
}

func TestParseFileHeader_Invalid(t *testing.T) {
	r := &Reader{streams: map[string][]byte{}}
	if err := r.parseFileHeader(); !errors.Is(err, ErrNotHWP) {
		t.Errorf("missing stream: error = %v, want ErrNotHWP", err)
	}

	bad := fileHeaderBytes(t, 0)
	copy(bad, "Not An HWP Header")
	r = &Reader{streams: map[string][]byte{streamFileHeader: bad}}
	if err := r.parseFileHeader(); !errors.Is(err, ErrNotHWP) {
		t.Errorf("bad signature: error = %v, want ErrNotHWP", err)
	}
}

func TestReadStream(t *testing.T) {
	r := newTestReader(t, map[string][]byte{
		streamFileHeader: fileHeaderBytes(t, 0),
		"PrvText":        []byte("preview"),
	})
	data, err := r.ReadStream("PrvText")
	if err != nil || string(data) != "preview" {
		t.Errorf("ReadStream = %q, %v", data, err)
	}
	if _, err := r.ReadStream("Missing"); !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("error = %v, want ErrStreamNotFound", err)
	}
}

// sectionStream builds a one-paragraph section with a style mapping.
func sectionStream(t *testing.T, text string, styleID uint32) []byte {
	t.Helper()
	units := make([]uint16, 0, len(text))
	for _, r := range text {
		units = append(units, uint16(r))
	}
	var stream []byte
	stream = append(stream, encodeRecord(t, TagParaHeader, 0, nil)...)
	stream = append(stream, textRecord(t, 1, units...)...)
	stream = append(stream, encodeRecord(t, TagParaCharShape, 1,
		paraCharShapeBytes([2]uint32{0, styleID}))...)
	return stream
}

func TestDocument_EndToEnd(t *testing.T) {
	props := make([]byte, 2)
	binary.LittleEndian.PutUint16(props, 2)
	var docInfoStream []byte
	docInfoStream = append(docInfoStream, encodeRecord(t, TagDocumentProperties, 0, props)...)
	docInfoStream = append(docInfoStream, encodeRecord(t, TagCharShape, 1, charShapeBytes(t, attrBold))...)

	r := newTestReader(t, map[string][]byte{
		streamFileHeader:      fileHeaderBytes(t, flagCompressed),
		streamDocInfo:         deflated(t, docInfoStream),
		"BodyText/Section0":   deflated(t, sectionStream(t, "Hello", 0)),
		"BodyText/Section1":   deflated(t, sectionStream(t, "World", 0)),
		"BinData/BIN0001.png": binStream(t, pngMagic),
	})
	if r.SectionCount() != 2 {
		t.Fatalf("sections = %d, want 2", r.SectionCount())
	}

	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(r.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings())
	}
	if doc.Format != "hwp" || doc.Metadata.Version != "5.0.3.0" {
		t.Errorf("format %q version %q", doc.Format, doc.Metadata.Version)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want paragraph, page break, paragraph: %+v", len(doc.Blocks), doc.Blocks)
	}
	if doc.Blocks[1].Type() != model.BlockTypePageBreak {
		t.Errorf("block 1 is %s, want PageBreak", doc.Blocks[1].Type())
	}
	first := doc.Blocks[0].(*model.Paragraph)
	if first.Text() != "Hello" {
		t.Errorf("first paragraph = %q", first.Text())
	}
	if style := doc.Style(first.Runs[0].StyleID); !style.Bold {
		t.Errorf("style not resolved to bold: %+v", style)
	}
	if doc.Blocks[2].(*model.Paragraph).Text() != "World" {
		t.Errorf("second section paragraph = %q", doc.Blocks[2].(*model.Paragraph).Text())
	}
	if len(doc.Resources) != 1 || doc.Resources[0].ID != "bin0001" {
		t.Fatalf("resources = %+v", doc.Resources)
	}
	if doc.Resources[0].ContentType != "image/png" {
		t.Errorf("resource content type = %q", doc.Resources[0].ContentType)
	}
}

func TestDocument_SectionOrderStable(t *testing.T) {
	streams := map[string][]byte{
		streamFileHeader: fileHeaderBytes(t, 0),
		streamDocInfo:    {},
	}
	words := []string{"one", "two", "three", "four", "five", "six"}
	for i, w := range words {
		streams["BodyText/Section"+string(rune('0'+i))] = sectionStream(t, w, 0)
	}
	r := newTestReader(t, streams)
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	var got []string
	for _, blk := range doc.Blocks {
		if p, ok := blk.(*model.Paragraph); ok {
			got = append(got, p.Text())
		}
	}
	if len(got) != len(words) {
		t.Fatalf("paragraphs = %q", got)
	}
	for i, w := range words {
		if got[i] != w {
			t.Fatalf("section order broken: %q", got)
		}
	}
}

func TestDocument_Cancelled(t *testing.T) {
	r := newTestReader(t, map[string][]byte{
		streamFileHeader:    fileHeaderBytes(t, 0),
		streamDocInfo:       {},
		"BodyText/Section0": sectionStream(t, "x", 0),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.DocumentContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDocument_DamagedSectionIsolated(t *testing.T) {
	r := newTestReader(t, map[string][]byte{
		streamFileHeader:    fileHeaderBytes(t, flagCompressed),
		streamDocInfo:       deflated(t, nil),
		"BodyText/Section0": []byte{0xDE, 0xAD, 0xBE, 0xEF}, // not deflate
		"BodyText/Section1": deflated(t, sectionStream(t, "ok", 0)),
	})
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(r.Warnings()) == 0 {
		t.Error("expected a warning for the damaged section")
	}
	var texts []string
	var markers int
	for _, blk := range doc.Blocks {
		switch b := blk.(type) {
		case *model.Paragraph:
			texts = append(texts, b.Text())
		case *model.Unknown:
			markers++
			if b.Err == nil {
				t.Error("damaged-section marker has no error")
			}
		}
	}
	if len(texts) != 1 || texts[0] != "ok" {
		t.Errorf("surviving paragraphs = %q", texts)
	}
	if markers != 1 {
		t.Errorf("damaged-section markers = %d, want 1", markers)
	}
}

func TestDocument_MissingDocInfoWarns(t *testing.T) {
	r := newTestReader(t, map[string][]byte{
		streamFileHeader:    fileHeaderBytes(t, 0),
		"BodyText/Section0": sectionStream(t, "x", 0),
	})
	if _, err := r.Document(); err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(r.Warnings()) == 0 {
		t.Error("expected a warning for missing DocInfo")
	}
}
