package hwpdoc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// A record starts with one 32-bit little-endian word packing the tag id,
// the nesting level and the payload size. A packed size of sizeEscape
// means the payload was too large for 12 bits and the true size follows
// the header as a separate 32-bit word. The escape applies uniformly to
// every tag.
const (
	recordHeaderLen = 4
	extSizeLen      = 4

	tagBits   = 10
	levelBits = 10
	sizeBits  = 12

	levelShift = tagBits
	sizeShift  = tagBits + levelBits

	tagMask   = 1<<tagBits - 1
	levelMask = 1<<levelBits - 1
	sizeMask  = 1<<sizeBits - 1

	sizeEscape = sizeMask
)

// Tag ids used in the DocInfo stream.
const (
	TagDocumentProperties uint16 = 0x00
	TagIDMappings         uint16 = 0x01
	TagBinData            uint16 = 0x02
	TagFaceName           uint16 = 0x03
	TagBorderFill         uint16 = 0x04
	TagCharShape          uint16 = 0x05
	TagTabDef             uint16 = 0x06
	TagNumbering          uint16 = 0x07
	TagBullet             uint16 = 0x08
	TagParaShape          uint16 = 0x09
	TagStyle              uint16 = 0x0A
)

// Tag ids used in BodyText section streams.
const (
	TagParaHeader            uint16 = 0x42
	TagParaText              uint16 = 0x43
	TagParaCharShape         uint16 = 0x44
	TagParaLineSeg           uint16 = 0x45
	TagParaRangeTag          uint16 = 0x46
	TagCtrlHeader            uint16 = 0x47
	TagListHeader            uint16 = 0x48
	TagPageDef               uint16 = 0x49
	TagFootnoteShape         uint16 = 0x4A
	TagPageBorderFill        uint16 = 0x4B
	TagShapeComponent        uint16 = 0x4C
	TagTable                 uint16 = 0x4D
	TagShapeComponentLine    uint16 = 0x4E
	TagShapeComponentRect    uint16 = 0x4F
	TagShapeComponentPicture uint16 = 0x55
	TagCtrlData              uint16 = 0x57
)

// ErrTruncated reports a stream that ends inside a record header or
// payload. Record iteration stops at the truncation point; everything
// decoded before it remains valid.
var ErrTruncated = errors.New("hwpdoc: truncated record stream")

// Record is one tagged record of a DocInfo or section stream. Data is a
// sub-slice of the stream buffer, valid as long as the buffer is.
type Record struct {
	Tag   uint16
	Level uint16
	Data  []byte
}

func decodeRecordHeader(w uint32) (tag, level uint16, size uint32) {
	tag = uint16(w & tagMask)
	level = uint16(w >> levelShift & levelMask)
	size = w >> sizeShift & sizeMask
	return tag, level, size
}

// RecordReader walks a decompressed stream buffer in a single forward
// pass without copying payloads.
type RecordReader struct {
	data []byte
	off  int
	err  error
}

func NewRecordReader(data []byte) *RecordReader {
	return &RecordReader{data: data}
}

// Next returns the next record, or ok=false at the end of the stream or
// at the first malformed header. Check Err afterwards to tell the two
// apart.
func (rr *RecordReader) Next() (Record, bool) {
	if rr.err != nil || rr.off == len(rr.data) {
		return Record{}, false
	}
	if rr.off+recordHeaderLen > len(rr.data) {
		rr.err = fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncated, len(rr.data)-rr.off, rr.off)
		return Record{}, false
	}
	tag, level, size := decodeRecordHeader(binary.LittleEndian.Uint32(rr.data[rr.off:]))
	off := rr.off + recordHeaderLen
	if size == sizeEscape {
		if off+extSizeLen > len(rr.data) {
			rr.err = fmt.Errorf("%w: missing extended size for tag 0x%02X at offset %d", ErrTruncated, tag, rr.off)
			return Record{}, false
		}
		size = binary.LittleEndian.Uint32(rr.data[off:])
		off += extSizeLen
	}
	end := off + int(size)
	if end < off || end > len(rr.data) {
		rr.err = fmt.Errorf("%w: tag 0x%02X at offset %d claims %d bytes, %d remain", ErrTruncated, tag, rr.off, size, len(rr.data)-off)
		return Record{}, false
	}
	rec := Record{Tag: tag, Level: level, Data: rr.data[off:end:end]}
	rr.off = end
	return rec, true
}

// Err returns the error that stopped iteration, or nil after a clean end
// of stream.
func (rr *RecordReader) Err() error {
	return rr.err
}

// ReadAllRecords parses a whole stream buffer. On truncation it returns
// the records decoded so far along with the error.
func ReadAllRecords(data []byte) ([]Record, error) {
	rr := NewRecordReader(data)
	var recs []Record
	for {
		rec, ok := rr.Next()
		if !ok {
			return recs, rr.Err()
		}
		recs = append(recs, rec)
	}
}
