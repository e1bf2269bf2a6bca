package hwpdoc

import (
	"encoding/binary"
	"fmt"

	"github.com/twkang/hanmaru/model"
)

// docInfo is the shared state parsed out of the DocInfo stream. Char
// shapes are numbered by their position in the stream, which is the id
// space paragraph style mappings refer to.
type docInfo struct {
	styles    map[int]model.CharStyle
	faceNames []string
	sections  int
}

// Face-name record: property byte, then a counted UTF-16 string.
const faceNameHeaderLen = 3

// parseDocInfo walks the DocInfo record stream. Unparseable individual
// records are reported as warnings and skipped; only a broken record
// header ends the walk early.
func parseDocInfo(data []byte) (*docInfo, []string, error) {
	info := &docInfo{styles: make(map[int]model.CharStyle)}
	var warnings []string
	rr := NewRecordReader(data)
	for {
		rec, ok := rr.Next()
		if !ok {
			break
		}
		switch rec.Tag {
		case TagDocumentProperties:
			if len(rec.Data) >= 2 {
				info.sections = int(binary.LittleEndian.Uint16(rec.Data))
			}
		case TagCharShape:
			id := len(info.styles)
			style, err := parseCharShape(rec.Data)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("char shape %d: %v", id, err))
			}
			// a short record still claims its id so later shapes keep
			// their positions
			info.styles[id] = style
		case TagFaceName:
			if name := parseFaceName(rec.Data); name != "" {
				info.faceNames = append(info.faceNames, name)
			}
		}
	}
	return info, warnings, rr.Err()
}

func parseFaceName(data []byte) string {
	if len(data) < faceNameHeaderLen {
		return ""
	}
	n := int(binary.LittleEndian.Uint16(data[1:]))
	end := faceNameHeaderLen + 2*n
	if end > len(data) {
		return ""
	}
	return decodeUTF16String(data[faceNameHeaderLen:end])
}
