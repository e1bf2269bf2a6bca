package hwpdoc

import (
	"encoding/binary"
	"fmt"

	"github.com/twkang/hanmaru/format"
	"github.com/twkang/hanmaru/internal/filters"
	"github.com/twkang/hanmaru/model"
)

// binLengthPrefix is the 32-bit payload length that leads every BinData
// stream.
const binLengthPrefix = 4

// binEntry is one stream of the BinData storage, in storage order.
type binEntry struct {
	name string
	data []byte
}

// extractResources converts BinData entries into resources. Entries are
// numbered by position, starting at bin0001 to match the ids that
// picture components refer to. A corrupt entry yields a zero-length
// placeholder carrying the error so numbering stays aligned; the
// remaining entries are unaffected.
func extractResources(entries []binEntry) ([]*model.Resource, []string) {
	var warnings []string
	resources := make([]*model.Resource, 0, len(entries))
	for i, e := range entries {
		res := &model.Resource{ID: model.NewResourceID(i + 1), Name: e.name}
		payload, err := decodeBinEntry(e.data)
		if err != nil {
			res.Error = err.Error()
			res.ContentType = "application/octet-stream"
			warnings = append(warnings, fmt.Sprintf("binary entry %s: %v", e.name, err))
		} else {
			res.Data = payload
			res.ContentType = format.SniffContentType(payload)
		}
		resources = append(resources, res)
	}
	return resources, warnings
}

// decodeBinEntry strips the length prefix and inflates the payload when
// it is compressed. Entries whose declared length exceeds the stream are
// rejected rather than silently shortened.
func decodeBinEntry(data []byte) ([]byte, error) {
	if len(data) < binLengthPrefix {
		return nil, fmt.Errorf("entry too short for length prefix: %d bytes", len(data))
	}
	n := binary.LittleEndian.Uint32(data)
	body := data[binLengthPrefix:]
	if int64(n) > int64(len(body)) {
		return nil, fmt.Errorf("declared length %d exceeds %d available bytes", n, len(body))
	}
	return filters.TryInflate(body[:n]), nil
}
