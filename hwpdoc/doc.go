// Package hwpdoc reads HWP 5.0 word-processor documents. An HWP file is
// an OLE compound-file container holding a FileHeader stream, a DocInfo
// stream with shared style tables, one BodyText/Section%d stream per
// section, and an optional BinData storage with embedded images. Streams
// other than FileHeader are raw-deflate compressed when the header's
// compression flag is set, and every stream is a flat sequence of tagged,
// leveled, variable-length records.
//
// The entry points are Open, FromBytes and NewReader; Reader.Document
// parses the whole container into a model.Document.
package hwpdoc
