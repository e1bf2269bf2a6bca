package hwpdoc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
	"golang.org/x/sync/errgroup"

	"github.com/twkang/hanmaru/internal/filters"
	"github.com/twkang/hanmaru/model"
)

// FileHeader stream layout: a fixed signature, a version word and a
// flags word.
const (
	headerSignature     = "HWP Document File"
	headerMinLen        = 40
	headerVersionOffset = 32
	headerFlagsOffset   = 36
)

// Flag word bits.
const (
	flagCompressed  = 1 << 0
	flagEncrypted   = 1 << 1
	flagDistributed = 1 << 2
)

// Well-known stream names inside the container.
const (
	streamFileHeader  = "FileHeader"
	streamDocInfo     = "DocInfo"
	streamSummaryInfo = "\x05HwpSummaryInformation"
	sectionPrefix     = "BodyText/Section"
	binDataPrefix     = "BinData/"
)

var (
	// ErrNotContainer reports input that is not an OLE compound file at
	// all.
	ErrNotContainer = errors.New("hwpdoc: not a compound-file container")
	// ErrNotHWP reports a compound file whose FileHeader stream is
	// missing or carries the wrong signature.
	ErrNotHWP = errors.New("hwpdoc: missing or invalid file header")
	// ErrEncrypted reports a password-protected or DRM-distributed
	// document, which cannot be read.
	ErrEncrypted = errors.New("hwpdoc: document is encrypted")
	// ErrStreamNotFound reports a stream name absent from the container.
	ErrStreamNotFound = errors.New("hwpdoc: stream not found")
)

// FileHeader is the decoded header of an open document.
type FileHeader struct {
	Version     string
	Compressed  bool
	Encrypted   bool
	Distributed bool
}

// Reader holds a parsed container: every stream slurped into memory,
// the decoded file header and any document metadata found in the
// summary-information property set.
type Reader struct {
	header   FileHeader
	streams  map[string][]byte
	sections []string // BodyText stream names in section order
	binaries []binEntry
	meta     model.Metadata
	warnings []string
}

// Open reads the document at path.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}

// FromBytes parses a document already in memory.
func FromBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data))
}

// NewReader parses the container from src. It fails only for
// container-level problems: not a compound file, no HWP header, or an
// encrypted document. Stream-level damage surfaces later as warnings.
func NewReader(src io.ReaderAt) (*Reader, error) {
	cfb, err := mscfb.New(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotContainer, err)
	}

	r := &Reader{streams: make(map[string][]byte)}
	props := msoleps.New()
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		if msoleps.IsMSOLEPS(entry.Initial) && entry.Name == streamSummaryInfo {
			if perr := props.Reset(cfb); perr != nil {
				r.warnf("summary information: %v", perr)
			} else {
				r.applyProps(props)
			}
			continue
		}
		path := entry.Name
		if len(entry.Path) > 0 {
			path = strings.Join(entry.Path, "/") + "/" + entry.Name
		}
		buf, rerr := io.ReadAll(entry)
		if rerr != nil {
			r.warnf("stream %s: %v", path, rerr)
			continue
		}
		r.streams[path] = buf
	}

	if err := r.parseFileHeader(); err != nil {
		return nil, err
	}
	r.collectSections()
	r.collectBinaries()
	return r, nil
}

func (r *Reader) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *Reader) parseFileHeader() error {
	hdr, ok := r.streams[streamFileHeader]
	if !ok {
		return ErrNotHWP
	}
	if len(hdr) < headerMinLen || !bytes.HasPrefix(hdr, []byte(headerSignature)) {
		return fmt.Errorf("%w: bad signature", ErrNotHWP)
	}
	r.header.Version = fmt.Sprintf("%d.%d.%d.%d",
		hdr[headerVersionOffset+3], hdr[headerVersionOffset+2],
		hdr[headerVersionOffset+1], hdr[headerVersionOffset])
	flags := binary.LittleEndian.Uint32(hdr[headerFlagsOffset:])
	r.header.Compressed = flags&flagCompressed != 0
	r.header.Encrypted = flags&flagEncrypted != 0
	r.header.Distributed = flags&flagDistributed != 0
	if r.header.Encrypted || r.header.Distributed {
		return fmt.Errorf("%w (version %s)", ErrEncrypted, r.header.Version)
	}
	return nil
}

func (r *Reader) collectSections() {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", sectionPrefix, i)
		if _, ok := r.streams[name]; !ok {
			break
		}
		r.sections = append(r.sections, name)
	}
}

// collectBinaries orders BinData streams by name so entry numbering is
// deterministic and matches the 1-based ids picture components use.
func (r *Reader) collectBinaries() {
	var names []string
	for name := range r.streams {
		if strings.HasPrefix(name, binDataPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		r.binaries = append(r.binaries, binEntry{
			name: strings.TrimPrefix(name, binDataPrefix),
			data: r.streams[name],
		})
	}
}

func (r *Reader) applyProps(props *msoleps.Reader) {
	for _, prop := range props.Property {
		if prop.T == nil {
			continue
		}
		val := prop.T.String()
		if val == "" {
			continue
		}
		switch prop.Name {
		case "Title":
			r.meta.Title = val
		case "Author":
			r.meta.Author = val
		case "Subject":
			r.meta.Subject = val
		case "Keywords":
			r.meta.Keywords = model.SplitKeywords(val)
		default:
			if r.meta.Custom == nil {
				r.meta.Custom = make(map[string]string)
			}
			r.meta.Custom[prop.Name] = val
		}
	}
}

// FileHeader returns the decoded header.
func (r *Reader) FileHeader() FileHeader {
	return r.header
}

// SectionCount reports how many body-text sections the container holds.
func (r *Reader) SectionCount() int {
	return len(r.sections)
}

// StreamNames lists every stream in the container, sorted.
func (r *Reader) StreamNames() []string {
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadStream returns the raw bytes of a named stream.
func (r *Reader) ReadStream(name string) ([]byte, error) {
	data, ok := r.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, name)
	}
	return data, nil
}

// Warnings returns the problems recovered from so far, in the order
// encountered.
func (r *Reader) Warnings() []string {
	return r.warnings
}

// Document parses the whole container.
func (r *Reader) Document() (*model.Document, error) {
	return r.DocumentContext(context.Background())
}

// DocumentContext parses the whole container: DocInfo styles, binary
// resources and every body section. Sections parse concurrently but
// their blocks join the document in section order, separated by page
// breaks. The context is observed per section; on cancellation the
// first ctx error is returned.
func (r *Reader) DocumentContext(ctx context.Context) (*model.Document, error) {
	doc := model.NewDocument("hwp")
	doc.Metadata = r.meta
	doc.Metadata.Version = r.header.Version

	info := r.parseDocInfoStream()
	doc.Styles = info.styles
	if len(info.faceNames) > 0 {
		if doc.Metadata.Custom == nil {
			doc.Metadata.Custom = make(map[string]string)
		}
		doc.Metadata.Custom["fonts"] = strings.Join(info.faceNames, ", ")
	}
	if info.sections > 0 && info.sections != len(r.sections) {
		r.warnf("document declares %d sections, container has %d", info.sections, len(r.sections))
	}

	var resWarnings []string
	doc.Resources, resWarnings = extractResources(r.binaries)
	r.warnings = append(r.warnings, resWarnings...)

	type sectionResult struct {
		blocks   []model.Block
		warnings []string
	}
	results := make([]sectionResult, len(r.sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range r.sections {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := &results[i]
			plain, err := filters.DecompressIfNeeded(r.streams[name], r.header.Compressed)
			if err != nil {
				res.blocks = append(res.blocks, &model.Unknown{Err: err})
				res.warnings = append(res.warnings, fmt.Sprintf("section %s: %v", name, err))
				return nil
			}
			blocks, warns, berr := buildSection(plain)
			res.blocks = blocks
			for _, w := range warns {
				res.warnings = append(res.warnings, fmt.Sprintf("section %s: %s", name, w))
			}
			if berr != nil {
				res.warnings = append(res.warnings, fmt.Sprintf("section %s: %v", name, berr))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, res := range results {
		if i > 0 {
			doc.AddBlock(&model.PageBreak{})
		}
		for _, blk := range res.blocks {
			doc.AddBlock(blk)
		}
		r.warnings = append(r.warnings, res.warnings...)
	}
	return doc, nil
}

func (r *Reader) parseDocInfoStream() *docInfo {
	data, ok := r.streams[streamDocInfo]
	if !ok {
		r.warnf("container has no DocInfo stream")
		return &docInfo{styles: make(map[int]model.CharStyle)}
	}
	plain, err := filters.DecompressIfNeeded(data, r.header.Compressed)
	if err != nil {
		r.warnf("DocInfo: %v", err)
		return &docInfo{styles: make(map[int]model.CharStyle)}
	}
	info, warns, perr := parseDocInfo(plain)
	for _, w := range warns {
		r.warnf("DocInfo: %s", w)
	}
	if perr != nil {
		r.warnf("DocInfo: %v", perr)
	}
	return info
}
