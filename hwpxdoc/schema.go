package hwpxdoc

// Unmarshal targets for the package XML. Tags match on local names so
// the hp:/hh:/opf: namespace prefixes used by different writers all
// bind.

type sectionXML struct {
	Paragraphs []paraXML `xml:"p"`
}

type paraXML struct {
	Runs []runXML `xml:"run"`
}

type runXML struct {
	CharPrID *int       `xml:"charPrIDRef,attr"`
	Texts    []string   `xml:"t"`
	Tables   []tableXML `xml:"tbl"`
}

type tableXML struct {
	Rows []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

type tableCellXML struct {
	Span    cellSpanXML `xml:"cellSpan"`
	SubList subListXML  `xml:"subList"`
}

type cellSpanXML struct {
	Col int `xml:"colSpan,attr"`
	Row int `xml:"rowSpan,attr"`
}

type subListXML struct {
	Paragraphs []paraXML `xml:"p"`
}

type headerXML struct {
	CharProperties []charPrXML `xml:"refList>charProperties>charPr"`
}

type charPrXML struct {
	ID        int           `xml:"id,attr"`
	Bold      *struct{}     `xml:"bold"`
	Italic    *struct{}     `xml:"italic"`
	Underline *lineStyleXML `xml:"underline"`
	Strikeout *lineStyleXML `xml:"strikeout"`
}

type lineStyleXML struct {
	Type string `xml:"type,attr"`
}

// set reports whether the line decoration is present and not explicitly
// disabled.
func (l *lineStyleXML) set() bool {
	return l != nil && l.Type != "NONE"
}

type packageXML struct {
	Title   string `xml:"metadata>title"`
	Creator string `xml:"metadata>creator"`
	Subject string `xml:"metadata>subject"`
	Keyword string `xml:"metadata>keyword"`
}
