package hanmaru

import "strings"

// Warning codes grouping non-fatal problems by origin.
const (
	WarnParse    = "parse"
	WarnResource = "resource"
	WarnMetadata = "metadata"
)

// Warning describes a non-fatal problem encountered during extraction.
// Terminal operations return the accumulated warnings alongside their
// result; a document with warnings is still usable.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// FormatWarnings renders warnings one per line for logging.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n")
}
