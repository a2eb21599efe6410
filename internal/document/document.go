package document

import (
	"errors"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const malformedDocumentCode = "DOCUMENT_MALFORMED"

// ErrMalformedDocument indicates the document is missing its metadata block
// delimiters and cannot be augmented.
var ErrMalformedDocument = errors.New("document: metadata delimiters not found")

// SourceDocument is a literate document as an ordered sequence of lines with
// a located metadata block. HeaderStart and HeaderEnd index the two delimiter
// lines; body lines follow HeaderEnd.
type SourceDocument struct {
	Path        string
	Lines       []string
	HeaderStart int
	HeaderEnd   int
}

// isDelimiter reports whether a line is a metadata block delimiter: `---` or
// `...` alone at column one.
func isDelimiter(line string) bool {
	return line == "---" || line == "..."
}

// Load reads and parses the document at path.
func Load(path string) (*SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, string(data))
}

// Parse splits content into lines and locates the metadata block. Fewer than
// two delimiter lines is a fatal structural error.
func Parse(path, content string) (*SourceDocument, error) {
	lines := splitLines(content)

	start, end := -1, -1
	for i, line := range lines {
		if !isDelimiter(line) {
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		end = i
		break
	}
	if start < 0 || end < 0 {
		return nil, goerrors.Wrap(ErrMalformedDocument, goerrors.CategoryValidation,
			"document: "+path+" has fewer than two metadata delimiter lines").
			WithTextCode(malformedDocumentCode)
	}

	return &SourceDocument{
		Path:        path,
		Lines:       lines,
		HeaderStart: start,
		HeaderEnd:   end,
	}, nil
}

// Header returns the metadata block lines, delimiters included, verbatim.
func (d *SourceDocument) Header() []string {
	return d.Lines[:d.HeaderEnd+1]
}

// Body returns the lines following the metadata block, verbatim.
func (d *SourceDocument) Body() []string {
	return d.Lines[d.HeaderEnd+1:]
}

// HasCode reports whether the body contains at least one executable chunk
// opener. Prose-only documents receive neither a seed block nor a
// session-info block.
func (d *SourceDocument) HasCode() bool {
	for _, line := range d.Body() {
		if strings.HasPrefix(line, "```{") {
			return true
		}
	}
	return false
}

// IsMalformed reports whether err was raised because a document is missing
// its metadata delimiters.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedDocument)
}

// splitLines breaks content on newlines, dropping a single trailing empty
// element so a final newline does not become a phantom line. Join with "\n"
// and append a final newline to round-trip.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
