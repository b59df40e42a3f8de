// Package pdf extracts the parts of a manuscript PDF the recommender needs.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF yields no extractable text, as with
// scanned manuscripts.
var ErrNoText = errors.New("no extractable text in PDF")

// DefaultMaxPages bounds how much of a manuscript is read.
const DefaultMaxPages = 3

// ReadManuscript extracts text from the first maxPages pages of the PDF at
// filePath and splits it into title, abstract and keywords.
func ReadManuscript(filePath string, maxPages int) (Manuscript, error) {
	text, err := ExtractText(filePath, maxPages)
	if err != nil {
		return Manuscript{}, fmt.Errorf("reading %s: %w", filePath, err)
	}
	if strings.TrimSpace(text) == "" {
		return Manuscript{}, fmt.Errorf("%s: %w", filePath, ErrNoText)
	}
	return ParseManuscript(text), nil
}

// ExtractText extracts all text from the first N pages of a PDF.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return pageText(r, maxPages), nil
}

// ExtractTextReader extracts text from a PDF reader.
func ExtractTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", err
	}
	return pageText(pdfReader, maxPages), nil
}

// pageText concatenates the plain text of the first maxPages pages. Pages
// that fail to decode are skipped.
func pageText(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String()
}
