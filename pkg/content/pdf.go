package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

var (
	ErrEmptyPDFPath    = errors.New("pdf path is empty")
	ErrEmptyPDFContent = errors.New("pdf content is empty")
)

// ExtractTextFromPDFFile extracts the plain text of the PDF at path.
func ExtractTextFromPDFFile(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPDFPath
	}

	file, doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	return plainText(doc)
}

// ExtractTextFromPDFReader extracts the plain text of a PDF read from r,
// e.g. a downloaded brief.
func ExtractTextFromPDFReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyPDFContent
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	return plainText(doc)
}

func plainText(doc *pdf.Reader) (string, error) {
	text, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return buf.String(), nil
}
