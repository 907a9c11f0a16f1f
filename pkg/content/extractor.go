// Package content extracts readable text from guest research sources:
// web pages and PDF documents such as the event brief.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var ErrTitleNotFound = errors.New("title not found in HTML")

// Page is the readable part of a web page.
type Page struct {
	Title string
	Text  string
}

// ExtractPageText extracts the title and main text of a page. A page with
// no recognisable title still yields its text.
func ExtractPageText(htmlContent string) (Page, error) {
	text, err := ExtractText(htmlContent)
	if err != nil {
		return Page{}, err
	}
	title, err := ExtractTitle(htmlContent)
	if err != nil && !errors.Is(err, ErrTitleNotFound) {
		return Page{}, err
	}
	return Page{Title: title, Text: text}, nil
}

// ExtractText extracts the main article text from HTML content
func ExtractText(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return collapseBlankLines(article.TextContent), nil
}

// ExtractTitle extracts the page title, trying readability first and then
// the document's own title, heading and meta tags.
func ExtractTitle(htmlContent string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, sel := range []string{"title", "h1"} {
		if title := strings.TrimSpace(doc.Find(sel).First().Text()); title != "" {
			return title, nil
		}
	}
	for _, sel := range []string{"meta[property='og:title']", "meta[name='title']"} {
		if title, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title), nil
		}
	}
	return "", ErrTitleNotFound
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
