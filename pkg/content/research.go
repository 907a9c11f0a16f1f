package content

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/httpclient"
	"panel-brief/pkg/pacer"
)

const (
	maxSourceRunes  = 3000
	maxSectionLines = 12
)

// Fetcher fetches a URL body. httpclient.HTTPClient satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts ...httpclient.Option) ([]byte, error)
}

// Collector gathers research text about guests from the event brief and
// their source pages.
type Collector struct {
	fetch Fetcher
	brief string
	pace  *pacer.Pacer
}

// NewCollector creates a Collector whose source fetches are spaced by gap.
// brief is the event brief text and may be empty; fetch may be nil when
// guests have no source URLs.
func NewCollector(fetch Fetcher, brief string, gap pacer.Config) *Collector {
	return &Collector{fetch: fetch, brief: brief, pace: pacer.New(gap)}
}

// Collect returns what is known about g: the guest's section of the brief
// followed by the readable text of each source URL. Sources that fail are
// logged and skipped; once ctx is done the remaining sources are dropped. An empty result means nothing was found.
func (c *Collector) Collect(ctx context.Context, g domain.Guest) string {
	var parts []string
	if s := GuestSection(c.brief, g.Name); s != "" {
		parts = append(parts, s)
	}
	for _, u := range g.SourceURLs {
		if c.fetch == nil {
			break
		}
		if err := c.pace.Wait(ctx); err != nil {
			break
		}
		text, err := c.source(ctx, u)
		if err != nil {
			log.Printf("Research: skipping %s for %s: %v", u, g.Name, err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (c *Collector) source(ctx context.Context, rawURL string) (string, error) {
	body, err := c.fetch.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	var text string
	if isPDF(rawURL) {
		text, err = ExtractTextFromPDFReader(bytes.NewReader(body))
		if err != nil {
			return "", err
		}
	} else {
		page, err := ExtractPageText(string(body))
		if err != nil {
			return "", err
		}
		text = page.Text
		if page.Title != "" {
			text = fmt.Sprintf("%s\n%s", page.Title, text)
		}
	}
	return truncateRunes(strings.TrimSpace(text), maxSourceRunes), nil
}

// GuestSection returns the lines of brief that introduce name: each line
// mentioning the name plus the lines that follow it up to a blank line.
func GuestSection(brief, name string) string {
	if brief == "" || name == "" {
		return ""
	}
	lines := strings.Split(brief, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		if !strings.Contains(lines[i], name) {
			continue
		}
		end := i + 1
		for end < len(lines) && end-i < maxSectionLines && strings.TrimSpace(lines[end]) != "" {
			end++
		}
		for _, l := range lines[i:end] {
			out = append(out, strings.TrimSpace(l))
		}
		i = end - 1
	}
	return strings.Join(out, "\n")
}

func isPDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
