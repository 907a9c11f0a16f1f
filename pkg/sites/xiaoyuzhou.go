package sites

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"panel-brief/pkg/domain"

	"github.com/PuerkitoBio/goquery"
)

// XiaoyuzhouBaseURL is the public web origin of the podcast platform.
const XiaoyuzhouBaseURL = "https://www.xiaoyuzhoufm.com"

// Xiaoyuzhou describes the URL layout of xiaoyuzhoufm.com.
// BaseURL is overridable so tests can point it at a local server.
type Xiaoyuzhou struct {
	BaseURL string
}

// NewXiaoyuzhou returns the layout rooted at baseURL, or at the public
// origin when baseURL is empty.
func NewXiaoyuzhou(baseURL string) Xiaoyuzhou {
	if baseURL == "" {
		baseURL = XiaoyuzhouBaseURL
	}
	return Xiaoyuzhou{BaseURL: strings.TrimRight(baseURL, "/")}
}

// ShowPageURL is the HTML listing page of a show.
func (x Xiaoyuzhou) ShowPageURL(showID string) string {
	return x.BaseURL + "/podcast/" + url.PathEscape(showID)
}

// EpisodePageURL is the HTML page of a single episode.
func (x Xiaoyuzhou) EpisodePageURL(episodeID string) string {
	return x.BaseURL + "/episode/" + url.PathEscape(episodeID)
}

// EpisodeListEndpoints are the structured API endpoints, most preferred first.
func (x Xiaoyuzhou) EpisodeListEndpoints(showID string, limit int) []string {
	id := url.PathEscape(showID)
	return []string{
		fmt.Sprintf("%s/api/podcast/%s/episodes?limit=%d", x.BaseURL, id, limit),
		fmt.Sprintf("%s/app/api/v1/podcast/%s/episodes?limit=%d", x.BaseURL, id, limit),
	}
}

var (
	// JS assignments of server-rendered state.
	stateAssignmentPattern = regexp.MustCompile(`window\.__(?:INITIAL_STATE|NEXT_DATA|NUXT|APOLLO_STATE)__\s*=\s*`)

	// Bare "episodes": [ ... ] literals inside any script payload.
	episodesLiteralPattern = regexp.MustCompile(`"episodes"\s*:\s*\[`)

	// Path of an episode page, relative or absolute.
	episodePathPattern = regexp.MustCompile(`^(?:https?://[^/]+)?/episode/([A-Za-z0-9]+)/?(?:[?#].*)?$`)

	// Raw href occurrences; catches links the DOM pass cannot see (inside scripts, templates).
	episodeHrefPattern = regexp.MustCompile(`href="(?:https?://[^/"]+)?/episode/([A-Za-z0-9]+)"`)
)

// ExtractScriptBlobs returns the JSON payloads embedded in the page that
// may carry an episode list, in the order they should be tried:
//  1. <script id="__NEXT_DATA__"> contents
//  2. window.__*__ = {...} assignments
//  3. "episodes": [...] literals
//
// Each blob is exactly one JSON value; trailing script text is ignored.
// Payloads that are not valid JSON are skipped.
func ExtractScriptBlobs(page string) []json.RawMessage {
	var blobs []json.RawMessage

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page)); err == nil {
		doc.Find("script#__NEXT_DATA__").Each(func(_ int, sel *goquery.Selection) {
			if raw, ok := decodeFirstValue(sel.Text()); ok {
				blobs = append(blobs, raw)
			}
		})
	}

	for _, loc := range stateAssignmentPattern.FindAllStringIndex(page, -1) {
		if raw, ok := decodeFirstValue(page[loc[1]:]); ok {
			blobs = append(blobs, raw)
		}
	}

	for _, loc := range episodesLiteralPattern.FindAllStringIndex(page, -1) {
		// loc[1]-1 is the opening bracket.
		if raw, ok := decodeFirstValue(page[loc[1]-1:]); ok {
			blobs = append(blobs, raw)
		}
	}

	return blobs
}

func decodeFirstValue(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}

// ExtractEpisodeAnchors finds links to episode pages.
//
// The DOM pass takes the visible link text as a provisional title; the raw
// pass picks up any remaining href="/episode/<id>" occurrences and titles
// them Episode_<id>. An id seen once is never added again. AudioURL is
// never set here.
func ExtractEpisodeAnchors(page string) ([]domain.Episode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var result []domain.Episode
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := episodePathPattern.FindStringSubmatch(strings.TrimSpace(href))
		if m == nil {
			return
		}
		id := m[1]
		if seen[id] {
			return
		}
		seen[id] = true

		title := collapseWhitespace(link.Text())
		if title == "" {
			title, _ = link.Attr("title")
			title = strings.TrimSpace(title)
		}
		if title == "" {
			title = ProvisionalTitle(id)
		}
		result = append(result, domain.Episode{ID: id, Title: title})
	})

	for _, m := range episodeHrefPattern.FindAllStringSubmatch(page, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, domain.Episode{ID: id, Title: ProvisionalTitle(id)})
	}

	return result, nil
}

// ProvisionalTitle is used when a source exposes an id but no title.
func ProvisionalTitle(id string) string {
	return "Episode_" + id
}

var audioPatterns = []struct {
	re     *regexp.Regexp
	isJSON bool
}{
	{regexp.MustCompile(`"audioUrl"\s*:\s*"((?:[^"\\]|\\.)+)"`), true},
	{regexp.MustCompile(`"audio"\s*:\s*"((?:[^"\\]|\\.)+)"`), true},
	{regexp.MustCompile(`src="([^"]+\.mp3[^"]*)"`), false},
	{regexp.MustCompile(`https?://[^"'\s<>]+\.(?:mp3|m4a)[^"'\s<>]*`), false},
}

// FindAudioURL searches an episode page for its audio URL, in priority
// order: "audioUrl"/"audio" JSON fields, src="...mp3..." attributes, then
// any bare .mp3/.m4a URL. The first candidate that sniffs as audio wins.
func FindAudioURL(page string) (string, bool) {
	for _, p := range audioPatterns {
		for _, m := range p.re.FindAllStringSubmatch(page, -1) {
			candidate := m[0]
			if len(m) > 1 {
				candidate = m[1]
			}
			if p.isJSON {
				candidate = unquoteJSON(candidate)
			} else {
				candidate = html.UnescapeString(unescapeSlashes(candidate))
			}
			candidate = strings.Trim(candidate, `"'`)
			if looksLikeAudio(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func looksLikeAudio(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "mp3") || strings.Contains(lower, "m4a") || strings.Contains(lower, "audio")
}

func unquoteJSON(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return unescapeSlashes(s)
	}
	return out
}

func unescapeSlashes(s string) string {
	s = strings.ReplaceAll(s, `\u002F`, "/")
	s = strings.ReplaceAll(s, `\u002f`, "/")
	return strings.ReplaceAll(s, `\/`, "/")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
