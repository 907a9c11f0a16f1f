// Package locator turns a show identifier into a capped, ordered list of
// episodes, trying the most reliable source first and degrading to
// lower-confidence ones. It never returns an error: when every source is
// unavailable or unrecognisable the result is simply empty, and callers must
// read that as "nothing found right now", not as "the show has no episodes".
package locator

import (
	"context"
	"strings"
	"time"

	"panel-brief/pkg/domain"
	"panel-brief/pkg/httpclient"
	"panel-brief/pkg/sites"

	"github.com/mmcdole/gofeed"
)

// Strategy names the source that produced a result.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyFeed   Strategy = "feed"
	StrategyAPI    Strategy = "api"
	StrategyScript Strategy = "script"
	StrategyAnchor Strategy = "anchor"
)

// Config replaces process-wide settings with explicit values.
type Config struct {
	// BaseURL of the podcast platform; empty means the public origin.
	BaseURL string

	// Timeout bounds every fetch. A timeout counts as the source being unavailable.
	Timeout time.Duration

	// MaxRetries per fetch. Zero keeps the single-attempt behaviour.
	MaxRetries int

	// UserAgent sent with every request; empty means a desktop browser UA.
	UserAgent string
}

// Result is a located episode list plus the strategy that produced it.
type Result struct {
	Episodes []domain.Episode
	Strategy Strategy
}

// Locator discovers episodes of a show. It holds no per-call state and is
// safe to reuse across calls.
type Locator struct {
	site sites.Xiaoyuzhou
	page *httpclient.HTTPClient
	api  *httpclient.HTTPClient
}

// New creates a Locator.
func New(cfg Config) *Locator {
	hc := httpclient.Config{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
	}
	return &Locator{
		site: sites.NewXiaoyuzhou(cfg.BaseURL),
		page: httpclient.NewClient(httpclient.BrowserClient, hc),
		api:  httpclient.NewClient(httpclient.JSONClient, hc),
	}
}

// Site exposes the URL layout in use, e.g. for building a download Referer.
func (l *Locator) Site() sites.Xiaoyuzhou {
	return l.site
}

// Locate returns at most limit episodes of the show, most recent first as
// presented by the source.
func (l *Locator) Locate(ctx context.Context, showID string, limit int) []domain.Episode {
	return l.LocateDetailed(ctx, showID, limit).Episodes
}

// LocateDetailed is Locate plus the name of the strategy that succeeded,
// so callers can warn when a fallback path was used.
//
// Strategies, each tried only when the previous one yields nothing:
//  1. structured API endpoints
//  2. JSON blobs embedded in the show page's scripts
//  3. episode anchors in the show page's HTML (no audio URLs)
func (l *Locator) LocateDetailed(ctx context.Context, showID string, limit int) Result {
	empty := Result{Episodes: []domain.Episode{}, Strategy: StrategyNone}
	showID = strings.TrimSpace(showID)
	if limit <= 0 || showID == "" {
		return empty
	}

	if eps := l.fromAPI(ctx, showID, limit); len(eps) > 0 {
		return Result{Episodes: eps, Strategy: StrategyAPI}
	}

	page, err := l.page.Get(ctx, l.site.ShowPageURL(showID))
	if err != nil || len(page) == 0 {
		return empty
	}

	if eps := fromScripts(string(page), limit); len(eps) > 0 {
		return Result{Episodes: eps, Strategy: StrategyScript}
	}

	if eps := fromAnchors(string(page), limit); len(eps) > 0 {
		return Result{Episodes: eps, Strategy: StrategyAnchor}
	}

	return empty
}

func (l *Locator) fromAPI(ctx context.Context, showID string, limit int) []domain.Episode {
	referer := httpclient.WithReferer(l.site.ShowPageURL(showID))
	for _, endpoint := range l.site.EpisodeListEndpoints(showID, limit) {
		if ctx.Err() != nil {
			return nil
		}
		body, err := l.api.Get(ctx, endpoint, referer)
		if err != nil {
			continue
		}
		list, ok := decodeEpisodeList(body)
		if !ok {
			continue
		}
		if eps := list.episodes(false, limit); len(eps) > 0 {
			return eps
		}
	}
	return nil
}

func fromScripts(page string, limit int) []domain.Episode {
	for _, blob := range sites.ExtractScriptBlobs(page) {
		list, ok := decodeEpisodeList(blob)
		if !ok {
			continue
		}
		if eps := list.episodes(true, limit); len(eps) > 0 {
			return eps
		}
	}
	return nil
}

func fromAnchors(page string, limit int) []domain.Episode {
	eps, err := sites.ExtractEpisodeAnchors(page)
	if err != nil {
		return nil
	}
	if len(eps) > limit {
		eps = eps[:limit]
	}
	return eps
}

// ResolveAudioURL fetches the episode's own page and searches it for an
// audio URL. It reports false when the page is unavailable or no candidate
// sniffs as audio. Each call is one network round trip; callers iterating
// over many episodes should pace themselves.
func (l *Locator) ResolveAudioURL(ctx context.Context, episodeID string) (string, bool) {
	episodeID = strings.TrimSpace(episodeID)
	if episodeID == "" {
		return "", false
	}
	page, err := l.page.Get(ctx, l.site.EpisodePageURL(episodeID), httpclient.WithReferer(l.site.BaseURL+"/"))
	if err != nil {
		return "", false
	}
	return sites.FindAudioURL(string(page))
}

// FromFeed reads an RSS/Atom feed and returns at most limit episodes with
// their enclosure audio URLs. Any failure yields an empty list.
func (l *Locator) FromFeed(ctx context.Context, feedURL string, limit int) []domain.Episode {
	if limit <= 0 || strings.TrimSpace(feedURL) == "" {
		return []domain.Episode{}
	}
	body, err := l.page.Get(ctx, feedURL, httpclient.WithAccept("application/rss+xml, application/xml;q=0.9, */*;q=0.8"))
	if err != nil {
		return []domain.Episode{}
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil || feed == nil {
		return []domain.Episode{}
	}

	eps := make([]domain.Episode, 0, min(limit, len(feed.Items)))
	for _, item := range feed.Items {
		if len(eps) >= limit {
			break
		}
		id := strings.TrimSpace(item.GUID)
		if id == "" {
			id = strings.TrimSpace(item.Link)
		}
		if id == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = sites.ProvisionalTitle(id)
		}
		eps = append(eps, domain.Episode{ID: id, Title: title, AudioURL: enclosureAudio(item)})
	}
	return eps
}

func enclosureAudio(item *gofeed.Item) string {
	var fallback string
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enc.Type), "audio/") {
			return enc.URL
		}
		if fallback == "" {
			fallback = enc.URL
		}
	}
	return fallback
}
