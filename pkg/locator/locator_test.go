package locator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"panel-brief/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform serves canned bodies per path prefix; anything unknown is a 404.
type fakePlatform struct {
	api      string
	appAPI   string
	show     string
	episode  string
	feed     string
	status   int
	stallAPI bool
	calls    atomic.Int32
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	if f.stallAPI && strings.Contains(r.URL.Path, "/api/") {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		return
	}
	var body string
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/podcast/"):
		body = f.api
	case strings.HasPrefix(r.URL.Path, "/app/api/v1/podcast/"):
		body = f.appAPI
	case strings.HasPrefix(r.URL.Path, "/podcast/"):
		body = f.show
	case strings.HasPrefix(r.URL.Path, "/episode/"):
		body = f.episode
	case r.URL.Path == "/feed.xml":
		body = f.feed
	}
	if body == "" {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newTestLocator(t *testing.T, f *fakePlatform) *Locator {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestLocate_AnchorFallback(t *testing.T) {
	f := &fakePlatform{
		show: `<html><body>
<a href="/episode/abc123">Title One</a>
<a href="/episode/xyz789">Title Two</a>
</body></html>`,
	}
	l := newTestLocator(t, f)

	res := l.LocateDetailed(context.Background(), "show1", 5)
	assert.Equal(t, StrategyAnchor, res.Strategy)
	assert.Equal(t, []domain.Episode{
		{ID: "abc123", Title: "Title One"},
		{ID: "xyz789", Title: "Title Two"},
	}, res.Episodes)
	for _, ep := range res.Episodes {
		assert.Empty(t, ep.AudioURL)
	}
}

func TestLocate_StalledAPIFallsBackToPage(t *testing.T) {
	f := &fakePlatform{
		stallAPI: true,
		show:     `<a href="/episode/abc123">Title One</a>`,
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	l := New(Config{BaseURL: srv.URL, Timeout: 150 * time.Millisecond})

	start := time.Now()
	res := l.LocateDetailed(context.Background(), "show1", 5)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StrategyAnchor, res.Strategy)
	assert.Equal(t, []domain.Episode{{ID: "abc123", Title: "Title One"}}, res.Episodes)
	assert.GreaterOrEqual(t, f.calls.Load(), int32(2), "API endpoints were tried first")
}

func TestLocate_APIRecordsInSourceOrder(t *testing.T) {
	f := &fakePlatform{
		api: `{"data":[
			{"eid":"e1","title":"First","enclosure":{"url":"https://media.example.com/e1.m4a"}},
			{"eid":"e2","title":"Second","audioUrl":"https://media.example.com/e2.mp3"},
			{"eid":"e3"}
		]}`,
		show: `<a href="/episode/zzz">should not be reached</a>`,
	}
	l := newTestLocator(t, f)

	res := l.LocateDetailed(context.Background(), "show1", 10)
	assert.Equal(t, StrategyAPI, res.Strategy)
	assert.Equal(t, []domain.Episode{
		{ID: "e1", Title: "First", AudioURL: "https://media.example.com/e1.m4a"},
		{ID: "e2", Title: "Second", AudioURL: "https://media.example.com/e2.mp3"},
		{ID: "e3", Title: "Episode_e3"},
	}, res.Episodes)
}

func TestLocate_APICapsAtLimit(t *testing.T) {
	f := &fakePlatform{
		api: `[{"id":1,"title":"a"},{"id":2,"title":"b"},{"id":3,"title":"c"}]`,
	}
	l := newTestLocator(t, f)

	eps := l.Locate(context.Background(), "show1", 2)
	require.Len(t, eps, 2)
	assert.Equal(t, "1", eps[0].ID)
	assert.Equal(t, "2", eps[1].ID)
}

func TestLocate_SecondEndpointUsedWhenFirstFails(t *testing.T) {
	f := &fakePlatform{
		appAPI: `{"data":{"episodes":[{"eid":"v1","title":"From App API"}]}}`,
	}
	l := newTestLocator(t, f)

	res := l.LocateDetailed(context.Background(), "show1", 5)
	assert.Equal(t, StrategyAPI, res.Strategy)
	assert.Equal(t, []domain.Episode{{ID: "v1", Title: "From App API"}}, res.Episodes)
}

func TestLocate_ScriptBeforeAnchors(t *testing.T) {
	f := &fakePlatform{
		api: `{"unexpected":"shape"}`,
		show: `<html><head>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"podcast":{"episodes":[
	{"eid":"s1","title":"Script One","audio":"https://media.example.com/s1.mp3"},
	{"eid":"s2"}
]}}}}</script></head>
<body><a href="/episode/a1">Anchor</a></body></html>`,
	}
	l := newTestLocator(t, f)

	res := l.LocateDetailed(context.Background(), "show1", 5)
	assert.Equal(t, StrategyScript, res.Strategy)
	// Script records without a title are dropped.
	assert.Equal(t, []domain.Episode{
		{ID: "s1", Title: "Script One", AudioURL: "https://media.example.com/s1.mp3"},
	}, res.Episodes)
}

func TestLocate_AllStrategiesFail(t *testing.T) {
	f := &fakePlatform{status: http.StatusInternalServerError}
	l := newTestLocator(t, f)

	res := l.LocateDetailed(context.Background(), "show1", 5)
	assert.Equal(t, StrategyNone, res.Strategy)
	assert.NotNil(t, res.Episodes)
	assert.Empty(t, res.Episodes)
}

func TestLocate_PageWithoutEpisodes(t *testing.T) {
	f := &fakePlatform{show: `<html><body><p>nothing here</p></body></html>`}
	l := newTestLocator(t, f)

	assert.Empty(t, l.Locate(context.Background(), "show1", 5))
}

func TestLocate_NonPositiveLimitDoesNoIO(t *testing.T) {
	f := &fakePlatform{show: `<a href="/episode/abc123">Title One</a>`}
	l := newTestLocator(t, f)

	assert.Empty(t, l.Locate(context.Background(), "show1", 0))
	assert.Empty(t, l.Locate(context.Background(), "show1", -3))
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestLocate_CancelledContext(t *testing.T) {
	f := &fakePlatform{show: `<a href="/episode/abc123">Title One</a>`}
	l := newTestLocator(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, l.Locate(ctx, "show1", 5))
}

func TestResolveAudioURL(t *testing.T) {
	f := &fakePlatform{
		episode: `<script>{"audioUrl":"https://media.example.com/ep.m4a"}</script>`,
	}
	l := newTestLocator(t, f)

	got, ok := l.ResolveAudioURL(context.Background(), "abc123")
	require.True(t, ok)
	assert.Equal(t, "https://media.example.com/ep.m4a", got)
}

func TestResolveAudioURL_Unavailable(t *testing.T) {
	l := newTestLocator(t, &fakePlatform{})

	_, ok := l.ResolveAudioURL(context.Background(), "abc123")
	assert.False(t, ok)

	_, ok = l.ResolveAudioURL(context.Background(), "  ")
	assert.False(t, ok)
}

func TestFromFeed(t *testing.T) {
	f := &fakePlatform{
		feed: `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Show</title>
<item><title>Ep 2</title><guid>g2</guid><enclosure url="https://media.example.com/2.mp3" type="audio/mpeg" length="1"/></item>
<item><title>Ep 1</title><guid>g1</guid><enclosure url="https://media.example.com/1.mp3" type="audio/mpeg" length="1"/></item>
<item><title>Ep 0</title><guid>g0</guid></item>
</channel></rss>`,
	}
	srv := httptest.NewServer(f)
	defer srv.Close()
	l := New(Config{BaseURL: srv.URL})

	eps := l.FromFeed(context.Background(), srv.URL+"/feed.xml", 2)
	assert.Equal(t, []domain.Episode{
		{ID: "g2", Title: "Ep 2", AudioURL: "https://media.example.com/2.mp3"},
		{ID: "g1", Title: "Ep 1", AudioURL: "https://media.example.com/1.mp3"},
	}, eps)

	assert.Empty(t, l.FromFeed(context.Background(), srv.URL+"/missing.xml", 2))
}

func TestDecodeEpisodeList_LooseFieldTypes(t *testing.T) {
	list, ok := decodeEpisodeList([]byte(`{"episodes":[{"id":42,"title":"Numeric","audio":{"nested":true}}]}`))
	require.True(t, ok)
	eps := list.episodes(true, 5)
	assert.Equal(t, []domain.Episode{{ID: "42", Title: "Numeric"}}, eps)
}
