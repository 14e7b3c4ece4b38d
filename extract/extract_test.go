package extract

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstrack/newstrack/fetch"
	"github.com/newstrack/newstrack/outlet"
)

// stubPager serves canned HTML snapshots keyed by URL, recording visits.
type stubPager struct {
	pages   map[string]string
	current string
	visited []string
	navErr  error
}

func (p *stubPager) Navigate(_ context.Context, url string) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.current = url
	p.visited = append(p.visited, url)
	return nil
}

func (p *stubPager) NavigateQuick(ctx context.Context, url string) error {
	return p.Navigate(ctx, url)
}

func (p *stubPager) Document(_ context.Context) (*goquery.Document, error) {
	html, ok := p.pages[p.current]
	if !ok {
		return nil, errors.New("no snapshot for " + p.current)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// stubSession hands out a single stub pager; err simulates pool failure.
type stubSession struct {
	pager *stubPager
	err   error
}

func (s *stubSession) WithPage(ctx context.Context, fn func(Pager) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(s.pager)
}

func testRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// TestRun_SpecializedStrategy verifies a known outlet runs its dedicated
// recipe and reports the method
func TestRun_SpecializedStrategy(t *testing.T) {
	home := `<html><body>
		<a class="author-name" href="/author/meera-joshi">Meera Joshi</a>
		<span class="author-name">Share</span>
	</body></html>`
	pager := &stubPager{pages: map[string]string{"https://www.aajtak.in": home}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(fetch.NewWithClient(srv.Client()), &stubSession{pager: pager})
	prof := outlet.Classify("www.aajtak.in")

	result := e.Run(context.Background(), "https://www.aajtak.in", prof, testRand())

	assert.Equal(t, "Specialized (aajtak)", result.Method)
	require.Len(t, result.Candidates, 1, "Share must be rejected inline")
	assert.Equal(t, "Meera Joshi", result.Candidates[0].Name)
	assert.Equal(t, "https://www.aajtak.in/author/meera-joshi", result.Candidates[0].ProfileURL)
	assert.NotEmpty(t, result.Candidates[0].SectionHint)
}

// TestRun_FallsBackToUniversal verifies a browser failure in the
// specialized rung escalates to the static universal pass
func TestRun_FallsBackToUniversal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><a rel="author" href="/people/jane">Jane Roe</a></body></html>`))
	}))
	defer srv.Close()

	e := New(fetch.NewWithClient(srv.Client()), &stubSession{err: errors.New("browser pool exhausted")})
	prof := outlet.Classify("www.ndtv.com")

	result := e.Run(context.Background(), srv.URL, prof, testRand())

	assert.Equal(t, "Universal", result.Method)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Jane Roe", result.Candidates[0].Name)
}

// TestRun_StaticLastResort verifies the narrow static re-fetch rung fires
// when rendered passes find nothing
func TestRun_StaticLastResort(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		// No generic-selector matches; only the narrow [class*='author']
		// selector finds the byline.
		w.Write([]byte(`<html><body><div class="story-author">Ravi Shankar</div></body></html>`))
	}))
	defer srv.Close()

	pager := &stubPager{pages: map[string]string{srv.URL: `<html><body></body></html>`}}
	e := New(fetch.NewWithClient(srv.Client()), &stubSession{pager: pager})

	result := e.Run(context.Background(), srv.URL, outlet.Generic(), testRand())

	assert.Equal(t, "Static", result.Method)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Ravi Shankar", result.Candidates[0].Name)
	assert.GreaterOrEqual(t, calls, 2, "universal and last-resort rungs both fetch statically")
}

// TestRun_EmptyResult verifies a site with nothing to find yields an empty
// result rather than an error
func TestRun_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>Nothing here</p></body></html>`))
	}))
	defer srv.Close()

	pager := &stubPager{pages: map[string]string{srv.URL: `<html><body></body></html>`}}
	e := New(fetch.NewWithClient(srv.Client()), &stubSession{pager: pager})

	result := e.Run(context.Background(), srv.URL, outlet.Generic(), testRand())

	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.Method)
}

// TestSubCrawl_VisitsAndHarvests verifies the bounded article crawl
// collects bylines and skips failing pages
func TestSubCrawl_VisitsAndHarvests(t *testing.T) {
	pager := &stubPager{pages: map[string]string{
		"https://example.com/news/one": `<html><body><a class="byline" href="/author/a">Asha Patel</a></body></html>`,
		"https://example.com/news/two": `<html><body><span class="byline">Bina Singh</span></body></html>`,
		// /news/broken has no snapshot: Document fails, page is skipped
	}}

	links := []string{
		"https://example.com/news/one",
		"https://example.com/news/broken",
		"https://example.com/news/two",
	}
	ex := &Extractor{}
	raws := ex.subCrawl(context.Background(), pager, links, []string{".byline"}, mustURL(t, "https://example.com"), nil)

	names := rawNames(raws)
	assert.Equal(t, []string{"Asha Patel", "Bina Singh"}, names)
	assert.Len(t, pager.visited, 3, "broken page is still navigated to once")
}

// TestSubCrawl_RespectsVisitCap verifies no more than maxVisitedLinks
// pages are harvested
func TestSubCrawl_RespectsVisitCap(t *testing.T) {
	pages := make(map[string]string)
	var links []string
	for i := 0; i < maxVisitedLinks+10; i++ {
		link := "https://example.com/news/" + strings.Repeat("a", i+1)
		pages[link] = `<html><body><span class="byline">Writer ` + strings.Repeat("A", i+1) + `</span></body></html>`
		links = append(links, link)
	}
	pager := &stubPager{pages: pages}

	ex := &Extractor{}
	raws := ex.subCrawl(context.Background(), pager, links, []string{".byline"}, mustURL(t, "https://example.com"), nil)

	assert.Len(t, raws, maxVisitedLinks)
}

// TestRobots_Disallow verifies disallowed paths are skipped and foreign
// hosts pass through
func TestRobots_Disallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/robots.txt", r.URL.Path)
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	robots := FetchRobots(context.Background(), srv.Client(), srv.URL)
	require.NotNil(t, robots)

	assert.True(t, robots.Allowed(srv.URL+"/news/story"))
	assert.False(t, robots.Allowed(srv.URL+"/private/story"))
	assert.True(t, robots.Allowed("https://elsewhere.example/private/story"),
		"foreign hosts are outside this robots.txt's authority")
}

// TestRobots_NilPermitsEverything verifies the nil gate
func TestRobots_NilPermitsEverything(t *testing.T) {
	var robots *Robots
	assert.True(t, robots.Allowed("https://example.com/anything"))
}
