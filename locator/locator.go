// Package locator resolves a news outlet's name to its root website URL.
// Resolution tries a static table of well-known outlets first, then a
// DuckDuckGo result-page scrape, then a pattern guess verified by a
// reachability probe. Unverified guesses are treated as not found rather
// than handed to the extraction stage.
package locator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotFound is returned when no reachable website could be resolved for
// an outlet name.
var ErrNotFound = errors.New("no website found for outlet")

const (
	searchTimeout = 10 * time.Second
	probeTimeout  = 5 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// knownOutlets maps lowercase outlet names to their root URLs. Exact
// case-insensitive matches here skip the network entirely.
var knownOutlets = map[string]string{
	"ndtv":               "https://www.ndtv.com",
	"aaj tak":            "https://www.aajtak.in",
	"aajtak":             "https://www.aajtak.in",
	"the hindu":          "https://www.thehindu.com",
	"times of india":     "https://timesofindia.indiatimes.com",
	"indian express":     "https://indianexpress.com",
	"the indian express": "https://indianexpress.com",
	"hindustan times":    "https://www.hindustantimes.com",
	"news18":             "https://www.news18.com",
	"bbc":                "https://www.bbc.com",
	"bbc news":           "https://www.bbc.com",
	"cnn":                "https://www.cnn.com",
	"new york times":     "https://www.nytimes.com",
	"the new york times": "https://www.nytimes.com",
	"the guardian":       "https://www.theguardian.com",
	"guardian":           "https://www.theguardian.com",
	"reuters":            "https://www.reuters.com",
}

// socialDomains are never acceptable as an outlet's official site.
var socialDomains = []string{
	"facebook.com", "twitter.com", "x.com", "instagram.com", "youtube.com",
	"linkedin.com", "wikipedia.org",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Locator resolves outlet names to root URLs.
type Locator struct {
	client    *http.Client
	searchURL string
}

// Option configures a Locator.
type Option func(*Locator)

// WithClient overrides the HTTP client (tests).
func WithClient(c *http.Client) Option {
	return func(l *Locator) { l.client = c }
}

// WithSearchURL overrides the search endpoint (tests).
func WithSearchURL(u string) Option {
	return func(l *Locator) { l.searchURL = u }
}

// New creates a locator with default timeouts.
func New(opts ...Option) *Locator {
	l := &Locator{
		client:    &http.Client{Timeout: searchTimeout},
		searchURL: "https://duckduckgo.com/html/",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate resolves an outlet name to a root URL. Order: known table, search
// scrape, verified pattern guess. First success wins; ErrNotFound when all
// three fail.
func (l *Locator) Locate(outletName string) (string, error) {
	name := strings.TrimSpace(outletName)
	if name == "" {
		return "", ErrNotFound
	}

	if site, ok := knownOutlets[strings.ToLower(name)]; ok {
		return site, nil
	}

	if site, err := l.search(name); err == nil && site != "" {
		return site, nil
	}

	guess := PatternGuess(name)
	if l.reachable(guess) {
		return guess, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// search scrapes the engine's HTML result page for the first plausible
// official-site link.
func (l *Locator) search(name string) (string, error) {
	query := url.Values{"q": {name + " news official website"}}
	req, err := http.NewRequest(http.MethodGet, l.searchURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse search results: %w", err)
	}

	var found string
	doc.Find("a.result__a, a[href^='http']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
			return true
		}
		if !acceptableResult(href) {
			return true
		}
		found = rootOf(href)
		return false
	})

	return found, nil
}

// acceptableResult rejects links back to the search engine itself and links
// to social platforms.
func acceptableResult(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, "duckduckgo") {
		return false
	}
	for _, social := range socialDomains {
		if host == social || strings.HasSuffix(host, "."+social) {
			return false
		}
	}
	return true
}

// rootOf strips the path and tracking query parameters, keeping only
// scheme://host.
func rootOf(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return u.Scheme + "://" + u.Host
}

// PatternGuess builds https://www.{slug}.com from an outlet name by
// lowercasing and stripping non-alphanumerics.
func PatternGuess(name string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
	return "https://www." + slug + ".com"
}

// reachable issues a lightweight probe against a guessed URL. Guesses that
// do not answer are discarded so garbage URLs never reach the scraper.
func (l *Locator) reachable(site string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, site, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// Some sites reject HEAD outright; a GET follow-up settles it.
	if resp.StatusCode >= 400 {
		getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, site, nil)
		if err != nil {
			return false
		}
		getReq.Header.Set("User-Agent", userAgent)
		getResp, err := l.client.Do(getReq)
		if err != nil {
			return false
		}
		defer getResp.Body.Close()
		return getResp.StatusCode < 400
	}
	return true
}
