// Package fetch retrieves raw HTML over plain HTTP and parses it into a
// queryable document tree. No scripts are executed; pages that only
// populate client-side need the browser package instead.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout = 15 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// FetchError describes a failed page fetch. Callers treat it as "try the
// next strategy", not as a fatal pipeline error.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher performs single-shot static page fetches.
type Fetcher struct {
	client *http.Client
}

// New creates a fetcher with the default timeout.
func New() *Fetcher {
	return NewWithClient(&http.Client{Timeout: defaultTimeout})
}

// NewWithClient creates a fetcher around an existing client (tests).
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchDocument GETs a URL and parses the body into a goquery document.
// The response body is decoded to UTF-8 from whatever charset the server
// declares before parsing. Non-2xx responses, timeouts, and network errors
// all return a *FetchError.
func (f *Fetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	// Charset detection sniffs the leading bytes, so buffer the whole body
	// first; falling back to a partially drained stream would truncate it.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	utf8Body, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		// Undetectable charset: parse the raw body and hope for the best.
		utf8Body = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	return doc, nil
}
