package locator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// offlineClient fails every request so probes and searches cannot succeed.
func offlineClient() *http.Client {
	return &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host")
	})}
}

// TestLocate_KnownOutlet verifies table hits skip the network entirely
func TestLocate_KnownOutlet(t *testing.T) {
	l := New(WithClient(offlineClient()))

	site, err := l.Locate("The Hindu")

	require.NoError(t, err)
	assert.Equal(t, "https://www.thehindu.com", site)
}

// TestLocate_KnownOutletCaseInsensitive verifies table lookup ignores case
func TestLocate_KnownOutletCaseInsensitive(t *testing.T) {
	l := New(WithClient(offlineClient()))

	site, err := l.Locate("  NDTV  ")

	require.NoError(t, err)
	assert.Equal(t, "https://www.ndtv.com", site)
}

// TestLocate_EmptyName verifies blank input is not found
func TestLocate_EmptyName(t *testing.T) {
	l := New(WithClient(offlineClient()))

	_, err := l.Locate("   ")

	assert.ErrorIs(t, err, ErrNotFound)
}

// TestLocate_SearchResult verifies the result-page scrape returns the first
// acceptable link stripped to its root
func TestLocate_SearchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "Daily Bugle")
		w.Write([]byte(`<html><body>
			<a class="result__a" href="https://twitter.com/dailybugle">Twitter</a>
			<a class="result__a" href="https://www.dailybugle.example/home/index">Daily Bugle</a>
		</body></html>`))
	}))
	defer srv.Close()

	l := New(WithSearchURL(srv.URL))

	site, err := l.Locate("Daily Bugle")

	require.NoError(t, err)
	assert.Equal(t, "https://www.dailybugle.example", site)
}

// TestLocate_SearchSkipsSearchEngineLinks verifies self-referential result
// links are never accepted
func TestLocate_SearchSkipsSearchEngineLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="https://duckduckgo.com/about">About</a>
			<a href="https://www.gothamgazette.example/news">Gotham Gazette</a>
		</body></html>`))
	}))
	defer srv.Close()

	l := New(WithSearchURL(srv.URL))

	site, err := l.Locate("Gotham Gazette")

	require.NoError(t, err)
	assert.Equal(t, "https://www.gothamgazette.example", site)
}

// TestLocate_FailsClosed verifies an unverifiable pattern guess yields
// ErrNotFound instead of a fabricated URL
func TestLocate_FailsClosed(t *testing.T) {
	l := New(WithClient(offlineClient()), WithSearchURL("http://127.0.0.1:0/unreachable"))

	_, err := l.Locate("Completely Unknown Paper")

	assert.ErrorIs(t, err, ErrNotFound)
}

// TestLocate_VerifiedGuess verifies a guess that answers the probe is
// accepted
func TestLocate_VerifiedGuess(t *testing.T) {
	probed := false
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "www.obscureherald.com" {
			probed = true
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
		}
		return nil, errors.New("no route to host")
	})}

	l := New(WithClient(client), WithSearchURL("http://search.invalid/"))

	site, err := l.Locate("Obscure Herald")

	require.NoError(t, err)
	assert.True(t, probed)
	assert.Equal(t, "https://www.obscureherald.com", site)
}

// TestPatternGuess_Slug verifies slug construction
func TestPatternGuess_Slug(t *testing.T) {
	assert.Equal(t, "https://www.obscureherald.com", PatternGuess("Obscure Herald"))
	assert.Equal(t, "https://www.abc7news.com", PatternGuess("ABC-7 News!"))
}
