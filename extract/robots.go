package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
)

const robotsAgent = "newstrack"

// Robots answers whether the sub-crawl may visit a path on the target
// site. A nil *Robots permits everything, which is also the behavior when
// the site publishes no robots.txt.
type Robots struct {
	group *robotstxt.Group
	host  string
}

// FetchRobots loads and parses the robots.txt for a root URL. Failures are
// not errors for the pipeline: the site simply gets no robots gate.
func FetchRobots(ctx context.Context, client *http.Client, rootURL string) *Robots {
	u, err := url.Parse(rootURL)
	if err != nil {
		return nil
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return &Robots{group: data.FindGroup(robotsAgent), host: u.Host}
}

// Allowed reports whether the crawl may fetch the given URL. Links on
// other hosts are outside this robots.txt's authority and pass through.
func (r *Robots) Allowed(link string) bool {
	if r == nil || r.group == nil {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Host != r.host {
		return true
	}
	return r.group.Test(u.Path)
}
