// Package extract runs the byline-extraction cascade against a resolved
// outlet website. A registry of named strategies covers known outlets;
// unknown hosts get the generic strategy. Escalation order on emptiness or
// failure: specialized strategy, generic strategy, last-resort narrow
// static re-fetch. Strategy errors never abort a request, they only move
// it down the cascade.
package extract

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/newstrack/newstrack/clean"
	"github.com/newstrack/newstrack/fetch"
	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/outlet"
)

// Sub-crawl bounds: how many article links a strategy may collect from the
// root page and how many of those it may actually visit.
const (
	maxCollectedLinks = 30
	maxVisitedLinks   = 15
)

// Pager is the slice of a rendered browser page the strategies need:
// navigation and a parsed snapshot of the live DOM.
type Pager interface {
	Navigate(ctx context.Context, url string) error
	NavigateQuick(ctx context.Context, url string) error
	Document(ctx context.Context) (*goquery.Document, error)
}

// Session grants scoped access to a pooled browser page.
type Session interface {
	WithPage(ctx context.Context, fn func(Pager) error) error
}

// Extractor drives the strategy cascade.
type Extractor struct {
	fetcher *fetch.Fetcher
	session Session
	client  *http.Client
}

// New creates an extractor over a static fetcher and a browser session
// provider. The plain client is used for robots.txt lookups.
func New(fetcher *fetch.Fetcher, session Session) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		session: session,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Result is the raw outcome of a cascade run, before cleaning.
type Result struct {
	Candidates []journalist.Raw
	// Method names which rung of the cascade produced the candidates, e.g.
	// "Specialized (ndtv)", "Universal", or "Static".
	Method string
}

// Run executes the cascade for one outlet. The rand source feeds the
// weighted section draws so callers can fix it for reproducibility.
func (e *Extractor) Run(ctx context.Context, rootURL string, prof *outlet.Profile, rng *rand.Rand) Result {
	if prof.Specialized() {
		if raws := e.runSpecialized(ctx, rootURL, prof, rng); len(raws) > 0 {
			return Result{Candidates: raws, Method: "Specialized (" + prof.Key + ")"}
		}
		log.Printf("INFO: Specialized strategy %q found nothing, falling back to universal", prof.Key)
	}

	if raws := e.runGeneric(ctx, rootURL, prof, rng); len(raws) > 0 {
		return Result{Candidates: raws, Method: "Universal"}
	}

	if raws := e.lastResortStatic(ctx, rootURL, prof, rng); len(raws) > 0 {
		return Result{Candidates: raws, Method: "Static"}
	}

	return Result{}
}

// runSpecialized executes the outlet's dedicated strategy inside one
// scoped browser page. A failure anywhere in the strategy yields an empty
// list; escalation is the caller's job.
func (e *Extractor) runSpecialized(ctx context.Context, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	strategy, ok := strategies[prof.Key]
	if !ok {
		return nil
	}

	var raws []journalist.Raw
	err := e.session.WithPage(ctx, func(pg Pager) error {
		if err := pg.Navigate(ctx, rootURL); err != nil {
			return err
		}
		raws = strategy(e, ctx, pg, rootURL, prof, rng)
		return nil
	})
	if err != nil {
		log.Printf("WARN: Specialized scraper error for %s: %v", prof.Key, err)
		return nil
	}
	return raws
}

// runGeneric is the universal strategy: static DOM parse first, escalating
// to a rendered page when the static pass fails or finds nothing.
func (e *Extractor) runGeneric(ctx context.Context, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)
	generic := outlet.Generic()

	doc, err := e.fetcher.FetchDocument(ctx, rootURL)
	if err == nil {
		raws := Merge(
			AuthorsFromJSONLD(doc),
			AuthorsFromMeta(doc),
			AuthorsFromSelectors(doc, generic.AuthorSelectors, base),
		)
		if raws = e.finishCandidates(raws, prof, rng); len(raws) > 0 {
			return raws
		}
	} else {
		log.Printf("INFO: Static fetch failed for %s, escalating to rendered page: %v", rootURL, err)
	}

	var raws []journalist.Raw
	err = e.session.WithPage(ctx, func(pg Pager) error {
		if err := pg.Navigate(ctx, rootURL); err != nil {
			return err
		}
		doc, err := pg.Document(ctx)
		if err != nil {
			return err
		}
		raws = Merge(
			AuthorsFromJSONLD(doc),
			AuthorsFromSelectors(doc, generic.AuthorSelectors, base),
		)
		return nil
	})
	if err != nil {
		log.Printf("WARN: Universal scraper error for %s: %v", rootURL, err)
		return nil
	}
	return e.finishCandidates(raws, prof, rng)
}

// lastResortStatic re-fetches the root page once more with the narrow
// selector list. This rung exists for pages that render fine statically
// but defeat the wider selector sets.
func (e *Extractor) lastResortStatic(ctx context.Context, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	doc, err := e.fetcher.FetchDocument(ctx, rootURL)
	if err != nil {
		return nil
	}
	base, _ := url.Parse(rootURL)
	raws := Merge(
		AuthorsFromMeta(doc),
		AuthorsFromSelectors(doc, outlet.NarrowAuthorSelectors, base),
	)
	return e.finishCandidates(raws, prof, rng)
}

// finishCandidates applies the shared tail of every strategy: inline
// rejection of known non-person tokens and section-hint assignment.
func (e *Extractor) finishCandidates(raws []journalist.Raw, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	out := raws[:0]
	for _, raw := range raws {
		if clean.Blacklisted(raw.Name) || outletBlacklisted(raw.Name, prof) {
			continue
		}
		if raw.SectionHint == "" {
			raw.SectionHint = hintSection(raw.Name, prof, rng)
		}
		out = append(out, raw)
	}
	return out
}

// hintSection tries keyword heuristics against the candidate text first
// and falls back to the profile's weighted draw.
func hintSection(text string, prof *outlet.Profile, rng *rand.Rand) string {
	if section, ok := outlet.SectionFromKeywords(text); ok {
		return section
	}
	return prof.DrawSection(rng)
}

func outletBlacklisted(name string, prof *outlet.Profile) bool {
	lower := strings.ToLower(name)
	for _, token := range prof.Blacklist {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// subCrawl sequentially visits up to maxVisitedLinks article pages and
// harvests additional bylines. Sub-page failures are logged and skipped;
// they never fail the batch. Links the site's robots.txt disallows are
// not visited.
func (e *Extractor) subCrawl(ctx context.Context, pg Pager, links []string, selectors []string, base *url.URL, robots *Robots) []journalist.Raw {
	var out []journalist.Raw
	visited := 0
	for _, link := range links {
		if visited >= maxVisitedLinks {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if !robots.Allowed(link) {
			log.Printf("INFO: Skipping %s (disallowed by robots.txt)", link)
			continue
		}
		if err := pg.NavigateQuick(ctx, link); err != nil {
			log.Printf("INFO: Skipped article %s: %v", link, err)
			continue
		}
		doc, err := pg.Document(ctx)
		if err != nil {
			log.Printf("INFO: Skipped article %s: %v", link, err)
			continue
		}
		visited++
		out = append(out, AuthorsFromJSONLD(doc)...)
		out = append(out, AuthorsFromSelectors(doc, selectors, base)...)
	}
	return out
}
