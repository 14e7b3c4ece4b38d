// Package newstrack wires the extraction pipeline together and exposes it
// over HTTP. One inbound scrape request flows: locate website, classify
// outlet, run the strategy cascade, clean candidates, enrich from the
// outlet's feed and the content analyzer, persist best-effort, aggregate.
package newstrack

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/newstrack/newstrack/analyze"
	"github.com/newstrack/newstrack/clean"
	"github.com/newstrack/newstrack/extract"
	"github.com/newstrack/newstrack/feedprobe"
	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/locator"
	"github.com/newstrack/newstrack/outlet"
	"github.com/newstrack/newstrack/store"
)

// Pipeline runs end-to-end extractions. The store and probe are optional;
// without them the pipeline still returns in-memory results.
type Pipeline struct {
	locator   *locator.Locator
	extractor *extract.Extractor
	probe     *feedprobe.Probe
	store     *store.Store

	// newRand builds the per-request random source feeding weighted
	// section draws and synthetic counts. Injectable for deterministic
	// tests.
	newRand func() *rand.Rand
}

// NewPipeline assembles a pipeline. store may be nil (persistence is
// best-effort), probe may be nil (no feed enrichment).
func NewPipeline(loc *locator.Locator, ext *extract.Extractor, probe *feedprobe.Probe, st *store.Store) *Pipeline {
	return &Pipeline{
		locator:   loc,
		extractor: ext,
		probe:     probe,
		store:     st,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// WithRandSource overrides the per-request rand constructor (tests).
func (p *Pipeline) WithRandSource(newRand func() *rand.Rand) *Pipeline {
	p.newRand = newRand
	return p
}

// Scrape resolves a URL or outlet name and runs the full pipeline.
// Returns ErrNoInput, ErrUnreachable, or ErrNoJournalists for the
// caller-visible failure modes; persistence failures are logged and do
// not fail the request.
func (p *Pipeline) Scrape(ctx context.Context, urlOrOutlet string) (*journalist.OutletResult, error) {
	input := strings.TrimSpace(urlOrOutlet)
	if input == "" {
		return nil, ErrNoInput
	}

	site, err := p.resolveWebsite(input)
	if err != nil {
		return nil, err
	}

	host, err := outletHost(site)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid website URL %q", ErrUnreachable, site)
	}

	prof := outlet.Classify(host)
	log.Printf("INFO: Scraping %s (outlet type: %s)", site, prof.Key)

	rng := p.newRand()
	result := p.extractor.Run(ctx, site, prof, rng)

	cleaner := clean.New(rng)
	records := cleaner.Clean(result.Candidates, host, prof)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrNoJournalists, host)
	}

	p.enrichFromFeed(ctx, site, records)
	records = analyze.Enrich(records)

	if p.store != nil {
		if err := p.store.Save(host, records); err != nil {
			log.Printf("WARN: Failed to persist %d records for %s: %v", len(records), host, err)
		}
	}

	total, top, active := journalist.Aggregate(records)
	log.Printf("INFO: Extracted %d journalists from %s (%d articles, top section %s %d%%)",
		len(records), host, total, top.Name, top.Percentage)

	return &journalist.OutletResult{
		Outlet:          host,
		DetectedWebsite: site,
		Journalists:     records,
		TotalArticles:   total,
		TopSection:      top,
		MostActive:      active,
		Summary: journalist.Summary{
			Outlet:           host,
			TotalJournalists: len(records),
			ExtractionMethod: result.Method,
			Timestamp:        time.Now().UTC(),
		},
	}, nil
}

// resolveWebsite turns the caller's input into a root URL. Anything that
// looks like a URL or hostname is normalized directly; bare names go
// through the website locator.
func (p *Pipeline) resolveWebsite(input string) (string, error) {
	if looksLikeURL(input) {
		return normalizeURL(input), nil
	}

	site, err := p.locator.Locate(input)
	if err != nil {
		return "", fmt.Errorf("%w: could not find a website for %q", ErrUnreachable, input)
	}
	return site, nil
}

func looksLikeURL(input string) bool {
	return strings.Contains(input, "://") || strings.Contains(input, ".")
}

func normalizeURL(input string) string {
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return "https://" + input
	}
	return input
}

// outletHost extracts the hostname an outlet is keyed by, dropping the
// www prefix.
func outletHost(site string) (string, error) {
	u, err := url.Parse(site)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname in %q", site)
	}
	return strings.TrimPrefix(host, "www."), nil
}

// enrichFromFeed overwrites estimated activity fields with measured
// values when the outlet publishes a parseable feed. Best-effort only.
func (p *Pipeline) enrichFromFeed(ctx context.Context, site string, records []journalist.Record) {
	if p.probe == nil {
		return
	}
	activity, err := p.probe.AuthorActivity(ctx, site)
	if err != nil {
		log.Printf("INFO: No feed enrichment for %s: %v", site, err)
		return
	}

	matched := 0
	for i := range records {
		act, ok := activity[strings.ToLower(records[i].Name)]
		if !ok {
			continue
		}
		records[i].ArticleCount = act.Count
		records[i].CountSource = journalist.ProvenanceMeasured
		if act.LatestTitle != "" {
			records[i].LatestArticle = act.LatestTitle
		}
		matched++
	}
	if matched > 0 {
		log.Printf("INFO: Feed enrichment matched %d of %d journalists for %s", matched, len(records), site)
	}
}
