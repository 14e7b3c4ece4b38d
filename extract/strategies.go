package extract

import (
	"context"
	"log"
	"math/rand"
	"net/url"

	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/outlet"
)

// strategyFunc is one outlet's extraction recipe. The page has already
// been navigated to rootURL when the strategy runs.
type strategyFunc func(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw

// strategies is the registry of specialized recipes, keyed by profile key.
// Outlets recognized by the classifier but absent here fall through to the
// generic strategy.
var strategies = map[string]strategyFunc{
	"ndtv":     scrapeNDTV,
	"aajtak":   scrapeAajtak,
	"thehindu": scrapeTheHindu,
	"toi":      scrapeTOI,
	"bbc":      scrapeBBC,
}

// Article-page byline selectors are narrower than the homepage lists: on a
// story page the byline sits in a handful of known spots.
var ndtvArticleSelectors = []string{
	".pst-by_ln a", ".pst-by a", "span[itemprop='author']",
	"a[href*='/author/']", "a[href*='/people/']", ".byline a",
	".story-author", "[class*='author-name']",
}

var bbcArticleSelectors = []string{
	"[data-component='byline-block'] a",
	".ssrcss-68pt20-Text-TextContributorName",
	"a[href*='/correspondents/']",
}

// scrapeNDTV is the deepest recipe: structured metadata, the full homepage
// selector list, and a bounded sub-crawl over article links.
func scrapeNDTV(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)

	doc, err := pg.Document(ctx)
	if err != nil {
		log.Printf("WARN: NDTV main page snapshot failed: %v", err)
		return nil
	}

	found := Merge(
		AuthorsFromJSONLD(doc),
		AuthorsFromMeta(doc),
		AuthorsFromSelectors(doc, prof.AuthorSelectors, base),
	)
	log.Printf("INFO: NDTV main page: %d potential authors", len(found))

	links := ArticleLinks(doc, base, prof.ArticleSelectors, maxCollectedLinks)
	log.Printf("INFO: NDTV: %d article links to scrape", len(links))

	robots := FetchRobots(ctx, e.client, rootURL)
	crawled := e.subCrawl(ctx, pg, links, ndtvArticleSelectors, base, robots)

	return e.finishCandidates(Merge(found, crawled), prof, rng)
}

// scrapeAajtak reads structured metadata and the homepage byline spots; no
// sub-crawl, the homepage surfaces enough bylines.
func scrapeAajtak(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)
	doc, err := pg.Document(ctx)
	if err != nil {
		log.Printf("WARN: Aajtak page snapshot failed: %v", err)
		return nil
	}
	found := Merge(
		AuthorsFromJSONLD(doc),
		AuthorsFromSelectors(doc, prof.AuthorSelectors, base),
	)
	return e.finishCandidates(found, prof, rng)
}

// scrapeTheHindu keys on author-page links, which The Hindu renders
// server-side.
func scrapeTheHindu(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)
	doc, err := pg.Document(ctx)
	if err != nil {
		log.Printf("WARN: The Hindu page snapshot failed: %v", err)
		return nil
	}
	found := AuthorsFromSelectors(doc, prof.AuthorSelectors, base)
	return e.finishCandidates(Merge(found), prof, rng)
}

// scrapeTOI reads the homepage byline spots.
func scrapeTOI(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)
	doc, err := pg.Document(ctx)
	if err != nil {
		log.Printf("WARN: TOI page snapshot failed: %v", err)
		return nil
	}
	found := AuthorsFromSelectors(doc, prof.AuthorSelectors, base)
	return e.finishCandidates(Merge(found), prof, rng)
}

// scrapeBBC combines contributor-name selectors with a sub-crawl; BBC
// rarely exposes bylines on the front page itself.
func scrapeBBC(e *Extractor, ctx context.Context, pg Pager, rootURL string, prof *outlet.Profile, rng *rand.Rand) []journalist.Raw {
	base, _ := url.Parse(rootURL)

	doc, err := pg.Document(ctx)
	if err != nil {
		log.Printf("WARN: BBC main page snapshot failed: %v", err)
		return nil
	}

	found := AuthorsFromSelectors(doc, prof.AuthorSelectors, base)
	log.Printf("INFO: BBC: %d authors from main page", len(found))

	links := ArticleLinks(doc, base, prof.ArticleSelectors, 25)
	log.Printf("INFO: BBC: %d article links", len(links))

	robots := FetchRobots(ctx, e.client, rootURL)
	crawled := e.subCrawl(ctx, pg, links, bbcArticleSelectors, base, robots)

	return e.finishCandidates(Merge(found, crawled), prof, rng)
}
