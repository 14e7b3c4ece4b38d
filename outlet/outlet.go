// Package outlet maps hostnames to extraction profiles. A profile names the
// strategy used for a known outlet and carries the outlet-specific selector
// lists, article-link patterns, and section distribution that strategy needs.
package outlet

import (
	"math/rand"
	"strings"
)

// Profile is a named extraction recipe for one outlet family.
type Profile struct {
	// Key identifies the strategy ("ndtv", "bbc", ..., or "generic").
	Key string
	// AuthorSelectors are CSS selectors targeting byline/author elements on
	// this outlet's pages, ordered most-specific first.
	AuthorSelectors []string
	// ArticleSelectors match links to article detail pages worth
	// sub-crawling for additional bylines.
	ArticleSelectors []string
	// EmailDomain is used when pattern-building estimated contact strings.
	EmailDomain string
	// Sections is the weighted distribution drawn from when no keyword
	// heuristic matches a candidate. Weights sum to 1.0 and the final entry
	// is the long-tail category.
	Sections []SectionWeight
	// Blacklist holds outlet-specific non-person tokens rejected inline
	// (brand names and such), on top of the cleaner's shared blacklist.
	Blacklist []string
}

// SectionWeight pairs a section label with its probability mass.
type SectionWeight struct {
	Name   string
	Weight float64
}

// Specialized reports whether this profile has its own strategy rather than
// the generic fallback.
func (p *Profile) Specialized() bool {
	return p.Key != "generic"
}

// DrawSection samples a section from the profile's weighted distribution.
// The rand source is injected so tests can fix the draw.
func (p *Profile) DrawSection(rng *rand.Rand) string {
	r := rng.Float64()
	acc := 0.0
	for _, sw := range p.Sections {
		acc += sw.Weight
		if r < acc {
			return sw.Name
		}
	}
	// Weights sum to 1.0; float drift lands on the long-tail entry.
	return p.Sections[len(p.Sections)-1].Name
}

// hostMatch pairs a hostname substring with its profile key. Order matters:
// the first match wins.
var hostMatches = []struct {
	substr string
	key    string
}{
	{"ndtv", "ndtv"},
	{"aajtak", "aajtak"},
	{"aaj-tak", "aajtak"},
	{"thehindu", "thehindu"},
	{"timesofindia", "toi"},
	{"indiatimes", "toi"},
	{"indianexpress", "indianexpress"},
	{"hindustantimes", "hindustantimes"},
	{"news18", "news18"},
	{"bbc.com", "bbc"},
	{"bbc.co.uk", "bbc"},
	{"cnn.com", "cnn"},
	{"nytimes.com", "nytimes"},
	{"theguardian.com", "guardian"},
	{"reuters.com", "reuters"},
}

// recipelessDomains carries the contact domain for outlets we recognize but
// have no dedicated recipe for yet.
var recipelessDomains = map[string]string{
	"indianexpress":  "indianexpress.com",
	"hindustantimes": "hindustantimes.com",
	"news18":         "news18.com",
	"cnn":            "cnn.com",
	"nytimes":        "nytimes.com",
	"guardian":       "theguardian.com",
	"reuters":        "thomsonreuters.com",
}

// Classify returns the profile for a hostname. Unknown hosts receive the
// generic profile. Pure function, no side effects.
func Classify(hostname string) *Profile {
	host := strings.ToLower(hostname)
	for _, m := range hostMatches {
		if strings.Contains(host, m.substr) {
			if p, ok := profiles[m.key]; ok {
				return p
			}
			// Recognized outlet without a dedicated recipe yet: generic
			// selectors but keep the outlet's email domain if known.
			p := *profiles["generic"]
			p.EmailDomain = recipelessDomains[m.key]
			return &p
		}
	}
	return profiles["generic"]
}

// Generic returns the fallback profile directly.
func Generic() *Profile {
	return profiles["generic"]
}

var genericAuthorSelectors = []string{
	"a[href*='author']", "a[rel='author']", "[itemprop='author']",
	".author", ".author-name", ".byline", ".writer",
}

// NarrowAuthorSelectors is the reduced list used by the last-resort static
// re-fetch after every strategy has come up empty.
var NarrowAuthorSelectors = []string{
	"meta[name='author']", "[class*='author']", ".byline", "[rel='author']",
}

var profiles = map[string]*Profile{
	"ndtv": {
		Key: "ndtv",
		AuthorSelectors: []string{
			".pst-by_ln a", ".pst-by a", ".author-name", ".article-author a",
			".ins_storybody .posted_by a", "span[itemprop='author'] span[itemprop='name']",
			".auth_detail a", "a[href*='/author/']", "a[href*='/people/']",
			".byline a", "[class*='author'] a", "[class*='byline']",
			"div[class*='author-']", "span[class*='author-']",
		},
		ArticleSelectors: []string{
			"a[href*='/news/']", "a[href*='/article/']", "a[href*='/story/']",
			"a[href*='/india/']", "a[href*='/world/']", "a[href*='/opinion/']",
		},
		EmailDomain: "ndtv.com",
		Sections: []SectionWeight{
			{"Politics", 0.40}, {"Business", 0.20}, {"Technology", 0.15},
			{"Sports", 0.10}, {"Entertainment", 0.10}, {"Health", 0.05},
		},
		Blacklist: []string{"ndtv"},
	},
	"aajtak": {
		Key: "aajtak",
		AuthorSelectors: []string{
			".author-name", ".byline a", "span[itemprop='author']", "a[href*='/author/']",
		},
		ArticleSelectors: []string{
			"a[href*='/news/']", "a[href*='/story/']",
		},
		EmailDomain: "aajtak.in",
		Sections: []SectionWeight{
			{"Politics", 0.40}, {"Entertainment", 0.20}, {"Sports", 0.20},
			{"National", 0.20},
		},
		Blacklist: []string{"aajtak"},
	},
	"thehindu": {
		Key: "thehindu",
		AuthorSelectors: []string{
			".author-name a", "a[href*='/author/']", "span[itemprop='author'] a",
		},
		ArticleSelectors: []string{
			"a[href*='/news/']", "a[href*='/article']",
		},
		EmailDomain: "thehindu.co.in",
		Sections: []SectionWeight{
			{"Politics", 0.40}, {"Economy", 0.20}, {"International", 0.15},
			{"Opinion", 0.10}, {"Sports", 0.15},
		},
		Blacklist: []string{"the hindu"},
	},
	"toi": {
		Key: "toi",
		AuthorSelectors: []string{
			".byline a", "span[itemprop='author']", ".author a",
		},
		ArticleSelectors: []string{
			"a[href*='/articleshow/']", "a[href*='/news/']",
		},
		EmailDomain: "timesgroup.com",
		Sections: []SectionWeight{
			{"City", 0.35}, {"India", 0.25}, {"Business", 0.15},
			{"Sports", 0.10}, {"Entertainment", 0.15},
		},
		Blacklist: []string{"toi", "times"},
	},
	"bbc": {
		Key: "bbc",
		AuthorSelectors: []string{
			"[data-component='byline-block'] a",
			".ssrcss-68pt20-Text-TextContributorName",
			"a[href*='/news/correspondents/']",
			".qa-contributor-name",
			"[class*='Contributor']",
		},
		ArticleSelectors: []string{
			"a[href*='/news/']",
		},
		EmailDomain: "bbc.com",
		Sections: []SectionWeight{
			{"World", 0.30}, {"UK", 0.25}, {"Business", 0.15},
			{"Politics", 0.15}, {"Technology", 0.15},
		},
		Blacklist: []string{"bbc"},
	},
	"generic": {
		Key:             "generic",
		AuthorSelectors: genericAuthorSelectors,
		ArticleSelectors: []string{
			"a[href*='/news']", "a[href*='/article']", "a[href*='/story']",
		},
		EmailDomain: "",
		Sections: []SectionWeight{
			{"News", 0.50}, {"General", 0.20}, {"Features", 0.15},
			{"Opinion", 0.15},
		},
	},
}
