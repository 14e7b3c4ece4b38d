// Package clean filters, classifies, and deduplicates raw byline
// candidates into final journalist records. Scraped homepages hand back
// names tangled with navigation labels, dates, and boilerplate; the filter
// rules here separate proper names from that noise using regex heuristics
// only. Synthetic fields (estimated article counts, fallback sections,
// pattern-built contacts) are always marked with an estimated provenance
// so they cannot be mistaken for extracted data.
package clean

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/outlet"
)

// MaxBatchSize is the hard cap on records surviving one cleaning pass.
const MaxBatchSize = 50

// Estimated article counts are drawn uniformly from [5, 50].
const (
	minEstimatedCount = 5
	maxEstimatedCount = 50
)

// blacklist holds non-person substrings: social platforms, navigation and
// UX chrome, and role words that show up in byline positions.
var blacklist = []string{
	// social platforms
	"whatsapp", "twitter", "facebook", "reddit", "linkedin", "instagram",
	"telegram", "youtube",
	// navigation / UX chrome
	"share", "follow", "subscribe", "newsletter", "email", "rss", "feed",
	"search", "menu", "login", "signup", "sign in", "sign up", "contact",
	"about us", "privacy", "terms", "copyright", "show more", "read more",
	"click here", "advertisement", "trending", "breaking news alert",
	// role words, not names
	"team", "staff", "guest", "bureau", "desk", "unknown", "service",
	"correspondent desk", "editor's pick",
}

var blacklistPrefixes = []string{"by ", "posted ", "updated "}

var (
	dateWordRe  = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\b`)
	clockWordRe = regexp.MustCompile(`(?i)\b(am|pm|ist|gmt|utc|est|pst|cst)\b`)
	digitEdgeRe = regexp.MustCompile(`^\d+|\d+$`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	timeRe      = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// Blacklisted reports whether a candidate name contains a known non-person
// token. Strategies also call this inline so obvious noise never leaves
// the extraction stage.
func Blacklisted(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range blacklistPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, token := range blacklist {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// Acceptable applies the full filter chain to a trimmed candidate name.
// Rules run in order; the first hit rejects.
func Acceptable(name string) bool {
	if len(name) < 3 || len(name) > 100 {
		return false
	}
	if !containsLetter(name) {
		return false
	}
	first := []rune(name)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	if Blacklisted(name) {
		return false
	}
	if dateWordRe.MatchString(name) || clockWordRe.MatchString(name) {
		return false
	}
	if digitEdgeRe.MatchString(name) || yearRe.MatchString(name) || timeRe.MatchString(name) {
		return false
	}
	if digitRatio(name) > 0.3 {
		return false
	}
	if !strings.Contains(name, " ") {
		// Single-word candidates: section labels are mis-captured category
		// headings, and anything short is not plausibly a full name.
		if outlet.SectionLabels[strings.ToLower(name)] {
			return false
		}
		if len(name) < 15 {
			return false
		}
	}
	return true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func digitRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}

// Cleaner turns raw candidates into final records. The rand source is
// injected so tests can pin the synthetic draws.
type Cleaner struct {
	rng *rand.Rand
	now func() time.Time
}

// New creates a cleaner around the given rand source.
func New(rng *rand.Rand) *Cleaner {
	return &Cleaner{rng: rng, now: time.Now}
}

// WithClock overrides the capture-time source (tests).
func (c *Cleaner) WithClock(now func() time.Time) *Cleaner {
	c.now = now
	return c
}

// Clean filters, deduplicates, enriches, and renumbers a raw batch.
// Order is preserved from strategy output (homepage finds before
// sub-crawled finds); deduplication keeps the first occurrence unless a
// later one carries a profile link the first lacks, in which case the
// profile-bearing occurrence replaces it in place. The surviving list is
// truncated to MaxBatchSize and ids reassigned 1..N.
func (c *Cleaner) Clean(raws []journalist.Raw, outletHost string, prof *outlet.Profile) []journalist.Record {
	index := make(map[string]int)
	var kept []journalist.Raw

	for _, raw := range raws {
		name := strings.TrimSpace(raw.Name)
		if !Acceptable(name) {
			continue
		}
		raw.Name = name

		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			if kept[i].ProfileURL == "" && raw.ProfileURL != "" {
				raw.SectionHint = firstNonEmpty(kept[i].SectionHint, raw.SectionHint)
				kept[i] = raw
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, raw)
	}

	if len(kept) > MaxBatchSize {
		kept = kept[:MaxBatchSize]
	}

	records := make([]journalist.Record, 0, len(kept))
	today := c.now().Format("2006-01-02")
	for i, raw := range kept {
		records = append(records, c.enrich(raw, i+1, outletHost, prof, today))
	}
	return records
}

// enrich builds the final record, synthesizing the fields the source page
// did not supply and marking them estimated.
func (c *Cleaner) enrich(raw journalist.Raw, id int, outletHost string, prof *outlet.Profile, today string) journalist.Record {
	section := raw.SectionHint
	if section == "" {
		var ok bool
		if section, ok = outlet.SectionFromKeywords(raw.Name); !ok {
			section = prof.DrawSection(c.rng)
		}
	}

	rec := journalist.Record{
		ID:            id,
		Name:          raw.Name,
		ProfileURL:    raw.ProfileURL,
		Section:       section,
		Beat:          section,
		ArticleCount:  minEstimatedCount + c.rng.Intn(maxEstimatedCount-minEstimatedCount+1),
		CountSource:   journalist.ProvenanceEstimated,
		LatestArticle: "Latest " + section + " Coverage",
		Date:          today,
		Topics:        []string{section},
		Keywords:      []string{"news", strings.ToLower(section)},
		Source:        outletHost,
	}

	if prof.EmailDomain != "" {
		email := emailSlug(raw.Name) + "@" + prof.EmailDomain
		rec.Email = email
		rec.Contact = email
		rec.Twitter = "@" + strings.ReplaceAll(raw.Name, " ", "")
		rec.ContactSource = journalist.ProvenanceEstimated
	}
	return rec
}

func emailSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(slug), ".")
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
