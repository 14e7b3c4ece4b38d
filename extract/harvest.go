package extract

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/newstrack/newstrack/journalist"
)

// Candidate name length band accepted at harvest time. The cleaner applies
// the final [3,100] band; harvesting is slightly looser on purpose so the
// cleaner stays the single source of truth for rejection.
const (
	minHarvestLen = 3
	maxHarvestLen = 100
)

// AuthorsFromJSONLD pulls author names out of machine-readable metadata
// blocks (script[type="application/ld+json"]). Malformed blocks are
// skipped; sites ship plenty of them.
func AuthorsFromJSONLD(doc *goquery.Document) []journalist.Raw {
	var out []journalist.Raw
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		for _, name := range jsonLDAuthorNames(data["author"]) {
			if plausibleName(name) {
				out = append(out, journalist.Raw{Name: name})
			}
		}
	})
	return out
}

// jsonLDAuthorNames handles the three shapes the author field takes in the
// wild: a bare string, an object with a name, or an array of either.
func jsonLDAuthorNames(author any) []string {
	switch v := author.(type) {
	case string:
		return []string{strings.TrimSpace(v)}
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return []string{strings.TrimSpace(name)}
		}
	case []any:
		var names []string
		for _, entry := range v {
			names = append(names, jsonLDAuthorNames(entry)...)
		}
		return names
	}
	return nil
}

// AuthorsFromMeta reads the document-level meta[name=author] tag.
func AuthorsFromMeta(doc *goquery.Document) []journalist.Raw {
	var out []journalist.Raw
	doc.Find(`meta[name="author"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			name := strings.TrimSpace(content)
			if plausibleName(name) {
				out = append(out, journalist.Raw{Name: name})
			}
		}
	})
	return out
}

// AuthorsFromSelectors runs a list of byline selectors against the
// document. When the matched element is a link, or is wrapped by one, the
// link target is kept as the candidate's profile URL (resolved against
// base when relative).
func AuthorsFromSelectors(doc *goquery.Document, selectors []string, base *url.URL) []journalist.Raw {
	var out []journalist.Raw
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			name := strings.TrimSpace(s.Text())
			if !plausibleName(name) {
				return
			}
			out = append(out, journalist.Raw{
				Name:       name,
				ProfileURL: profileLink(s, base),
			})
		})
	}
	return out
}

// profileLink resolves the href of the selection itself or its nearest
// anchor ancestor to an absolute URL. Empty when the byline is plain text.
func profileLink(s *goquery.Selection, base *url.URL) string {
	href, ok := s.Attr("href")
	if !ok {
		if anchor := s.Closest("a"); anchor.Length() > 0 {
			href, ok = anchor.Attr("href")
		}
	}
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// plausibleName is the loose harvest-time gate. Final validation happens
// in the cleaner.
func plausibleName(name string) bool {
	if len(name) < minHarvestLen || len(name) > maxHarvestLen {
		return false
	}
	return true
}

// excludedPathTokens mark article links that lead to video players, photo
// galleries, and live feeds rather than written articles.
var excludedPathTokens = []string{"video", "photo", "livetv", "/live"}

// ArticleLinks collects up to maxLinks absolute article URLs from the
// document using outlet-appropriate link selectors, excluding obvious
// video/photo/live paths and duplicates.
func ArticleLinks(doc *goquery.Document, base *url.URL, selectors []string, maxLinks int) []string {
	seen := make(map[string]bool)
	var links []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if len(links) >= maxLinks {
				return
			}
			href, ok := s.Attr("href")
			if !ok || href == "" || len(href) > 200 {
				return
			}
			ref, err := url.Parse(href)
			if err != nil {
				return
			}
			if base != nil {
				ref = base.ResolveReference(ref)
			}
			if ref.Scheme != "http" && ref.Scheme != "https" {
				return
			}
			link := ref.String()
			lower := strings.ToLower(link)
			for _, token := range excludedPathTokens {
				if strings.Contains(lower, token) {
					return
				}
			}
			if seen[link] {
				return
			}
			seen[link] = true
			links = append(links, link)
		})
	}
	return links
}

// Merge deduplicates candidates by case-insensitive name, preserving first
// occurrence order. A later occurrence that carries a profile link upgrades
// an earlier plain-text one in place.
func Merge(lists ...[]journalist.Raw) []journalist.Raw {
	index := make(map[string]int)
	var merged []journalist.Raw
	for _, list := range lists {
		for _, raw := range list {
			key := strings.ToLower(strings.TrimSpace(raw.Name))
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				if merged[i].ProfileURL == "" && raw.ProfileURL != "" {
					merged[i].ProfileURL = raw.ProfileURL
				}
				if merged[i].SectionHint == "" && raw.SectionHint != "" {
					merged[i].SectionHint = raw.SectionHint
				}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, raw)
		}
	}
	return merged
}
