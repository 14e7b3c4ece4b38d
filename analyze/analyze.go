// Package analyze derives keyword and topic tags for journalist records
// from their article titles. It is a pure enrichment step: it never
// performs I/O and never fails the pipeline.
package analyze

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/newstrack/newstrack/journalist"
)

const topKeywords = 5

var wordRe = regexp.MustCompile(`[A-Za-z][A-Za-z']+`)

// stopwords trims the usual glue words out of keyword lists.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"this": true, "from": true, "have": true, "has": true, "was": true,
	"are": true, "were": true, "will": true, "into": true, "over": true,
	"after": true, "about": true, "more": true, "than": true, "when": true,
	"what": true, "their": true, "they": true, "been": true, "says": true,
	"amid": true, "latest": true, "coverage": true,
}

// ExtractKeywords runs a TF-IDF pass over the given titles, treating each
// title as one document, and returns the top-scoring terms. Terms of four
// letters or fewer and stopwords are dropped.
func ExtractKeywords(titles []string, topN int) []string {
	if len(titles) == 0 || topN <= 0 {
		return nil
	}

	docs := make([][]string, 0, len(titles))
	docFreq := make(map[string]int)
	for _, title := range titles {
		terms := tokenize(title)
		docs = append(docs, terms)
		for _, term := range uniqueTerms(terms) {
			docFreq[term]++
		}
	}

	scores := make(map[string]float64)
	for _, terms := range docs {
		counts := make(map[string]int)
		for _, term := range terms {
			counts[term]++
		}
		for term, count := range counts {
			tf := float64(count) / float64(len(terms))
			idf := math.Log(float64(len(docs)+1) / float64(docFreq[term]+1))
			scores[term] += tf * (idf + 1)
		}
	}

	ranked := make([]string, 0, len(scores))
	for term := range scores {
		ranked = append(ranked, term)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func tokenize(title string) []string {
	var terms []string
	for _, word := range wordRe.FindAllString(strings.ToLower(title), -1) {
		if len(word) <= 3 || stopwords[word] {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, term := range terms {
		if !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}
	return out
}

// ExtractEntities pulls capitalized tokens (after the first word) out of a
// title as rough named-entity guesses.
func ExtractEntities(text string) []string {
	tokens := strings.Fields(text)
	seen := make(map[string]bool)
	var entities []string
	for i, token := range tokens {
		token = strings.Trim(token, ".,;:!?\"'()")
		if i == 0 || len(token) <= 2 {
			continue
		}
		if token[0] >= 'A' && token[0] <= 'Z' && !seen[token] {
			seen[token] = true
			entities = append(entities, token)
		}
	}
	return entities
}

// Enrich replaces each record's keyword and topic sets with tags derived
// from its latest article title. Records whose titles yield nothing keep
// sensible defaults built from their section. The input slice is modified
// in place and returned.
func Enrich(records []journalist.Record) []journalist.Record {
	for i := range records {
		rec := &records[i]

		var titles []string
		if rec.LatestArticle != "" {
			titles = append(titles, rec.LatestArticle)
		}

		keywords := ExtractKeywords(titles, topKeywords)
		if len(keywords) == 0 {
			keywords = []string{"journalism", "news", strings.ToLower(rec.Section)}
		}
		rec.Keywords = keywords

		entities := ExtractEntities(rec.LatestArticle)

		topics := []string{rec.Section}
		for _, kw := range keywords {
			if len(topics) >= 3 {
				break
			}
			topics = appendUnique(topics, capitalize(kw))
		}
		if len(entities) > 0 {
			topics = appendUnique(topics, entities[0])
		}
		rec.Topics = topics
	}
	return records
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, item) {
			return list
		}
	}
	return append(list, item)
}
