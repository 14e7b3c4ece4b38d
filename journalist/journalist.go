// Package journalist defines the records that flow through the extraction
// pipeline: raw byline candidates produced by scraping strategies, cleaned
// journalist records, and the per-outlet aggregate returned to callers.
package journalist

import "time"

// Provenance marks whether a field was read off the target site or
// synthesized as a best-effort estimate. Estimated values must never be
// presented downstream as extracted fact.
type Provenance string

const (
	// ProvenanceMeasured means the value was extracted from the outlet's
	// pages or feed.
	ProvenanceMeasured Provenance = "measured"
	// ProvenanceEstimated means the value was synthesized (bounded random
	// article counts, pattern-built contact strings).
	ProvenanceEstimated Provenance = "estimated"
)

// Raw is an unfiltered byline candidate emitted by an extraction strategy
// before cleaning. ProfileURL is empty when the byline was plain text.
type Raw struct {
	Name        string `json:"name"`
	ProfileURL  string `json:"profileUrl,omitempty"`
	SectionHint string `json:"sectionHint,omitempty"`
}

// Record is a cleaned journalist entry. IDs are positional within one
// extraction batch and reassigned on every cleaning pass.
type Record struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	ProfileURL    string     `json:"profileUrl,omitempty"`
	Section       string     `json:"section"`
	Beat          string     `json:"beat"`
	ArticleCount  int        `json:"articleCount"`
	CountSource   Provenance `json:"countSource"`
	LatestArticle string     `json:"latestArticle"`
	Date          string     `json:"date"` // YYYY-MM-DD
	Topics        []string   `json:"topics"`
	Keywords      []string   `json:"keywords"`
	Contact       string     `json:"contact,omitempty"`
	Email         string     `json:"email,omitempty"`
	Twitter       string     `json:"twitter,omitempty"`
	ContactSource Provenance `json:"contactSource,omitempty"`
	Source        string     `json:"source"`
}

// SectionStat names the dominant section of a batch and its share of the
// batch's total article count.
type SectionStat struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// ActivityStat names the journalist with the highest article count.
type ActivityStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes how a batch was produced.
type Summary struct {
	Outlet           string    `json:"outlet"`
	TotalJournalists int       `json:"totalJournalists"`
	ExtractionMethod string    `json:"extractionMethod"`
	Timestamp        time.Time `json:"timestamp"`
}

// OutletResult is the aggregate returned for one scrape request. The
// derived fields (TotalArticles, TopSection, MostActive) are computed from
// Journalists and never stored independently.
type OutletResult struct {
	Outlet          string       `json:"outlet"`
	DetectedWebsite string       `json:"detectedWebsite"`
	Journalists     []Record     `json:"journalists"`
	TotalArticles   int          `json:"totalArticles"`
	TopSection      SectionStat  `json:"topSection"`
	MostActive      ActivityStat `json:"mostActive"`
	Summary         Summary      `json:"summary"`
}

// Aggregate computes the derived analytics for a cleaned batch: the total
// article count, the top section by article share, and the most active
// journalist. Sections named "Unknown" are excluded from the top-section
// tally.
func Aggregate(records []Record) (total int, top SectionStat, active ActivityStat) {
	sectionCounts := make(map[string]int)
	for _, r := range records {
		total += r.ArticleCount
		if r.Section != "" && r.Section != "Unknown" {
			sectionCounts[r.Section] += r.ArticleCount
		}
	}

	top = SectionStat{Name: "Unknown", Percentage: 0}
	best := 0
	for name, count := range sectionCounts {
		if count > best || (count == best && best > 0 && name < top.Name) {
			best = count
			top.Name = name
		}
	}
	if total > 0 && best > 0 {
		top.Percentage = int(float64(best)/float64(total)*100 + 0.5)
	}

	active = ActivityStat{Name: "N/A", Count: 0}
	for _, r := range records {
		if r.ArticleCount > active.Count {
			active = ActivityStat{Name: r.Name, Count: r.ArticleCount}
		}
	}
	return total, top, active
}
