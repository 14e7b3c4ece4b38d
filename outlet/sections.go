package outlet

import "strings"

// sectionKeywords maps byline-text fragments to section labels. Checked in
// order so the more specific beats win.
var sectionKeywords = []struct {
	fragments []string
	section   string
}{
	{[]string{"sport", "cricket", "football"}, "Sports"},
	{[]string{"tech", "innovation", "digital"}, "Technology"},
	{[]string{"business", "econom", "finance"}, "Business"},
	{[]string{"entertain", "cinema", "culture"}, "Entertainment"},
	{[]string{"health", "medical", "wellness"}, "Health"},
	{[]string{"opinion", "editorial"}, "Opinion"},
	{[]string{"international", "world"}, "International"},
}

// SectionFromKeywords derives a section label from a candidate's name or
// surrounding text. Returns false when no fragment matches, in which case
// callers fall back to the profile's weighted draw.
func SectionFromKeywords(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, sk := range sectionKeywords {
		for _, frag := range sk.fragments {
			if strings.Contains(lower, frag) {
				return sk.section, true
			}
		}
	}
	return "", false
}

// SectionLabels is the set of known section names. The cleaner uses it to
// reject single-word candidates that are really mis-captured category
// labels.
var SectionLabels = map[string]bool{
	"politics": true, "business": true, "technology": true, "sports": true,
	"entertainment": true, "health": true, "economy": true, "opinion": true,
	"international": true, "national": true, "world": true, "city": true,
	"india": true, "uk": true, "news": true, "general": true,
	"features": true, "science": true, "education": true, "lifestyle": true,
}
