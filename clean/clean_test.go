package clean

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstrack/newstrack/journalist"
	"github.com/newstrack/newstrack/outlet"
)

func testCleaner() *Cleaner {
	return New(rand.New(rand.NewSource(1))).WithClock(func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

// TestAcceptable_ProperNames verifies plausible bylines pass the filter
func TestAcceptable_ProperNames(t *testing.T) {
	for _, name := range []string{
		"John Doe",
		"Priya Sharma",
		"Jean-Luc Picard",
		"A. B. Vajpayee",
	} {
		assert.True(t, Acceptable(name), "expected %q to be acceptable", name)
	}
}

// TestAcceptable_RejectsNoise verifies each filter rule in the chain
func TestAcceptable_RejectsNoise(t *testing.T) {
	tests := []struct {
		name   string
		reason string
	}{
		{"jo", "too short"},
		{"jane doe", "lowercase first letter"},
		{"Share", "blacklisted nav word"},
		{"WhatsApp Group", "blacklisted social platform"},
		{"By John Doe", "byline prefix"},
		{"Jan 2024", "month word"},
		{"Monday Briefing", "weekday word"},
		{"10:30 AM IST", "clock tokens"},
		{"2024 Retrospective", "year"},
		{"3 Things To Know", "leading digit"},
		{"Top Stories 5", "trailing digit"},
		{"Sports", "single-word section label"},
		{"Editor", "single word too short"},
		{"---", "no letters"},
	}

	for _, tt := range tests {
		assert.False(t, Acceptable(tt.name), "%q should be rejected (%s)", tt.name, tt.reason)
	}
}

// TestBlacklisted_Substrings verifies substring matching is case-insensitive
func TestBlacklisted_Substrings(t *testing.T) {
	assert.True(t, Blacklisted("Follow Us On Twitter"))
	assert.True(t, Blacklisted("SUBSCRIBE NOW"))
	assert.False(t, Blacklisted("Rohit Verma"))
}

// TestClean_FiltersNoise verifies the canonical mixed batch keeps only the
// real name
func TestClean_FiltersNoise(t *testing.T) {
	raws := []journalist.Raw{
		{Name: "John Doe"},
		{Name: "Jan 2024"},
		{Name: "Share"},
		{Name: "jo"},
		{Name: "Sports"},
	}

	records := testCleaner().Clean(raws, "example.com", outlet.Generic())

	require.Len(t, records, 1)
	assert.Equal(t, "John Doe", records[0].Name)
	assert.Equal(t, 1, records[0].ID)
}

// TestClean_DeduplicatesKeepingProfileURL verifies a later duplicate with a
// profile link replaces the earlier plain entry in place
func TestClean_DeduplicatesKeepingProfileURL(t *testing.T) {
	raws := []journalist.Raw{
		{Name: "Jane Roe"},
		{Name: "Amit Kumar"},
		{Name: "Jane Roe", ProfileURL: "https://example.com/authors/jane-roe"},
	}

	records := testCleaner().Clean(raws, "example.com", outlet.Generic())

	require.Len(t, records, 2)
	// Jane Roe keeps her original position but gains the profile URL
	assert.Equal(t, "https://example.com/authors/jane-roe", records[0].ProfileURL)
	assert.Equal(t, "Amit Kumar", records[1].Name)
}

// TestClean_FiltersBeforeDedup verifies a lowercase duplicate is rejected
// by the capitalization rule before it can donate its profile URL
func TestClean_FiltersBeforeDedup(t *testing.T) {
	raws := []journalist.Raw{
		{Name: "Jane Roe"},
		{Name: "jane roe", ProfileURL: "https://example.com/authors/jane-roe"},
	}

	records := testCleaner().Clean(raws, "example.com", outlet.Generic())

	require.Len(t, records, 1)
	assert.Equal(t, "Jane Roe", records[0].Name)
	assert.Empty(t, records[0].ProfileURL)
}

// TestClean_CapsBatchSize verifies truncation at MaxBatchSize with ids 1..N
func TestClean_CapsBatchSize(t *testing.T) {
	var raws []journalist.Raw
	for i := 0; i < 70; i++ {
		raws = append(raws, journalist.Raw{Name: nameForIndex(i)})
	}

	records := testCleaner().Clean(raws, "example.com", outlet.Generic())

	require.Len(t, records, MaxBatchSize)
	for i, rec := range records {
		assert.Equal(t, i+1, rec.ID)
	}
}

// nameForIndex builds 70 distinct plausible names without digits.
func nameForIndex(i int) string {
	first := []string{"Asha", "Bina", "Chitra", "Deepa", "Esha", "Farah", "Gita"}
	last := []string{"Patel", "Singh", "Iyer", "Das", "Bose", "Nair", "Rao", "Menon", "Shah", "Verma"}
	return first[i%len(first)] + " " + last[i/len(first)]
}

// TestClean_EstimatedFieldsAreMarked verifies synthetic fields carry the
// estimated provenance
func TestClean_EstimatedFieldsAreMarked(t *testing.T) {
	prof := outlet.Classify("www.ndtv.com")
	require.NotNil(t, prof)

	records := testCleaner().Clean([]journalist.Raw{{Name: "Ravi Shankar"}}, "ndtv.com", prof)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, journalist.ProvenanceEstimated, rec.CountSource)
	assert.GreaterOrEqual(t, rec.ArticleCount, 5)
	assert.LessOrEqual(t, rec.ArticleCount, 50)
	assert.Equal(t, "ravi.shankar@ndtv.com", rec.Email)
	assert.Equal(t, "@RaviShankar", rec.Twitter)
	assert.Equal(t, journalist.ProvenanceEstimated, rec.ContactSource)
	assert.Equal(t, "2024-06-01", rec.Date)
	assert.Equal(t, rec.Section, rec.Beat)
}

// TestClean_NoContactWithoutEmailDomain verifies the generic profile never
// fabricates contact details
func TestClean_NoContactWithoutEmailDomain(t *testing.T) {
	records := testCleaner().Clean([]journalist.Raw{{Name: "Ravi Shankar"}}, "example.com", outlet.Generic())

	require.Len(t, records, 1)
	assert.Empty(t, records[0].Email)
	assert.Empty(t, records[0].Twitter)
	assert.Empty(t, records[0].ContactSource)
}

// TestClean_SectionHintWins verifies the section resolution order: hint,
// then name keywords, then weighted draw
func TestClean_SectionHintWins(t *testing.T) {
	prof := outlet.Classify("www.ndtv.com")
	require.NotNil(t, prof)

	records := testCleaner().Clean([]journalist.Raw{
		{Name: "Ravi Shankar", SectionHint: "Business"},
		{Name: "Cricket Writer Riya"},
		{Name: "Meera Joshi"},
	}, "ndtv.com", prof)

	require.Len(t, records, 3)
	assert.Equal(t, "Business", records[0].Section)
	assert.Equal(t, "Sports", records[1].Section, "cricket keyword should map to Sports")
	assert.NotEmpty(t, records[2].Section, "fallback draw should always assign a section")
}

// TestClean_SeededDraws verifies the injected rand source makes output
// deterministic
func TestClean_SeededDraws(t *testing.T) {
	raws := []journalist.Raw{{Name: "Meera Joshi"}}
	prof := outlet.Classify("www.ndtv.com")

	first := New(rand.New(rand.NewSource(42))).Clean(raws, "ndtv.com", prof)
	second := New(rand.New(rand.NewSource(42))).Clean(raws, "ndtv.com", prof)

	require.Len(t, first, 1)
	assert.Equal(t, first[0].Section, second[0].Section)
	assert.Equal(t, first[0].ArticleCount, second[0].ArticleCount)
}

// TestClean_Idempotent verifies cleaning already-clean names changes nothing
func TestClean_Idempotent(t *testing.T) {
	raws := []journalist.Raw{{Name: "John Doe"}, {Name: "Jane Roe"}}

	records := testCleaner().Clean(raws, "example.com", outlet.Generic())

	require.Len(t, records, 2)
	again := testCleaner().Clean([]journalist.Raw{
		{Name: records[0].Name},
		{Name: records[1].Name},
	}, "example.com", outlet.Generic())
	require.Len(t, again, 2)
	assert.Equal(t, records[0].Name, again[0].Name)
	assert.Equal(t, records[1].Name, again[1].Name)
}
