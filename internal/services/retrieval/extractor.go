// -----------------------------------------------------------------------
// Content Extractor - HTML cleaning, relevance summaries, date recovery
// -----------------------------------------------------------------------

package retrieval

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/rota/internal/models"
)

const (
	// summaryScanWindow bounds how many leading sentence segments are
	// considered when building a relevance summary.
	summaryScanWindow = 50

	// summaryCharBudget stops accumulation once the retained text grows
	// past this many characters.
	summaryCharBudget = 1500

	// leadFallbackSentences is the naive lead-summary size used when no
	// segment matches the relevance key.
	leadFallbackSentences = 10
)

// relevanceKeywords mark sentences likely to carry vehicle-history facts
// regardless of the search term.
var relevanceKeywords = []string{
	"introduced", "produced", "production", "began", "started", "founded",
	"established", "launched", "debuted", "first", "original", "initially",
	"manufactured", "released", "unveiled", "1960", "1964", "1965", "april",
}

// datePatterns recover a first-production year from article prose. Applied
// in order against lowercased text; the first match wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`introduced\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`produced\s+(?:from\s+)?(\d{4})`),
	regexp.MustCompile(`production\s+(?:began\s+in\s+)?(\d{4})`),
	regexp.MustCompile(`first\s+.*?(\d{4})`),
	regexp.MustCompile(`debuted\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`launched\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`(\d{4})\s+model\s+year`),
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanHTML strips markup from a rendered page body and normalizes
// whitespace, yielding plain prose for the summary heuristics.
func CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Degraded path: strip tags textually rather than failing the candidate.
		return normalizeWhitespace(tagPattern.ReplaceAllString(html, " "))
	}

	doc.Find("script, style").Remove()
	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// RelevanceSummary filters clean article text down to the sentences most
// likely relevant to the search term. A sentence within the scan window is
// retained when it contains any word of the term or any domain keyword;
// accumulation stops past the character budget. With no matches the lead
// sentences are returned instead. Ordering always follows the document.
func RelevanceSummary(text, term string) string {
	sentences := strings.Split(text, ". ")

	termWords := strings.Fields(strings.ToLower(term))

	var retained []string
	var retainedLen int
	window := summaryScanWindow
	if window > len(sentences) {
		window = len(sentences)
	}

	for _, sentence := range sentences[:window] {
		lower := strings.ToLower(sentence)
		if !containsAny(lower, termWords) && !containsAny(lower, relevanceKeywords) {
			continue
		}
		trimmed := strings.TrimSpace(sentence)
		retained = append(retained, trimmed)
		retainedLen += len(trimmed) + 1
		if retainedLen > summaryCharBudget {
			break
		}
	}

	if len(retained) > 0 {
		return strings.Join(retained, " ")
	}

	lead := leadFallbackSentences
	if lead > len(sentences) {
		lead = len(sentences)
	}
	return strings.Join(sentences[:lead], " ")
}

// RecoverDates pattern-matches introduction and production years out of
// article prose, for merging into the infobox when the structured data
// lacks them. Curated per-model facts override the generic patterns.
func RecoverDates(text, term string) *models.Infobox {
	recovered := models.NewInfobox()
	lower := strings.ToLower(text)

	for _, pattern := range datePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			recovered.Set(fieldFirstYear, m[1])
			break
		}
	}

	applyCuratedFacts(recovered, lower, term)

	return recovered
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
