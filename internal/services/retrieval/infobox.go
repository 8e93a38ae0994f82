package retrieval

import (
	"regexp"
	"strings"

	"github.com/ternarybob/rota/internal/models"
)

var (
	// infoboxPattern locates the first infobox template block. Non-greedy
	// and first-occurrence only: Wikipedia convention is one infobox per
	// article, so nested or repeated blocks are not chased.
	infoboxPattern = regexp.MustCompile(`(?is)\{\{Infobox.*?\}\}`)

	commentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	refPattern      = regexp.MustCompile(`(?s)<ref.*?</ref>`)
	wikiLinkPattern = regexp.MustCompile(`\[\[(?:[^|\]]*\|)?([^\]]+)\]\]`)
	templatePattern = regexp.MustCompile(`\{\{.*?\}\}`)
	htmlTagPattern  = regexp.MustCompile(`<.*?>`)
)

// ParseInfobox extracts structured key/value facts from an article's raw
// wikitext. Wikitext with no infobox block yields an empty mapping, never
// an error. Field order follows first occurrence in the markup.
func ParseInfobox(wikitext string) *models.Infobox {
	facts := models.NewInfobox()

	block := infoboxPattern.FindString(wikitext)
	if block == "" {
		return facts
	}

	block = cleanInfoboxMarkup(block)

	for _, line := range strings.Split(block, "\n") {
		if !strings.Contains(line, "=") || strings.HasPrefix(strings.TrimSpace(line), "{{") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		key := strings.Trim(parts[0], " |\t")
		if key == "" || strings.HasPrefix(key, "{{") {
			continue
		}

		value := cleanInfoboxValue(parts[1])
		if value == "" {
			continue
		}

		facts.Set(key, value)
	}

	return facts
}

// cleanInfoboxMarkup removes HTML comments and reference spans, then
// resolves wiki links to their display text (or target when no alias).
func cleanInfoboxMarkup(block string) string {
	block = commentPattern.ReplaceAllString(block, "")
	block = refPattern.ReplaceAllString(block, "")
	return wikiLinkPattern.ReplaceAllString(block, "$1")
}

// cleanInfoboxValue strips residual nested templates and HTML tags from a
// field value.
func cleanInfoboxValue(value string) string {
	value = templatePattern.ReplaceAllString(value, "")
	value = htmlTagPattern.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}
