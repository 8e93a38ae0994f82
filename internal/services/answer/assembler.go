package answer

import (
	"regexp"
	"strings"

	"github.com/ternarybob/rota/internal/models"
)

// priorityFields are founding-related infobox fields rendered ahead of all
// others in the assembled context.
var priorityFields = []string{
	"Founded", "Established", "Founded by", "Founded in", "Founded date",
}

// foundingPatterns match founding-year phrasings in article prose.
var foundingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`founded\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`established\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`started\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`began\s+(?:in\s+)?(\d{4})`),
	regexp.MustCompile(`(\d{4})\s+by\s+`),
	regexp.MustCompile(`(\d{4})\s+as\s+`),
	regexp.MustCompile(`(\d{4})\s+when\s+`),
}

var foundingKeywords = []string{"founded", "established", "started"}

// BuildContext renders a Context into the single formatted text block fed
// to the model: title, summary, then infobox facts with founding fields
// first and remaining fields in stored order. When the infobox carries no
// founding field, a founding sentence recovered from the summary is
// appended as an additional section. Returns "" for a nil context.
func BuildContext(ret *models.Context) string {
	if ret == nil {
		return ""
	}

	var b strings.Builder

	title := ret.Title
	if title == "" {
		title = "Unknown"
	}
	summary := ret.Summary
	if summary == "" {
		summary = "No summary available"
	}

	b.WriteString("Page Title: ")
	b.WriteString(title)
	b.WriteString("\n\nSummary:\n")
	b.WriteString(summary)
	b.WriteString("\n\n")

	if ret.Infobox.Len() > 0 {
		b.WriteString("Key Information:\n")

		for _, field := range priorityFields {
			if value, ok := ret.Infobox.Get(field); ok {
				writeFact(&b, field, value)
			}
		}

		for _, key := range ret.Infobox.Keys() {
			if isPriorityField(key) {
				continue
			}
			value, _ := ret.Infobox.Get(key)
			writeFact(&b, key, value)
		}
	}

	if !hasFoundingField(ret.Infobox) {
		if founding := FoundingInfo(ret.Summary); founding != "" {
			b.WriteString("\nAdditional Information:\n- Founded: ")
			b.WriteString(founding)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// FoundingInfo scans a summary for a founding-year mention and returns the
// full sentence carrying that year, provided the sentence also contains a
// founding keyword. Returns "" when no such sentence exists.
func FoundingInfo(summary string) string {
	lower := strings.ToLower(summary)

	for _, pattern := range foundingPatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		year := m[1]

		for _, sentence := range strings.Split(summary, ". ") {
			if !strings.Contains(sentence, year) {
				continue
			}
			sentenceLower := strings.ToLower(sentence)
			for _, keyword := range foundingKeywords {
				if strings.Contains(sentenceLower, keyword) {
					return strings.TrimSpace(sentence)
				}
			}
		}
	}

	return ""
}

func writeFact(b *strings.Builder, key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	b.WriteString("- ")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func isPriorityField(key string) bool {
	for _, field := range priorityFields {
		if key == field {
			return true
		}
	}
	return false
}

// hasFoundingField reports whether the infobox already answers "when was it
// founded" structurally.
func hasFoundingField(ib *models.Infobox) bool {
	for _, field := range []string{"Founded", "Established", "Founded by", "Founded in"} {
		if ib.Has(field) {
			return true
		}
	}
	return false
}
