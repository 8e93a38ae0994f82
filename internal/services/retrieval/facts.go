package retrieval

import (
	"strings"

	"github.com/ternarybob/rota/internal/models"
)

const (
	fieldFirstYear    = "First Year"
	fieldIntroduction = "Introduction"
)

// curatedFact pins a historical launch fact for one specific model. The
// generic date patterns miss launches the article states as a full date
// rather than a bare year, so these entries override them when their
// textual markers appear.
//
// TODO: source these from a data file once a second entry shows up;
// encoding facts in code does not scale past a handful.
type curatedFact struct {
	keyword string      // query keyword that activates the entry
	markers []string    // lowercased text fragments, any one confirms
	fields  []factField // fact fields set on confirmation, in order
}

type factField struct {
	name  string
	value string
}

var curatedFacts = []curatedFact{
	{
		// The Mustang launched mid-year on April 17, 1964 and was sold as a
		// 1965 model, so year-only patterns misreport it.
		keyword: "mustang",
		markers: []string{"april 17, 1964", "1964½", "1965 model year"},
		fields: []factField{
			{fieldIntroduction, "April 17, 1964 (as 1965 model)"},
			{fieldFirstYear, "1964"},
		},
	},
}

// applyCuratedFacts checks each curated entry whose keyword appears in the
// search term and, when a text marker confirms it, writes its fields over
// whatever the generic patterns produced.
func applyCuratedFacts(recovered *models.Infobox, lowerText, term string) {
	lowerTerm := strings.ToLower(term)

	for _, fact := range curatedFacts {
		if !strings.Contains(lowerTerm, fact.keyword) {
			continue
		}
		if !containsAny(lowerText, fact.markers) {
			continue
		}
		for _, field := range fact.fields {
			recovered.Set(field.name, field.value)
		}
	}
}
