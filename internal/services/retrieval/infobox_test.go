package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInfobox_NoInfobox(t *testing.T) {
	facts := ParseInfobox("Just an article body with no template at all.")
	require.NotNil(t, facts)
	assert.Equal(t, 0, facts.Len())
}

func TestParseInfobox_EmptyInput(t *testing.T) {
	facts := ParseInfobox("")
	assert.Equal(t, 0, facts.Len())
}

func TestParseInfobox_Fields(t *testing.T) {
	wikitext := `Intro text.
{{Infobox automobile
| name = Ford Mustang
| manufacturer = [[Ford Motor Company|Ford]]
| production = 1964–present
| class = [[Pony car]]
}}
Rest of the article.`

	facts := ParseInfobox(wikitext)

	tests := []struct {
		key      string
		expected string
	}{
		{"name", "Ford Mustang"},
		{"manufacturer", "Ford"},
		{"production", "1964–present"},
		{"class", "Pony car"},
	}

	for _, tt := range tests {
		got, ok := facts.Get(tt.key)
		require.True(t, ok, "missing field %q", tt.key)
		assert.Equal(t, tt.expected, got)
	}
}

func TestParseInfobox_PreservesFieldOrder(t *testing.T) {
	wikitext := `{{Infobox company
| name = Tesla, Inc.
| type = Public
| founded = July 1, 2003
}}`

	facts := ParseInfobox(wikitext)
	assert.Equal(t, []string{"name", "type", "founded"}, facts.Keys())
}

func TestParseInfobox_StripsMarkupArtifacts(t *testing.T) {
	wikitext := `{{Infobox company
| name = Tesla, Inc. <!-- official name -->
| founder = [[Martin Eberhard]]<ref>Company filing.</ref>
| industry = Automotive<br/>
| empty_field =
}}`

	facts := ParseInfobox(wikitext)

	name, _ := facts.Get("name")
	assert.Equal(t, "Tesla, Inc.", name)

	founder, _ := facts.Get("founder")
	assert.Equal(t, "Martin Eberhard", founder)

	industry, _ := facts.Get("industry")
	assert.Equal(t, "Automotive", industry)

	// Fields that clean down to nothing are discarded.
	assert.False(t, facts.Has("empty_field"))
}

func TestParseInfobox_NestedTemplateTruncatesBlock(t *testing.T) {
	// The block match is non-greedy, so a closed nested template ends it
	// early: fields up to the template survive, later ones do not.
	wikitext := `{{Infobox company
| name = Tesla, Inc.
| revenue = {{increase}} US$96.8 billion
| employees = 140473
}}`

	facts := ParseInfobox(wikitext)

	assert.True(t, facts.Has("name"))
	assert.False(t, facts.Has("revenue"))
	assert.False(t, facts.Has("employees"))
}

func TestParseInfobox_FirstBlockOnly(t *testing.T) {
	wikitext := `{{Infobox first
| origin = primary
}}
{{Infobox second
| origin = secondary
}}`

	facts := ParseInfobox(wikitext)

	origin, _ := facts.Get("origin")
	assert.Equal(t, "primary", origin)
}
