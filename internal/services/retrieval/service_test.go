package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rota/internal/services/query"
	"github.com/ternarybob/rota/internal/wikipedia"
)

// fakeSource is an in-memory PageSource recording every call.
type fakeSource struct {
	hits        map[string][]wikipedia.SearchHit
	pages       map[string]*wikipedia.Page
	searchErrs  map[string]error
	pageErrs    map[string]error
	searchCalls []string
	pageCalls   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		hits:       make(map[string][]wikipedia.SearchHit),
		pages:      make(map[string]*wikipedia.Page),
		searchErrs: make(map[string]error),
		pageErrs:   make(map[string]error),
	}
}

func (f *fakeSource) Search(_ context.Context, term string, _ int) ([]wikipedia.SearchHit, error) {
	f.searchCalls = append(f.searchCalls, term)
	if err, ok := f.searchErrs[term]; ok {
		return nil, err
	}
	return f.hits[term], nil
}

func (f *fakeSource) ParsePage(_ context.Context, title string) (*wikipedia.Page, error) {
	f.pageCalls = append(f.pageCalls, title)
	if err, ok := f.pageErrs[title]; ok {
		return nil, err
	}
	if page, ok := f.pages[title]; ok {
		return page, nil
	}
	return nil, &wikipedia.APIError{Code: "missingtitle", Info: "page not found", Endpoint: "parse"}
}

func newTestService(source PageSource) *Service {
	return NewService(source, query.NewService(), arbor.NewLogger())
}

// richHTML builds a page body whose relevance summary for term comfortably
// clears the acceptance minimum.
func richHTML(term string) string {
	var b strings.Builder
	b.WriteString("<div>")
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&b, "<p>The %s was introduced with a long and storied production history spanning decades (part %d). </p>", term, i)
	}
	b.WriteString("</div>")
	return b.String()
}

func TestRetrieve_BlankQuery(t *testing.T) {
	source := newFakeSource()
	svc := newTestService(source)

	result, err := svc.Retrieve(context.Background(), "   ")

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, source.searchCalls, "blank query must not reach the network")
}

func TestRetrieve_NormalizedBrandQuery(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{{Title: "Tesla, Inc."}}
	source.pages["Tesla, Inc."] = &wikipedia.Page{
		Title: "Tesla, Inc.",
		HTML:  richHTML("Tesla"),
		Wikitext: `{{Infobox company
| name = Tesla, Inc.
| founded = July 1, 2003
}}`,
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Tesla, Inc.", result.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Tesla,_Inc.", result.URL)
	assert.Equal(t, []string{"Tesla, Inc."}, source.searchCalls)

	founded, ok := result.Infobox.Get("founded")
	require.True(t, ok)
	assert.Equal(t, "July 1, 2003", founded)
}

func TestRetrieve_DisambiguatedCandidateOrder(t *testing.T) {
	source := newFakeSource()
	// First candidate title yields no hits; the alternate title succeeds
	// before the pipeline ever falls back to the normalized query.
	source.hits["Ford Mustang (first generation)"] = []wikipedia.SearchHit{
		{Title: "Ford Mustang (first generation)"},
	}
	source.pages["Ford Mustang (first generation)"] = &wikipedia.Page{
		Title:    "Ford Mustang (first generation)",
		HTML:     richHTML("Mustang"),
		Wikitext: "",
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "Ford Mustang")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Ford Mustang (first generation)", result.Title)
	assert.Equal(t,
		[]string{"Ford Mustang", "Ford Mustang (first generation)"},
		source.searchCalls,
	)
}

func TestRetrieve_FallsBackToNormalizedQuery(t *testing.T) {
	source := newFakeSource()
	// Every disambiguated candidate is empty; the normalized query term
	// (identical text here, searched once more) finds the article.
	source.hits["Ford Mustang"] = nil
	source.hits["Ford Mustang (first generation)"] = nil

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "Ford Mustang")

	require.NoError(t, err)
	assert.Nil(t, result)
	// Candidates first, then the normalized fallback.
	assert.Equal(t,
		[]string{"Ford Mustang", "Ford Mustang (first generation)", "Ford Mustang"},
		source.searchCalls,
	)
}

func TestRetrieve_RejectsThinSummaries(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{
		{Title: "Thin Stub"},
		{Title: "Rich Article"},
	}
	source.pages["Thin Stub"] = &wikipedia.Page{
		Title: "Thin Stub",
		HTML:  "<p>Tesla stub.</p>",
	}
	source.pages["Rich Article"] = &wikipedia.Page{
		Title: "Rich Article",
		HTML:  richHTML("Tesla"),
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Rich Article", result.Title)
	assert.Equal(t, []string{"Thin Stub", "Rich Article"}, source.pageCalls)
}

func TestRetrieve_AllCandidatesThin(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{{Title: "Thin Stub"}}
	source.pages["Thin Stub"] = &wikipedia.Page{
		Title: "Thin Stub",
		HTML:  "<p>Tesla stub.</p>",
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRetrieve_TransportErrorSkipsToNextHit(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{
		{Title: "Broken Page"},
		{Title: "Rich Article"},
	}
	source.pageErrs["Broken Page"] = &wikipedia.TransportError{Endpoint: "parse", StatusCode: 503}
	source.pages["Rich Article"] = &wikipedia.Page{
		Title: "Rich Article",
		HTML:  richHTML("Tesla"),
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Rich Article", result.Title)
}

func TestRetrieve_SearchErrorAdvancesTerm(t *testing.T) {
	source := newFakeSource()
	source.searchErrs["Ford Mustang"] = &wikipedia.TransportError{Endpoint: "query/search", StatusCode: 500}
	source.hits["Ford Mustang (first generation)"] = []wikipedia.SearchHit{
		{Title: "Ford Mustang (first generation)"},
	}
	source.pages["Ford Mustang (first generation)"] = &wikipedia.Page{
		Title: "Ford Mustang (first generation)",
		HTML:  richHTML("Mustang"),
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "Ford Mustang")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Ford Mustang (first generation)", result.Title)
}

func TestRetrieve_FetchesAtMostThreeHits(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{
		{Title: "One"}, {Title: "Two"}, {Title: "Three"}, {Title: "Four"}, {Title: "Five"},
	}
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		source.pages[title] = &wikipedia.Page{Title: title, HTML: "<p>stub</p>"}
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"One", "Two", "Three"}, source.pageCalls)
}

func TestRetrieve_DateRecoveryOnModelSearch(t *testing.T) {
	source := newFakeSource()
	source.hits["Ford Mustang"] = []wikipedia.SearchHit{{Title: "Ford Mustang"}}
	source.pages["Ford Mustang"] = &wikipedia.Page{
		Title: "Ford Mustang",
		HTML: richHTML("Mustang") +
			"<p>The Mustang went on sale on April 17, 1964 as an early 1965 model year car.</p>",
		Wikitext: `{{Infobox automobile
| name = Ford Mustang
| First Year = 1970
}}`,
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "Ford Mustang")

	require.NoError(t, err)
	require.NotNil(t, result)

	// Recovered dates overwrite same-named infobox fields.
	year, ok := result.Infobox.Get("First Year")
	require.True(t, ok)
	assert.Equal(t, "1964", year)

	intro, ok := result.Infobox.Get("Introduction")
	require.True(t, ok)
	assert.Equal(t, "April 17, 1964 (as 1965 model)", intro)
}

func TestRetrieve_NoDateRecoveryWithoutWhen(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{{Title: "Tesla, Inc."}}
	source.pages["Tesla, Inc."] = &wikipedia.Page{
		Title: "Tesla, Inc.",
		HTML:  richHTML("Tesla"),
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	require.NotNil(t, result)
	// Brand query without "when": the introduced-in sentences in the body
	// must not produce a recovered date.
	assert.False(t, result.Infobox.Has("First Year"))
}

func TestRetrieve_DateRecoveryOnWhenQuery(t *testing.T) {
	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{{Title: "Tesla, Inc."}}
	source.pages["Tesla, Inc."] = &wikipedia.Page{
		Title: "Tesla, Inc.",
		HTML:  "<p>Tesla was launched in 2003 by a group of engineers.</p>" + richHTML("Tesla"),
	}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "when was tesla started")

	require.NoError(t, err)
	require.NotNil(t, result)

	year, ok := result.Infobox.Get("First Year")
	require.True(t, ok)
	assert.Equal(t, "2003", year)
}

func TestRetrieve_SummaryCapped(t *testing.T) {
	// A body with far more matching text than the cap yields a summary of
	// at most maxSummaryLen characters.
	var b strings.Builder
	b.WriteString("<div>")
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "<p>The Tesla production story, chapter %d, includes many introduced models and launched programs. </p>", i)
	}
	b.WriteString("</div>")

	source := newFakeSource()
	source.hits["Tesla, Inc."] = []wikipedia.SearchHit{{Title: "Tesla, Inc."}}
	source.pages["Tesla, Inc."] = &wikipedia.Page{Title: "Tesla, Inc.", HTML: b.String()}

	svc := newTestService(source)
	result, err := svc.Retrieve(context.Background(), "tesla")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.LessOrEqual(t, len(result.Summary), 3000)
}

func TestRetrieve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := newFakeSource()
	source.searchErrs["Tesla, Inc."] = context.Canceled

	svc := newTestService(source)
	_, err := svc.Retrieve(ctx, "tesla")

	assert.ErrorIs(t, err, context.Canceled)
}
