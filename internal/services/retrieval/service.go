// Package retrieval implements the Wikipedia search-and-extract pipeline:
// candidate terms are tried in order, each hit is fetched and reduced to a
// relevance summary plus parsed infobox facts, and the first acceptable
// article becomes the answer context.
package retrieval

import (
	"context"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rota/internal/models"
	"github.com/ternarybob/rota/internal/services/query"
	"github.com/ternarybob/rota/internal/wikipedia"
)

const (
	// searchHitLimit is how many ranked hits a term search requests.
	searchHitLimit = 5

	// fetchHitLimit is how many of those hits are actually fetched before
	// moving to the next candidate term.
	fetchHitLimit = 3

	// minSummaryLen rejects articles whose relevance summary is too thin
	// to ground an answer.
	minSummaryLen = 100

	// maxSummaryLen caps the summary carried in the context.
	maxSummaryLen = 3000
)

// PageSource is the slice of the Wikipedia client the pipeline consumes.
type PageSource interface {
	Search(ctx context.Context, term string, limit int) ([]wikipedia.SearchHit, error)
	ParsePage(ctx context.Context, title string) (*wikipedia.Page, error)
}

// Service runs the retrieval pipeline. Candidates are tried strictly in
// sequence so the first acceptable article short-circuits further API calls.
type Service struct {
	source  PageSource
	queries *query.Service
	logger  arbor.ILogger
}

// NewService creates a retrieval service.
func NewService(source PageSource, queries *query.Service, logger arbor.ILogger) *Service {
	return &Service{
		source:  source,
		queries: queries,
		logger:  logger,
	}
}

// Retrieve resolves a free-text query to a Context, or nil when nothing
// acceptable is found. Blank queries return nil immediately with no network
// call. Model-disambiguated page titles are tried before the normalized
// query. The only error returned is context cancellation; transport and
// content failures advance the candidate loop instead.
func (s *Service) Retrieve(ctx context.Context, rawQuery string) (*models.Context, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, nil
	}

	wantDates := strings.Contains(strings.ToLower(rawQuery), "when")

	if candidates, ok := s.queries.Disambiguate(rawQuery); ok {
		s.logger.Debug().
			Strs("candidates", candidates).
			Str("query", rawQuery).
			Msg("Query disambiguated to model page titles")

		result, err := s.searchTerms(ctx, candidates, true)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	term := s.queries.Normalize(rawQuery)
	s.logger.Debug().
		Str("term", term).
		Str("query", rawQuery).
		Msg("Searching with normalized query")

	return s.searchTerms(ctx, []string{term}, wantDates)
}

// searchTerms walks the candidate terms and their top hits until one yields
// an acceptable context. recoverDates additionally merges pattern-recovered
// date facts into the infobox (specific-model searches and "when" queries).
func (s *Service) searchTerms(ctx context.Context, terms []string, recoverDates bool) (*models.Context, error) {
	for _, term := range terms {
		hits, err := s.source.Search(ctx, term, searchHitLimit)
		if err != nil {
			if canceled(ctx, err) {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("term", term).Msg("Wikipedia search failed, trying next candidate")
			continue
		}

		if len(hits) == 0 {
			s.logger.Debug().Str("term", term).Msg("No search hits for term")
			continue
		}

		if len(hits) > fetchHitLimit {
			hits = hits[:fetchHitLimit]
		}

		for _, hit := range hits {
			result, err := s.evaluateHit(ctx, term, hit.Title, recoverDates)
			if err != nil {
				if canceled(ctx, err) {
					return nil, err
				}
				s.logger.Warn().Err(err).Str("title", hit.Title).Msg("Page fetch failed, trying next hit")
				continue
			}
			if result != nil {
				return result, nil
			}
		}
	}

	return nil, nil
}

// evaluateHit fetches one page and applies the acceptance rules. A nil
// result with nil error means the candidate was rejected for insufficient
// content.
func (s *Service) evaluateHit(ctx context.Context, term, title string, recoverDates bool) (*models.Context, error) {
	page, err := s.source.ParsePage(ctx, title)
	if err != nil {
		return nil, err
	}

	cleanText := CleanHTML(page.HTML)
	summary := RelevanceSummary(cleanText, term)

	if len(strings.TrimSpace(summary)) < minSummaryLen {
		s.logger.Debug().
			Str("title", page.Title).
			Int("summary_len", len(summary)).
			Msg("Candidate rejected: summary below minimum length")
		return nil, nil
	}

	infobox := ParseInfobox(page.Wikitext)

	if recoverDates {
		if recovered := RecoverDates(cleanText, term); recovered.Len() > 0 {
			infobox.Merge(recovered)
		}
	}

	if len(summary) > maxSummaryLen {
		summary = summary[:maxSummaryLen]
	}

	s.logger.Info().
		Str("title", page.Title).
		Int("summary_len", len(summary)).
		Int("infobox_fields", infobox.Len()).
		Msg("Article accepted")

	return &models.Context{
		Title:   page.Title,
		Summary: summary,
		Infobox: infobox,
		URL:     models.ArticleURL(page.Title),
	}, nil
}

func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
