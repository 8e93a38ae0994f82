// Package query maps raw user questions to canonical Wikipedia search
// terms: brand alias expansion, title-case fallback, and disambiguation of
// known vehicle model names into prioritized page-title candidates.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Service performs deterministic query normalization. All lookups run
// against static tables; there is no I/O.
type Service struct {
	aliases         map[string]string
	aliasOrder      []string
	protectedTokens []string
	modelKeywords   []string
	modelCandidates map[string][]string
	titleCaser      cases.Caser
}

// Option configures the Service, letting callers swap the heuristic tables
// without touching control flow.
type Option func(*Service)

// WithAliases replaces the brand alias table.
func WithAliases(aliases map[string]string) Option {
	return func(s *Service) {
		s.aliases = aliases
	}
}

// WithProtectedTokens replaces the model tokens that suppress brand substitution.
func WithProtectedTokens(tokens []string) Option {
	return func(s *Service) {
		s.protectedTokens = tokens
	}
}

// WithModelTable replaces the model keyword list and its candidate titles.
// Keywords are matched in slice order.
func WithModelTable(keywords []string, candidates map[string][]string) Option {
	return func(s *Service) {
		s.modelKeywords = keywords
		s.modelCandidates = candidates
	}
}

// NewService creates a query service backed by the built-in automotive tables.
func NewService(opts ...Option) *Service {
	s := &Service{
		aliases:         brandAliases,
		protectedTokens: protectedModelTokens,
		modelKeywords:   modelKeywords,
		modelCandidates: modelCandidates,
		titleCaser:      cases.Title(language.English),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Fixed scan order keeps substring matching deterministic when a query
	// mentions more than one alias.
	s.aliasOrder = make([]string, 0, len(s.aliases))
	for alias := range s.aliases {
		s.aliasOrder = append(s.aliasOrder, alias)
	}
	sort.Strings(s.aliasOrder)

	return s
}

// Normalize maps a raw query to a canonical search term. An exact alias
// match wins outright; otherwise an alias occurring as a substring is
// expanded unless the query also names a protected model token. With no
// alias match the trimmed query is returned title-cased.
func (s *Service) Normalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	if canonical, ok := s.aliases[lower]; ok {
		return canonical
	}

	for _, alias := range s.aliasOrder {
		if !strings.Contains(lower, alias) {
			continue
		}
		if s.mentionsProtectedModel(lower) {
			break
		}
		return s.aliases[alias]
	}

	return s.titleCaser.String(strings.TrimSpace(raw))
}

// Disambiguate scans the query for a known vehicle model keyword. On the
// first hit it returns that model's ordered candidate page titles and true;
// otherwise it returns nil and false and the caller falls through to the
// normalized query.
func (s *Service) Disambiguate(raw string) ([]string, bool) {
	lower := strings.ToLower(raw)

	for _, keyword := range s.modelKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if candidates, ok := s.modelCandidates[keyword]; ok && len(candidates) > 0 {
			out := make([]string, len(candidates))
			copy(out, candidates)
			return out, true
		}
		return []string{s.titleCaser.String(keyword)}, true
	}

	return nil, false
}

func (s *Service) mentionsProtectedModel(lowerQuery string) bool {
	for _, token := range s.protectedTokens {
		if strings.Contains(lowerQuery, token) {
			return true
		}
	}
	return false
}
