// Package app wires the retrieval and answering services into the single
// pipeline the CLI consumes.
package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rota/internal/common"
	"github.com/ternarybob/rota/internal/httpclient"
	"github.com/ternarybob/rota/internal/models"
	"github.com/ternarybob/rota/internal/services/answer"
	"github.com/ternarybob/rota/internal/services/cache"
	"github.com/ternarybob/rota/internal/services/llm"
	"github.com/ternarybob/rota/internal/services/query"
	"github.com/ternarybob/rota/internal/services/retrieval"
	"github.com/ternarybob/rota/internal/wikipedia"
)

// App composes the retrieval pipeline and the answer boundary. The optional
// result cache wraps Retrieve only; Answer is always recomputed.
type App struct {
	config    *common.Config
	logger    arbor.ILogger
	queries   *query.Service
	retrieval *retrieval.Service
	answers   *answer.Service
	providers *llm.ProviderFactory
	results   *cache.Cache[*models.Context]
}

// New builds the application from configuration. Provider credentials are
// not probed here; call HealthCheck before accepting queries.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	timeout := common.DurationOr(config.Wikipedia.Timeout, wikipedia.DefaultTimeout)
	fetchDelay := common.DurationOr(config.Wikipedia.FetchDelay, wikipedia.DefaultFetchDelay)

	wikiClient := wikipedia.NewClient(
		wikipedia.WithBaseURL(config.Wikipedia.BaseURL),
		wikipedia.WithHTTPClient(httpclient.NewIdentifyingHTTPClient(timeout, config.Wikipedia.UserAgent)),
		wikipedia.WithUserAgent(config.Wikipedia.UserAgent),
		wikipedia.WithFetchDelay(fetchDelay),
		wikipedia.WithLogger(logger),
	)

	queries := query.NewService()
	providers := llm.NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, logger)

	a := &App{
		config:    config,
		logger:    logger,
		queries:   queries,
		retrieval: retrieval.NewService(wikiClient, queries, logger),
		answers:   answer.NewService(providers, "", logger),
		providers: providers,
	}

	if config.Cache.Enabled {
		a.results = cache.New[*models.Context](
			cache.WithTTL[*models.Context](common.DurationOr(config.Cache.TTL, cache.DefaultTTL)),
			cache.WithMaxEntries[*models.Context](config.Cache.MaxEntries),
		)
	}

	return a, nil
}

// HealthCheck verifies the configured generation provider is reachable.
// A failure here should block the caller from accepting queries.
func (a *App) HealthCheck(ctx context.Context) error {
	return a.providers.HealthCheck(ctx)
}

// Retrieve resolves a query to a context, consulting the result cache
// first. Cache keys are the literal query text; normalization happens
// inside the pipeline, so differently-phrased queries cache independently.
func (a *App) Retrieve(ctx context.Context, rawQuery string) (*models.Context, error) {
	queryID := uuid.New().String()
	logger := a.logger.WithCorrelationId(queryID)

	if a.results != nil {
		if cached, ok := a.results.Get(rawQuery); ok {
			logger.Debug().Str("query", rawQuery).Msg("Retrieval cache hit")
			return cached, nil
		}
	}

	result, err := a.retrieval.Retrieve(ctx, rawQuery)
	if err != nil {
		return nil, err
	}

	if a.results != nil {
		a.results.Put(rawQuery, result)
	}

	if result != nil {
		logger.Info().Str("query", rawQuery).Str("title", result.Title).Msg("Retrieval completed")
	} else {
		logger.Info().Str("query", rawQuery).Msg("Retrieval found no acceptable article")
	}

	return result, nil
}

// Answer generates a grounded answer for the query from the given context.
func (a *App) Answer(ctx context.Context, rawQuery string, ret *models.Context) (string, *models.Context) {
	return a.answers.Answer(ctx, rawQuery, ret)
}

// Close releases provider resources.
func (a *App) Close() error {
	return a.providers.Close()
}
