// Package answer turns a retrieval context into a grounded model answer:
// deterministic context assembly, a fixed prompt template, and a generation
// boundary that converts every provider failure into a user-facing message.
package answer

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rota/internal/interfaces"
	"github.com/ternarybob/rota/internal/models"
	"github.com/ternarybob/rota/internal/services/llm"
)

const (
	// minContextLen is the floor under which an assembled context block is
	// too thin to prompt with.
	minContextLen = 50

	msgProviderUnavailable  = "The language model is not available. Please check your API key configuration."
	msgNoContext            = "No relevant context found. Please try a different query."
	msgInsufficientContext  = "Insufficient context data. Please try a more specific query."
	msgEmptyResponse        = "No response generated. Please try again."
	msgGenerationFailed     = "I encountered an error while generating a response. Please try again."
	systemInstructionAnswer = "You are an expert automotive assistant."
)

// Service generates answers from retrieved context. Provider failures never
// propagate: each failure path yields an explanatory string and a nil
// context so the caller can always render something.
type Service struct {
	provider llm.Generator
	model    string
	logger   arbor.ILogger
}

// NewService creates an answer service. provider may be nil when generation
// is unavailable; Answer then returns the fixed unavailable message.
func NewService(provider llm.Generator, model string, logger arbor.ILogger) *Service {
	return &Service{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Answer builds the prompt from the query and retrieval context and
// delegates to the provider. On success it returns the generated text and
// echoes the context for citation display; on any failure it returns an
// explanatory message and a nil context.
func (s *Service) Answer(ctx context.Context, query string, ret *models.Context) (string, *models.Context) {
	if s.provider == nil {
		return msgProviderUnavailable, nil
	}

	if ret == nil || ret.Summary == "" {
		return msgNoContext, nil
	}

	contextBlock := BuildContext(ret)
	if len(strings.TrimSpace(contextBlock)) < minContextLen {
		return msgInsufficientContext, nil
	}

	prompt := buildPrompt(query, contextBlock)

	resp, err := s.provider.GenerateContent(ctx, &llm.ContentRequest{
		Messages:          []interfaces.Message{{Role: "user", Content: prompt}},
		Model:             s.model,
		SystemInstruction: systemInstructionAnswer,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Answer generation failed")
		return msgGenerationFailed, nil
	}

	if resp == nil || resp.Text == "" {
		return msgEmptyResponse, nil
	}

	s.logger.Debug().
		Str("title", ret.Title).
		Int("answer_len", len(resp.Text)).
		Msg("Answer generated")

	return resp.Text, ret
}
