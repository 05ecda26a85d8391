package rag

import (
	"context"
	"fmt"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/llm"
	"rickmorty-api/internal/observability"
)

// Chain runs the chat pipeline: format history, retrieve, assemble, generate.
// It holds no per-request state and is safe for concurrent use.
type Chain struct {
	retriever Retriever
	generator Generator
	params    llm.ChatParams
}

// NewChain creates a chain. params are passed to every model call.
func NewChain(retriever Retriever, generator Generator, params llm.ChatParams) *Chain {
	return &Chain{
		retriever: retriever,
		generator: generator,
		params:    params,
	}
}

// Run answers req. The model output is returned as-is. Failures wrap
// ErrRetrievalUnavailable or ErrGenerationFailed; nothing is retried.
func (c *Chain) Run(ctx context.Context, req Request) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	ctx, span := observability.StartStepSpan(ctx, "chain")
	defer span.End()

	history := FormatHistory(req.History)

	retrieveCtx, retrieveSpan := observability.StartStepSpan(ctx, "retrieve")
	retrieved, err := c.retriever.Retrieve(retrieveCtx, req.Query)
	observability.RecordError(retrieveSpan, err)
	retrieveSpan.End()
	if err != nil {
		observability.RecordError(span, err)
		logger.ErrorContext(ctx, "context retrieval failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}

	prompt := AssemblePrompt(req.Character, history, retrieved, req.Query)
	logger.DebugContext(ctx, "prompt assembled",
		"character", prompt.Character,
		"history_length", len(prompt.History),
		"context_length", len(prompt.Context),
	)

	generateCtx, generateSpan := observability.StartStepSpan(ctx, "generate")
	reply, err := c.generator.ChatWithMessages(generateCtx, prompt.Messages(), c.params)
	observability.RecordError(generateSpan, err)
	generateSpan.End()
	if err != nil {
		observability.RecordError(span, err)
		logger.ErrorContext(ctx, "generation failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	logger.InfoContext(ctx, "chat answered", "character", prompt.Character, "answer_length", len(reply))
	return reply, nil
}
