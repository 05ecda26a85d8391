package service

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/mock_chat.go -package=mocks rickmorty-api/internal/service ChatPipeline,ChatService

import (
	"context"
	"fmt"
	"strings"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/rag"
)

// ChatPipeline runs one chatbot turn end to end.
// This interface is defined from the service layer's perspective (consumer-first).
type ChatPipeline interface {
	Run(ctx context.Context, req rag.Request) (string, error)
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Query     string
	Character string
	History   rag.History
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Response string
}

// ChatService answers chatbot queries.
type ChatService interface {
	// ProcessChat validates the request and runs the pipeline.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

type chatService struct {
	pipeline ChatPipeline
}

// NewChatService creates a new ChatService.
func NewChatService(pipeline ChatPipeline) ChatService {
	return &chatService{pipeline: pipeline}
}

// ProcessChat processes a chat request. Pipeline errors keep their rag sentinel
// and are also marked as ErrExternalService.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in chat request")
		return ChatResponse{}, &ValidationError{
			Field:   "query",
			Message: "cannot be empty",
		}
	}

	character := req.Character
	if strings.TrimSpace(character) == "" {
		character = rag.GenericCharacter
	}

	reply, err := s.pipeline.Run(ctx, rag.Request{
		Query:     req.Query,
		Character: character,
		History:   req.History,
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat pipeline failed", "error", err)
		return ChatResponse{}, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	logger.InfoContext(ctx, "chat request processed",
		"character", character,
		"query_length", len(req.Query),
		"response_length", len(reply),
	)
	return ChatResponse{Response: reply}, nil
}
