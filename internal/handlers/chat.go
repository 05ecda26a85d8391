package handlers

import (
	"errors"
	"net/http"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/rag"
	"rickmorty-api/internal/service"
)

// ChatHandler handles HTTP requests for the chatbot.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the HTTP request payload for chat.
// A missing or null character means the generic persona; a missing, null or
// "None" history means no history.
type ChatRequest struct {
	Query     string      `json:"query"`
	Character *string     `json:"character"`
	History   rag.History `json:"history"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Invalid request method")
		return
	}

	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Query == "" {
		writeError(ctx, w, http.StatusBadRequest, "No query provided")
		return
	}

	character := rag.GenericCharacter
	if req.Character != nil && *req.Character != "" {
		character = *req.Character
	}

	svcResp, err := h.chatService.ProcessChat(ctx, service.ChatRequest{
		Query:     req.Query,
		Character: character,
		History:   req.History,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			writeError(ctx, w, http.StatusBadRequest, "No query provided")
			return
		}
		logger.ErrorContext(ctx, "chat request failed", "failure", failureKind(err), "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{Response: svcResp.Response})
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, rag.ErrRetrievalUnavailable):
		return "retrieval_unavailable"
	case errors.Is(err, rag.ErrGenerationFailed):
		return "generation_failed"
	default:
		return "internal"
	}
}
