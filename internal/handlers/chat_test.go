package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rickmorty-api/internal/contextutil"
	"rickmorty-api/internal/rag"
	"rickmorty-api/internal/service"
	"rickmorty-api/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

func TestChatHandler_ServeHTTP(t *testing.T) {
	twoTurns := rag.NewHistory(
		rag.ChatTurn{Sender: rag.SenderUser, Text: "Hi"},
		rag.ChatTurn{Sender: rag.SenderBot, Text: "Wubba lubba dub dub"},
	)

	tests := []struct {
		name       string
		method     string
		body       string
		mockSetup  func(*mocks.MockChatService)
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:   "successful request",
			method: http.MethodPost,
			body:   `{"query":"Who is Pickle Rick?","character":"Rick Sanchez","history":"None"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{Query: "Who is Pickle Rick?", Character: "Rick Sanchez", History: rag.NoHistory()}).
					Return(service.ChatResponse{Response: "Me. I'm Pickle Rick!"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "Me. I'm Pickle Rick!"},
		},
		{
			name:   "defaults character and history",
			method: http.MethodPost,
			body:   `{"query":"hello"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{Query: "hello", Character: rag.GenericCharacter, History: rag.NoHistory()}).
					Return(service.ChatResponse{Response: "hi"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "hi"},
		},
		{
			name:   "null character and history",
			method: http.MethodPost,
			body:   `{"query":"hello","character":null,"history":null}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{Query: "hello", Character: rag.GenericCharacter, History: rag.NoHistory()}).
					Return(service.ChatResponse{Response: "hi"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "hi"},
		},
		{
			name:   "history turns are passed through",
			method: http.MethodPost,
			body:   `{"query":"and then?","character":"Morty","history":[{"sender":"user","text":"Hi"},{"sender":"bot","text":"Wubba lubba dub dub"}]}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					ProcessChat(gomock.Any(), service.ChatRequest{Query: "and then?", Character: "Morty", History: twoTurns}).
					Return(service.ChatResponse{Response: "aw jeez"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "aw jeez"},
		},
		{
			name:       "GET not allowed",
			method:     http.MethodGet,
			body:       `{"query":"hello"}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   map[string]string{"error": "Invalid request method"},
		},
		{
			name:       "PUT not allowed with bad body",
			method:     http.MethodPut,
			body:       `{not json`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   map[string]string{"error": "Invalid request method"},
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			body:       `{not json`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "trailing data after object",
			method:     http.MethodPost,
			body:       `{"query":"hi"} garbage`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "two concatenated objects",
			method:     http.MethodPost,
			body:       `{"query":"hi"}{"query":"x"}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "empty body",
			method:     http.MethodPost,
			body:       ``,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "history string other than None",
			method:     http.MethodPost,
			body:       `{"query":"hello","history":"yesterday"}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "non-string query",
			method:     http.MethodPost,
			body:       `{"query":42}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "Invalid JSON"},
		},
		{
			name:       "missing query",
			method:     http.MethodPost,
			body:       `{"character":"Rick Sanchez"}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "No query provided"},
		},
		{
			name:       "empty query",
			method:     http.MethodPost,
			body:       `{"query":""}`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": "No query provided"},
		},
		{
			name:   "pipeline failure",
			method: http.MethodPost,
			body:   `{"query":"hello"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, errors.New("qdrant: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)
			handler := NewChatHandler(mockChatService)

			req := httptest.NewRequest(tt.method, "/api/chatbot", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			var got map[string]string
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			for k, v := range tt.wantBody {
				if got[k] != v {
					t.Errorf("ServeHTTP() body[%q] = %q, want %q", k, got[k], v)
				}
			}
			if len(got) != len(tt.wantBody) {
				t.Errorf("ServeHTTP() body = %v, want %v", got, tt.wantBody)
			}
		})
	}
}

func TestChatHandler_LogsFailureKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "retrieval", err: errors.Join(service.ErrExternalService, rag.ErrRetrievalUnavailable), want: "failure=retrieval_unavailable"},
		{name: "generation", err: errors.Join(service.ErrExternalService, rag.ErrGenerationFailed), want: "failure=generation_failed"},
		{name: "other", err: errors.New("boom"), want: "failure=internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			mockChatService.EXPECT().ProcessChat(gomock.Any(), gomock.Any()).Return(service.ChatResponse{}, tt.err)

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			req := httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(`{"query":"hi"}`))
			req = req.WithContext(contextutil.WithLogger(req.Context(), logger))
			w := httptest.NewRecorder()

			NewChatHandler(mockChatService).ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("ServeHTTP() status = %v, want 500", w.Code)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log output %q does not contain %q", buf.String(), tt.want)
			}
			if strings.Contains(w.Body.String(), "boom") {
				t.Error("response should not leak the internal error")
			}
		})
	}
}
