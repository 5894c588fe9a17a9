package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_ChatWithMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You find connections between documents"},
		{Role: "user", Content: "Hello"},
	}

	tests := []struct {
		name       string
		messages   []Message
		params     ChatParams
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantReply  string
		wantErr    bool
	}{
		{
			name:     "sends sampling parameters",
			messages: messages,
			params:   ChatParams{Model: "custom-model", MaxTokens: 500, Temperature: 0.3},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
				}
				if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
					t.Error("missing Authorization header")
				}

				var req ChatRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "custom-model" {
					t.Errorf("model = %q, want custom-model", req.Model)
				}
				if req.MaxTokens != 500 || req.Temperature != 0.3 {
					t.Errorf("max_tokens = %d temperature = %v, want 500 and 0.3", req.MaxTokens, req.Temperature)
				}
				if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
					t.Errorf("messages = %+v", req.Messages)
				}

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(ChatResponse{
					ID:     "test-id",
					Object: "chat.completion",
					Choices: []ChatChoice{
						{Message: Message{Role: "assistant", Content: "Both notes mention Paris."}, FinishReason: "stop"},
					},
				})
			},
			wantReply: "Both notes mention Paris.",
		},
		{
			name:     "empty model uses client default",
			messages: messages[1:],
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				var raw map[string]any
				_ = json.NewDecoder(r.Body).Decode(&raw)
				if raw["model"] != "test-model" {
					t.Errorf("model = %v, want test-model", raw["model"])
				}
				if _, ok := raw["max_tokens"]; ok {
					t.Error("max_tokens should be omitted when zero")
				}
				_ = json.NewEncoder(w).Encode(ChatResponse{
					Choices: []ChatChoice{{Message: Message{Content: "Response"}}},
				})
			},
			wantReply: "Response",
		},
		{
			name:     "no choices returned",
			messages: messages,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ChatResponse{Choices: []ChatChoice{}})
			},
			wantErr: true,
		},
		{
			name:     "server error",
			messages: messages,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("model loading"))
			},
			wantErr: true,
		},
		{
			name:     "malformed response",
			messages: messages,
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			wantErr: true,
		},
		{
			name: "no messages",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				t.Error("server should not be called without messages")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			reply, err := client.ChatWithMessages(context.Background(), tt.messages, tt.params)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ChatWithMessages() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ChatWithMessages() unexpected error: %v", err)
			}
			if reply != tt.wantReply {
				t.Errorf("ChatWithMessages() reply = %q, want %q", reply, tt.wantReply)
			}
		})
	}
}

func TestClient_ChatWithMessages_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "test-key", "test-model")
	if _, err := client.ChatWithMessages(ctx, []Message{{Role: "user", Content: "hi"}}, ChatParams{}); err == nil {
		t.Error("ChatWithMessages() with canceled context should fail")
	}
}
