package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("local backend should not get an auth header")
		}

		var req openaiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3:8b" {
			t.Errorf("model = %q, want default llama3:8b", req.Model)
		}
		if req.Temperature == nil || *req.Temperature != 0.4 {
			t.Errorf("temperature not forwarded: %v", req.Temperature)
		}

		openaiOK(t, "local response")(w, r)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL)

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages:    []Message{{Role: "user", Content: "hi"}},
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "local response" {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestOllamaProvider_Unreachable(t *testing.T) {
	provider := NewOllamaProvider("http://127.0.0.1:1")

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if got := KindOf(err); got != ErrKindUnavailable {
		t.Errorf("error kind = %s, want unavailable (err: %v)", got, err)
	}
}
