package adapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/model"
)

func TestOpenRouterComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("successful completion", func(t *testing.T) {
		var gotReq map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gt.V(t, r.URL.Path).Equal("/chat/completions")
			gt.V(t, r.Header.Get("Authorization")).Equal("Bearer test-key")
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"model": "anthropic/claude-3.5-sonnet",
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": "The 11-hour rule limits driving time."}},
				},
			})
		}))
		defer srv.Close()

		client := adapter.NewOpenRouter("test-key", adapter.WithOpenRouterBaseURL(srv.URL))
		resp, err := client.Complete(ctx, &adapter.CompletionRequest{
			Messages: []adapter.ChatMessage{
				{Role: "system", Content: "You are a compliance assistant."},
				{Role: "user", Content: "What is the 11-hour rule?"},
			},
		})
		gt.NoError(t, err)
		gt.S(t, resp.Content).Contains("11-hour")

		// Defaults fill in model, temperature and max_tokens.
		gt.V(t, gotReq["model"]).Equal("anthropic/claude-3.5-sonnet")
		gt.V(t, gotReq["temperature"]).Equal(0.7)
		gt.V(t, gotReq["max_tokens"]).Equal(float64(2000))
	})

	t.Run("non-200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := adapter.NewOpenRouter("test-key", adapter.WithOpenRouterBaseURL(srv.URL))
		_, err := client.Complete(ctx, &adapter.CompletionRequest{
			Messages: []adapter.ChatMessage{{Role: "user", Content: "hello"}},
		})
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrExternalService)).Equal(true)
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := adapter.NewOpenRouter("test-key", adapter.WithOpenRouterBaseURL(srv.URL))
		_, err := client.Complete(ctx, &adapter.CompletionRequest{
			Messages: []adapter.ChatMessage{{Role: "user", Content: "hello"}},
		})
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrExternalService)).Equal(true)
	})

	t.Run("unreachable server", func(t *testing.T) {
		client := adapter.NewOpenRouter("test-key",
			adapter.WithOpenRouterBaseURL("http://127.0.0.1:1/api/v1"))
		_, err := client.Complete(ctx, &adapter.CompletionRequest{
			Messages: []adapter.ChatMessage{{Role: "user", Content: "hello"}},
		})
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrExternalService)).Equal(true)
	})
}
