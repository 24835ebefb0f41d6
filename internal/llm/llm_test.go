package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGeminiServer mimics generateContent and the model metadata endpoint.
func fakeGeminiServer(t *testing.T, reply string, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1beta/models/gemini-2.5-flash:generateContent":
			_ = json.NewDecoder(r.Body).Decode(&received)
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]string{{"text": reply}}}},
				},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models/gemini-2.5-flash":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &received
}

func TestGeminiClient_Generate(t *testing.T) {
	srv, received := fakeGeminiServer(t, "- Draft outline\n- Review notes", http.StatusOK)
	c := NewGeminiClientWithHTTP(srv.URL, "", "test-key", srv.Client())

	text, err := c.Generate(context.Background(), "Break it down")
	require.NoError(t, err)
	assert.Equal(t, "- Draft outline\n- Review notes", text)
	assert.Equal(t, "gemini:gemini-2.5-flash", c.ID())

	contents := (*received)["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "Break it down", parts[0].(map[string]any)["text"])
}

func TestGeminiClient_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		c := NewGeminiClient("http://unused", "", "")
		_, err := c.Generate(context.Background(), "x")
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv, _ := fakeGeminiServer(t, "", http.StatusTooManyRequests)
		c := NewGeminiClientWithHTTP(srv.URL, "", "test-key", srv.Client())
		_, err := c.Generate(context.Background(), "x")
		assert.ErrorContains(t, err, "429")
	})

	t.Run("no candidates yields empty text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()
		c := NewGeminiClientWithHTTP(srv.URL, "", "test-key", srv.Client())
		text, err := c.Generate(context.Background(), "x")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("malformed reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()
		c := NewGeminiClientWithHTTP(srv.URL, "", "test-key", srv.Client())
		_, err := c.Generate(context.Background(), "x")
		assert.ErrorContains(t, err, "decode gemini response")
	})
}

func TestGeminiClient_HealthCheck(t *testing.T) {
	srv, _ := fakeGeminiServer(t, "", http.StatusOK)
	assert.NoError(t, NewGeminiClientWithHTTP(srv.URL, "", "test-key", srv.Client()).HealthCheck(context.Background()))
	assert.Error(t, NewGeminiClientWithHTTP(srv.URL, "", "wrong", srv.Client()).HealthCheck(context.Background()))
	assert.Error(t, NewGeminiClientWithHTTP(srv.URL, "", "", srv.Client()).HealthCheck(context.Background()))
}

// fakeOllamaServer mimics the Ollama generate and tags endpoints.
func fakeOllamaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req ollamaRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Stream {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ollamaResponse{Response: "* Pack bags\n* Book taxi", Done: true})
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaClient(t *testing.T) {
	srv := fakeOllamaServer(t)
	c := NewOllamaClient(srv.URL+"/", "qwen2.5:1.5b")

	text, err := c.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "* Pack bags\n* Book taxi", text)
	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.Equal(t, "ollama:qwen2.5:1.5b", c.ID())
}

type slowGenerator struct{ delay time.Duration }

func (g slowGenerator) ID() string { return "slow" }

func (g slowGenerator) Generate(ctx context.Context, _ string) (string, error) {
	select {
	case <-time.After(g.delay):
		return "- Done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestTimeoutGenerator(t *testing.T) {
	t.Run("passes through fast calls", func(t *testing.T) {
		g := NewTimeoutGenerator(slowGenerator{delay: time.Millisecond}, time.Second)
		text, err := g.Generate(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "- Done", text)
		assert.Equal(t, "slow", g.ID())
	})

	t.Run("fails slow calls", func(t *testing.T) {
		g := NewTimeoutGenerator(slowGenerator{delay: 5 * time.Second}, 20*time.Millisecond)
		start := time.Now()
		_, err := g.Generate(context.Background(), "x")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestNew(t *testing.T) {
	gen, err := New(Options{Provider: ProviderOllama, OllamaBaseURL: "http://localhost:11434", OllamaModel: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)

	gen, err = New(Options{GeminiAPIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	require.IsType(t, &TimeoutGenerator{}, gen)
	assert.Equal(t, "gemini:gemini-2.5-flash", gen.ID())

	_, err = New(Options{Provider: "openai"})
	assert.Error(t, err)
}
