package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
)

func completion(content string) string {
	return `{"id":"c1","object":"chat.completion","created":1,"model":"m",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + content + `}}],` +
		`"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClient(NewOpenAIClientParams{
		Model:   "test-model",
		ChatURL: srv.URL + "/",
		ChatKey: "k",
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	return c
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(NewOpenAIClientParams{}); err == nil {
		t.Fatalf("expected an error without api key")
	}
}

func TestGenerateCompletion(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completion(`"Der Artikel."`))
	})

	got, err := c.GenerateCompletion(context.Background(), "Hallo", ai.WithSystemPrompts("System"))
	if err != nil {
		t.Fatalf("GenerateCompletion() error = %v", err)
	}
	if got != "Der Artikel." {
		t.Fatalf("GenerateCompletion() = %q", got)
	}
	if !strings.Contains(body, `"test-model"`) || !strings.Contains(body, `"System"`) {
		t.Fatalf("request body missing model or system prompt: %s", body)
	}
	if m := c.GetMetrics(); m.TotalTokens != 15 {
		t.Fatalf("metrics = %+v", m)
	}
	c.ResetMetrics()
	if m := c.GetMetrics(); m.TotalTokens != 0 {
		t.Fatalf("metrics after reset = %+v", m)
	}
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completion(`"`+"```json\\n{\\\"name\\\":\\\"WUT\\\"}\\n```"+`"`))
	})

	var out struct {
		Name string `json:"name"`
	}
	if err := c.GenerateCompletionWithFormat(context.Background(), "emotion", "", "p", &out, ai.WithStrictSchema(false)); err != nil {
		t.Fatalf("GenerateCompletionWithFormat() error = %v", err)
	}
	if out.Name != "WUT" {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestEmptyAndQuotaErrors(t *testing.T) {
	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completion(`""`))
	})
	if _, err := empty.GenerateCompletion(context.Background(), "p"); !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("empty content error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"slow down","type":"rate_limit","code":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()
	limited, err := NewOpenAIClient(NewOpenAIClientParams{Model: "m", ChatURL: srv.URL + "/", ChatKey: "k", MaxRetries: 0})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if _, err := limited.GenerateCompletion(context.Background(), "p"); !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("429 error = %v, want ErrQuotaExceeded", err)
	}
}
