package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"instareply/internal/utils/apperrors"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:              "test-key",
		GenerationModel:     "gemini-1.5-flash",
		EmbeddingModel:      "gemini-embedding-001",
		EmbeddingDimensions: 8,
		BaseURL:             baseURL,
	}, zerolog.Nop())
}

func TestGenerateReply(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "Hello! How can I help?"}},
				},
			}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.GenerateReply(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Hello! How can I help?" {
		t.Errorf("unexpected reply: %q", reply)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("unexpected key: %q", gotKey)
	}
}

func TestGenerateReplyMissingKey(t *testing.T) {
	client := NewClient(Config{GenerationModel: "gemini-1.5-flash"}, zerolog.Nop())
	_, err := client.GenerateReply(context.Background(), "hi")
	if !apperrors.IsType(err, apperrors.ErrTypeGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestGenerateReplyProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GenerateReply(context.Background(), "hi")
	if !apperrors.IsType(err, apperrors.ErrTypeGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestGenerateReplyNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.GenerateReply(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestEmbed(t *testing.T) {
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/models/gemini-embedding-001:embedContent" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{0.1, 0.2, 0.3}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	vector, err := client.Embed(context.Background(), "store hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("unexpected vector: %v", vector)
	}
	if gotReq["model"] != "models/gemini-embedding-001" {
		t.Errorf("unexpected model field: %v", gotReq["model"])
	}
	if dims, ok := gotReq["outputDimensionality"].(float64); !ok || dims != 8 {
		t.Errorf("expected outputDimensionality 8, got %v", gotReq["outputDimensionality"])
	}
}

func TestEmbedMissingKey(t *testing.T) {
	client := NewClient(Config{EmbeddingModel: "gemini-embedding-001"}, zerolog.Nop())
	_, err := client.Embed(context.Background(), "text")
	if !apperrors.IsType(err, apperrors.ErrTypeEmbedding) {
		t.Fatalf("expected embedding error, got %v", err)
	}
}

func TestEmbedEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embedding": map[string]any{"values": []float32{}}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}
