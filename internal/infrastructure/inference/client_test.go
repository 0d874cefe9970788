package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airndlab/support-qna/internal/core/domain"
)

func TestEmbedderEmbedsTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model string   `json:"model"`
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "e5-large-v2" || len(req.Texts) != 2 {
			t.Fatalf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{1, 0}, {0, 1}},
		})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, nil), "e5-large-v2")
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 {
		t.Fatalf("unexpected vectors %+v", vectors)
	}
}

func TestEmbedderRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}}})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, nil), "m")
	if _, err := embedder.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error on vector count mismatch")
	}
}

func TestRerankerSortsByScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rerank" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": []float64{0.12, 0.87}})
	}))
	defer server.Close()

	reranker := NewReranker(New(server.URL, nil), "cross-encoder")
	candidates := []domain.Candidate{
		{Entry: domain.CorpusEntry{Text: "первый", Row: 0}, Score: 0.9},
		{Entry: domain.CorpusEntry{Text: "второй", Row: 1}, Score: 0.8},
	}

	got, err := reranker.Rerank(context.Background(), "вопрос", candidates)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if got[0].Entry.Row != 1 || got[0].Score != 0.87 {
		t.Fatalf("expected reranked order, got %+v", got)
	}
	// Input order stays untouched.
	if candidates[0].Entry.Row != 0 {
		t.Fatalf("input slice was mutated: %+v", candidates)
	}
}

func TestClassifierReturnsLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/classify" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Question string `json:"question"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "level-1" {
			t.Fatalf("unexpected model %q", req.Model)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"label": " Аккаунт "})
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, nil), "level-1")
	label, err := classifier.Classify(context.Background(), "вопрос")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if label != "Аккаунт" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestCallWrapsRetryableStatusAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, nil), "m")
	_, err := embedder.EmbedQuery(context.Background(), "вопрос")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}
