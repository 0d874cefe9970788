package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/airndlab/support-qna/internal/core/domain"
)

func TestClientAnswerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/answers" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "Как изменить никнейм?" {
			t.Fatalf("unexpected question %q", req.Question)
		}
		_ = json.NewEncoder(w).Encode(domain.PipelineAnswer{
			Answer: "Откройте настройки профиля.",
			Class1: "Аккаунт",
			Class2: "Профиль",
		})
	}))
	defer server.Close()

	client := NewClient("faq", server.URL, time.Second)
	answer, err := client.Answer(context.Background(), "Как изменить никнейм?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Answer != "Откройте настройки профиля." || answer.Class1 != "Аккаунт" {
		t.Fatalf("unexpected answer %+v", answer)
	}
}

func TestClientAnswerNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("faq", server.URL, time.Second)
	_, err := client.Answer(context.Background(), "вопрос")
	if !domain.IsKind(err, domain.ErrPipelineUnavailable) {
		t.Fatalf("expected ErrPipelineUnavailable, got %v", err)
	}
}

func TestClientAnswerTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client := NewClient("faq", server.URL, 20*time.Millisecond)
	_, err := client.Answer(context.Background(), "вопрос")
	if !domain.IsKind(err, domain.ErrPipelineUnavailable) {
		t.Fatalf("expected ErrPipelineUnavailable on timeout, got %v", err)
	}
}

func TestBuildRoutesValidatesTable(t *testing.T) {
	routes, err := BuildRoutes(map[string]string{
		"faq":       "http://pipeline-faq:8088",
		"faq_cases": "http://pipeline-faq-cases:8088",
	}, time.Second)
	if err != nil {
		t.Fatalf("BuildRoutes() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}

	if _, err := BuildRoutes(map[string]string{"faq": "not-a-url"}, time.Second); err == nil {
		t.Fatalf("expected error for invalid url")
	}
	if _, err := BuildRoutes(nil, time.Second); err == nil {
		t.Fatalf("expected error for empty table")
	}
}
