package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/airndlab/support-qna/internal/core/domain"
)

type fakeAnswerService struct {
	envelope *domain.AnswerEnvelope
	err      error

	likedIDs    []string
	dislikedIDs []string
	feedbackErr error
}

func (f *fakeAnswerService) Answer(_ context.Context, question, pipeline string) (*domain.AnswerEnvelope, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.envelope, nil
}

func (f *fakeAnswerService) Like(_ context.Context, answerID string) error {
	f.likedIDs = append(f.likedIDs, answerID)
	return f.feedbackErr
}

func (f *fakeAnswerService) Dislike(_ context.Context, answerID string) error {
	f.dislikedIDs = append(f.dislikedIDs, answerID)
	return f.feedbackErr
}

func newGatewayHandler(service *fakeAnswerService) http.Handler {
	return NewRouter(service, nil, TrafficConfig{}).Handler()
}

func TestGatewayStatusEndpoint(t *testing.T) {
	handler := newGatewayHandler(&fakeAnswerService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "UP" {
		t.Fatalf("expected status UP, got %q", body["status"])
	}
}

func TestGatewayAnswerReturnsEnvelope(t *testing.T) {
	handler := newGatewayHandler(&fakeAnswerService{
		envelope: &domain.AnswerEnvelope{
			ID:     "a-1",
			Answer: "через настройки канала",
			Class1: "Канал",
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/answers",
		strings.NewReader(`{"question":"как переименовать канал","pipeline":"faq"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var envelope domain.AnswerEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.ID != "a-1" || envelope.Class1 != "Канал" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestGatewayAnswerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unknown pipeline",
			err:        domain.WrapError(domain.ErrUnknownPipeline, "route", fmt.Errorf("pipeline=ghost")),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty question",
			err:        domain.WrapError(domain.ErrInvalidInput, "route", fmt.Errorf("empty question")),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "pipeline down",
			err:        domain.WrapError(domain.ErrPipelineUnavailable, "call", fmt.Errorf("connection refused")),
			wantStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newGatewayHandler(&fakeAnswerService{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/answers",
				strings.NewReader(`{"question":"вопрос"}`))
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, res.Code)
			}
		})
	}
}

func TestGatewayFeedbackRoutesByAction(t *testing.T) {
	service := &fakeAnswerService{}
	handler := newGatewayHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/api/answers/a-1/liking", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("liking expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/answers/a-2/disliking", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("disliking expected 200, got %d", res.Code)
	}

	if len(service.likedIDs) != 1 || service.likedIDs[0] != "a-1" {
		t.Fatalf("unexpected liked ids: %v", service.likedIDs)
	}
	if len(service.dislikedIDs) != 1 || service.dislikedIDs[0] != "a-2" {
		t.Fatalf("unexpected disliked ids: %v", service.dislikedIDs)
	}
}

func TestGatewayFeedbackUnknownAnswerReturns404(t *testing.T) {
	handler := newGatewayHandler(&fakeAnswerService{
		feedbackErr: domain.WrapError(domain.ErrAnswerNotFound, "set feedback", fmt.Errorf("answer_id=missing")),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/answers/missing/liking", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGatewayFeedbackUnknownActionReturns404(t *testing.T) {
	handler := newGatewayHandler(&fakeAnswerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/answers/a-1/boosting", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGatewayAnswerRejectsInvalidJSON(t *testing.T) {
	handler := newGatewayHandler(&fakeAnswerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/answers", strings.NewReader("{"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
