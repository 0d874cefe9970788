package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/core/ports"
	"github.com/airndlab/support-qna/internal/observability/metrics"
)

const gatewayService = "qna"

// Router serves the gateway API: question routing plus feedback by
// answer identifier.
type Router struct {
	answers ports.AnswerService
	metrics *metrics.HTTPServerMetrics
	traffic TrafficConfig
}

func NewRouter(answers ports.AnswerService, m *metrics.HTTPServerMetrics, traffic TrafficConfig) *Router {
	return &Router{
		answers: answers,
		metrics: m,
		traffic: traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.status)
	mux.HandleFunc("/api/answers", rt.postAnswer)
	mux.HandleFunc("/api/answers/", rt.postFeedback)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := applyTraffic(mux, rt.traffic)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(gatewayService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) status(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func (rt *Router) postAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Pipeline string `json:"pipeline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	envelope, err := rt.answers.Answer(r.Context(), req.Question, req.Pipeline)
	if err != nil {
		rt.recordAnswer(req.Pipeline, "error", start)
		writeError(w, err)
		return
	}

	result := "answered"
	if envelope.Answer == domain.NoAnswerText {
		result = "no_answer"
	}
	rt.recordAnswer(req.Pipeline, result, start)
	writeJSON(w, http.StatusOK, envelope)
}

func (rt *Router) postFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/answers/")
	answerID, action, ok := strings.Cut(rest, "/")
	if !ok || answerID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var err error
	switch action {
	case "liking":
		err = rt.answers.Like(r.Context(), answerID)
	case "disliking":
		err = rt.answers.Dislike(r.Context(), answerID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordFeedback(gatewayService, action)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recordAnswer(pipeline, result string, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnswer(gatewayService, pipeline, result, time.Since(start))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
