package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/airndlab/support-qna/internal/core/ports"
	"github.com/airndlab/support-qna/internal/observability/metrics"
)

// PipelineRouter serves one retrieval pipeline's wire API. All four
// variants expose the same surface; only the answering logic differs.
type PipelineRouter struct {
	answerer ports.QuestionAnswerer
	variant  string
	metrics  *metrics.HTTPServerMetrics
	traffic  TrafficConfig
}

func NewPipelineRouter(answerer ports.QuestionAnswerer, variant string, m *metrics.HTTPServerMetrics, traffic TrafficConfig) *PipelineRouter {
	return &PipelineRouter{
		answerer: answerer,
		variant:  variant,
		metrics:  m,
		traffic:  traffic,
	}
}

func (rt *PipelineRouter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.status)
	mux.HandleFunc("/api/answers", rt.postAnswer)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := applyTraffic(mux, rt.traffic)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("pipeline-"+rt.variant, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *PipelineRouter) status(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "pipeline": rt.variant})
}

func (rt *PipelineRouter) postAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	answer, err := rt.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		rt.recordAnswer("error", start)
		writeError(w, err)
		return
	}

	result := "answered"
	if answer.NoMatch() {
		result = "no_answer"
	}
	rt.recordAnswer(result, start)
	if rt.metrics != nil && answer.Score != nil {
		rt.metrics.RecordRetrievalScore("pipeline-"+rt.variant, rt.variant, *answer.Score)
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *PipelineRouter) recordAnswer(result string, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAnswer("pipeline-"+rt.variant, rt.variant, result, time.Since(start))
}
