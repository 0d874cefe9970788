package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	answersTotal   *prometheus.CounterVec
	feedbackTotal  *prometheus.CounterVec
	noMatchTotal   *prometheus.CounterVec
	retrievalScore *prometheus.HistogramVec
	answerDuration *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qna",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qna",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qna",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	answersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qna",
			Subsystem: "answers",
			Name:      "total",
			Help:      "Total answered questions by pipeline and result.",
		},
		[]string{"service", "pipeline", "result"},
	)
	feedbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qna",
			Subsystem: "answers",
			Name:      "feedback_total",
			Help:      "Total feedback votes by action.",
		},
		[]string{"service", "action"},
	)
	noMatchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qna",
			Subsystem: "retrieval",
			Name:      "no_match_total",
			Help:      "Total questions that resolved to the no-answer sentinel.",
		},
		[]string{"service", "pipeline"},
	)
	retrievalScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qna",
			Subsystem: "retrieval",
			Name:      "best_score",
			Help:      "Distribution of the best candidate score per question.",
			Buckets:   []float64{0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service", "pipeline"},
	)
	answerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qna",
			Subsystem: "answers",
			Name:      "duration_seconds",
			Help:      "End-to-end answer duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "pipeline"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		answersTotal,
		feedbackTotal,
		noMatchTotal,
		retrievalScore,
		answerDuration,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		answersTotal:    answersTotal,
		feedbackTotal:   feedbackTotal,
		noMatchTotal:    noMatchTotal,
		retrievalScore:  retrievalScore,
		answerDuration:  answerDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses identifier segments so answer ids and chat ids
// do not explode label cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/answers/") && strings.HasSuffix(path, "/liking"):
		return "/api/answers/{answer_id}/liking"
	case strings.HasPrefix(path, "/api/answers/") && strings.HasSuffix(path, "/disliking"):
		return "/api/answers/{answer_id}/disliking"
	case strings.HasPrefix(path, "/api/chats/"):
		rest := strings.TrimPrefix(path, "/api/chats/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/api/chats/{chat_id}/" + rest[idx+1:]
		}
		return "/api/chats/{chat_id}"
	default:
		return path
	}
}

// RecordAnswer counts one answered question; result is "answered",
// "no_answer" or "error".
func (m *HTTPServerMetrics) RecordAnswer(service, pipeline, result string, duration time.Duration) {
	if pipeline == "" {
		pipeline = "unknown"
	}
	m.answersTotal.WithLabelValues(service, pipeline, result).Inc()
	m.answerDuration.WithLabelValues(service, pipeline).Observe(duration.Seconds())
	if result == "no_answer" {
		m.noMatchTotal.WithLabelValues(service, pipeline).Inc()
	}
}

func (m *HTTPServerMetrics) RecordFeedback(service, action string) {
	m.feedbackTotal.WithLabelValues(service, action).Inc()
}

func (m *HTTPServerMetrics) RecordRetrievalScore(service, pipeline string, score float64) {
	m.retrievalScore.WithLabelValues(service, pipeline).Observe(score)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
