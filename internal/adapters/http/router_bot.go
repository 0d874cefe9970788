package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/airndlab/support-qna/internal/core/ports"
	"github.com/airndlab/support-qna/internal/observability/metrics"
)

const chatService = "bot"

// ChatRouter serves the chat backend API: per-chat questions, feedback
// proxying and preference management.
type ChatRouter struct {
	chat    ports.ChatService
	metrics *metrics.HTTPServerMetrics
	traffic TrafficConfig
}

func NewChatRouter(chat ports.ChatService, m *metrics.HTTPServerMetrics, traffic TrafficConfig) *ChatRouter {
	return &ChatRouter{
		chat:    chat,
		metrics: m,
		traffic: traffic,
	}
}

func (rt *ChatRouter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.status)
	mux.HandleFunc("/api/chats/", rt.chatRoutes)
	mux.HandleFunc("/api/answers/", rt.feedback)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	handler := applyTraffic(mux, rt.traffic)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(chatService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *ChatRouter) status(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

// chatRoutes dispatches /api/chats/{chat_id}/{action}.
func (rt *ChatRouter) chatRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/chats/")
	chatIDRaw, action, ok := strings.Cut(rest, "/")
	if !ok || chatIDRaw == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat id must be an integer"})
		return
	}

	switch {
	case action == "questions" && r.Method == http.MethodPost:
		rt.postQuestion(w, r, chatID)
	case action == "settings" && r.Method == http.MethodGet:
		rt.getSettings(w, r, chatID)
	case action == "pipeline" && r.Method == http.MethodPut:
		rt.putPipeline(w, r, chatID)
	case action == "verbosity" && r.Method == http.MethodPut:
		rt.putVerbosity(w, r, chatID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *ChatRouter) postQuestion(w http.ResponseWriter, r *http.Request, chatID int64) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	reply, err := rt.chat.Ask(r.Context(), chatID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (rt *ChatRouter) getSettings(w http.ResponseWriter, r *http.Request, chatID int64) {
	settings, err := rt.chat.Settings(r.Context(), chatID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (rt *ChatRouter) putPipeline(w http.ResponseWriter, r *http.Request, chatID int64) {
	var req struct {
		Pipeline string `json:"pipeline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	text, err := rt.chat.SetPipeline(r.Context(), chatID, req.Pipeline)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (rt *ChatRouter) putVerbosity(w http.ResponseWriter, r *http.Request, chatID int64) {
	var req struct {
		Verbose bool `json:"verbose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	text, err := rt.chat.SetVerbose(r.Context(), chatID, req.Verbose)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// feedback proxies /api/answers/{id}/liking|disliking to the gateway and
// replies with the catalog's acknowledgement text.
func (rt *ChatRouter) feedback(w http.ResponseWriter, r *http.Request) {
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

	var (
		text string
		err  error
	)
	switch action {
	case "liking":
		text, err = rt.chat.Like(r.Context(), answerID)
	case "disliking":
		text, err = rt.chat.Dislike(r.Context(), answerID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordFeedback(chatService, action)
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
