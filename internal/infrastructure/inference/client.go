package inference

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/airndlab/support-qna/internal/core/domain"
	"github.com/airndlab/support-qna/internal/infrastructure/resilience"
)

// Client talks to the model-serving backend. Embedding, reranking and
// classification are opaque remote capabilities; this process never
// loads model weights itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// Embedder produces sentence embeddings via the backend's embed route.
type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.model,
		"texts": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.call(ctx, "embed", "/api/embed", request, &response); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed: empty embedding result")
	}
	return vectors[0], nil
}

// Reranker rescoring candidates with the backend's cross-encoder route.
type Reranker struct {
	client *Client
	model  string
}

func NewReranker(client *Client, model string) *Reranker {
	return &Reranker{client: client, model: model}
}

func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Candidate) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, candidate := range candidates {
		documents[i] = candidate.Entry.Text
	}

	request := map[string]any{
		"model":     r.model,
		"query":     query,
		"documents": documents,
	}
	var response struct {
		Scores []float64 `json:"scores"`
	}
	if err := r.client.call(ctx, "rerank", "/api/rerank", request, &response); err != nil {
		return nil, err
	}
	if len(response.Scores) != len(candidates) {
		return nil, fmt.Errorf("rerank: got %d scores for %d candidates", len(response.Scores), len(candidates))
	}

	out := make([]domain.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score = response.Scores[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// Classifier predicts one classifier-level label for a question.
type Classifier struct {
	client *Client
	model  string
}

func NewClassifier(client *Client, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

func (c *Classifier) Classify(ctx context.Context, question string) (string, error) {
	request := map[string]any{
		"model":    c.model,
		"question": question,
	}
	var response struct {
		Label string `json:"label"`
	}
	if err := c.client.call(ctx, "classify", "/api/classify", request, &response); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Label), nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	do := func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "inference."+operation, do, classifyInferenceError)
	} else {
		err = do(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
