package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// Client forwards a question to one pipeline service. One attempt, one
// bounded timeout; any failure surfaces as ErrPipelineUnavailable for
// the caller to report, never to retry.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewClient(name, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Answer(ctx context.Context, question string) (domain.PipelineAnswer, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return domain.PipelineAnswer{}, fmt.Errorf("marshal question: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/answers", bytes.NewReader(payload))
	if err != nil {
		return domain.PipelineAnswer{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PipelineAnswer{}, domain.WrapError(domain.ErrPipelineUnavailable, "call "+c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.PipelineAnswer{}, domain.WrapError(
			domain.ErrPipelineUnavailable,
			"call "+c.name,
			fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body))),
		)
	}

	var answer domain.PipelineAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return domain.PipelineAnswer{}, domain.WrapError(domain.ErrPipelineUnavailable, "decode "+c.name, err)
	}
	return answer, nil
}
