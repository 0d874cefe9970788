package qna

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airndlab/support-qna/internal/core/domain"
)

// Client talks to the gateway service on behalf of the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type askRequest struct {
	Question string `json:"question"`
	Pipeline string `json:"pipeline,omitempty"`
}

func (c *Client) Ask(ctx context.Context, question, pipeline string) (*domain.AnswerEnvelope, error) {
	payload, err := json.Marshal(askRequest{Question: question, Pipeline: pipeline})
	if err != nil {
		return nil, fmt.Errorf("marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/answers", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPipelineUnavailable, "ask gateway", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("ask gateway", resp.StatusCode)
	}

	var envelope domain.AnswerEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.WrapError(domain.ErrPipelineUnavailable, "decode gateway answer", err)
	}
	return &envelope, nil
}

func (c *Client) Like(ctx context.Context, answerID string) error {
	return c.feedback(ctx, answerID, "liking")
}

func (c *Client) Dislike(ctx context.Context, answerID string) error {
	return c.feedback(ctx, answerID, "disliking")
}

func (c *Client) feedback(ctx context.Context, answerID, action string) error {
	url := fmt.Sprintf("%s/api/answers/%s/%s", c.baseURL, answerID, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build feedback request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrPipelineUnavailable, "send feedback", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus("send feedback", resp.StatusCode)
	}
	return nil
}

func classifyStatus(operation string, status int) error {
	err := fmt.Errorf("gateway status %d", status)
	switch status {
	case http.StatusNotFound:
		return domain.WrapError(domain.ErrAnswerNotFound, operation, err)
	case http.StatusBadRequest:
		return domain.WrapError(domain.ErrInvalidInput, operation, err)
	default:
		return domain.WrapError(domain.ErrPipelineUnavailable, operation, err)
	}
}
