// Package llm talks to a local Ollama server over its chat API. One Client
// is shared by all requests; a weighted semaphore bounds how many
// completions run at once so slow model calls cannot pile up without limit.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

// Sampling temperature for every completion issued by this backend.
const temperature = 0.25

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client issues chat completions against an Ollama endpoint.
type Client struct {
	endpoint string
	model    string
	http     *http.Client
	sem      *semaphore.Weighted
}

// NewClient returns a Client for the given endpoint and model. timeout
// bounds each completion call; maxConcurrent bounds in-flight completions
// process-wide.
func NewClient(endpoint, model string, timeout time.Duration, maxConcurrent int64) *Client {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		endpoint: endpoint,
		model:    model,
		http:     &http.Client{Timeout: timeout},
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  chatOptions `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// Complete sends the conversation history followed by prompt as the final
// user message and returns the raw completion text. The call blocks until a
// semaphore slot is free or ctx is cancelled.
func (c *Client) Complete(ctx context.Context, prompt string, history []Message) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  chatOptions{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, msg)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Message.Content, nil
}
