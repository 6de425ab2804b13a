// Package llm talks to the Gemini generateContent API: it sends the bounded
// conversation history with every request and parses text plus proposed
// function calls out of the response. No chat session state is retained
// between turns.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Pbash-js/Pai/internal/config"
	"github.com/Pbash-js/Pai/internal/metrics"
	"github.com/Pbash-js/Pai/internal/schema"
)

// Client calls the Gemini REST API with a fixed cap on concurrent in-flight
// requests, respecting upstream rate limits.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	tools       []tool
	sem         chan struct{}
	now         func() time.Time
}

// NewClient builds a Gemini client whose tool grammar is derived from the
// operation registry.
func NewClient(cfg config.LLMConfig, reg *schema.Registry) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		tools:       buildTools(reg),
		sem:         make(chan struct{}, cfg.MaxConcurrent),
		now:         time.Now,
	}
}

// Wire format for generateContent.
type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	Tools             []tool           `json:"tools,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Converse sends the bounded history plus the new user message and returns
// the model's reply. The call blocks while the concurrency cap is saturated
// and honors ctx cancellation throughout.
func (c *Client) Converse(ctx context.Context, history []Turn, userText string) (*Reply, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for llm slot: %w", ctx.Err())
	}

	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt(c.now())}}},
		Contents:          buildContents(history, userText),
		Tools:             c.tools,
		GenerationConfig:  generationConfig{Temperature: c.temperature},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling llm request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("calling llm: %w", err)
	}
	defer resp.Body.Close()
	metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reading llm response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decoding llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		msg := ""
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("llm returned status %d: %s", resp.StatusCode, msg)
	}
	metrics.LLMRequestsTotal.WithLabelValues("success").Inc()

	return extractReply(parsed), nil
}

func buildContents(history []Turn, userText string) []content {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}
	return append(contents, content{Role: "user", Parts: []part{{Text: userText}}})
}

func extractReply(parsed generateResponse) *Reply {
	reply := &Reply{}
	if len(parsed.Candidates) == 0 {
		slog.Warn("llm response contained no candidates")
		return reply
	}

	var texts []string
	for _, p := range parsed.Candidates[0].Content.Parts {
		if p.FunctionCall != nil {
			args := p.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			reply.Calls = append(reply.Calls, FunctionCall{Name: p.FunctionCall.Name, Args: args})
			slog.Debug("llm proposed function call", "name", p.FunctionCall.Name)
			continue
		}
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	reply.Text = strings.TrimSpace(strings.Join(texts, " "))
	return reply
}
