package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restaurant-system/internal/common/config"
)

const DefaultEndpoint = "https://generativelanguage.googleapis.com"

// Prompt is one generation request.
type Prompt struct {
	System      string
	Text        string
	Temperature *float64 // nil leaves the model default
}

// Generator turns a prompt into text. An empty string with a nil error means
// the model produced nothing usable.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeminiClient calls the generateContent REST method.
type GeminiClient struct {
	http     *http.Client
	endpoint string
	model    string
	apiKey   string
}

func NewGeminiClient(cfg config.Assistant) *GeminiClient {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		http:     &http.Client{Timeout: timeout},
		endpoint: endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) Generate(ctx context.Context, p Prompt) (string, error) {
	req := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: p.Text}}}}}
	if p.System != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: p.System}}}
	}
	if p.Temperature != nil {
		t := *p.Temperature
		req.GenerationConfig = &generationConfig{Temperature: &t}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decode: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, pt := range out.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
