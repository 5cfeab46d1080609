// Package gemini implements the key-based Gemini backend. One adapter call
// runs its own model fallback chain: newest model with search tools first,
// degrading to tool-free and finally legacy variants.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/fallback"
	"github.com/synthetix-ai/drafter/internal/normalizer"
	"github.com/synthetix-ai/drafter/internal/provider"
	"github.com/synthetix-ai/drafter/pkg/config"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

type candidate struct {
	model    string
	useTools bool
}

// Model ordering trades quality for reliability: most capable first, tool-free
// and legacy variants as the chain degrades.
var candidates = []candidate{
	{model: "gemini-2.0-flash", useTools: true},
	{model: "gemini-1.5-flash", useTools: true},
	{model: "gemini-1.5-flash", useTools: false},
	{model: "gemini-pro", useTools: false},
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

func New(opts Opts) *Client {
	return &Client{
		apiKey:   opts.Config.Gemini.APIKey,
		endpoint: strings.TrimRight(opts.Config.Gemini.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: opts.Logger,
	}
}

var _ provider.TextGenerator = (*Client)(nil)

func (c *Client) Name() string { return "gemini" }

func (c *Client) GenerateDrafts(ctx context.Context, idea string, tone domain.Tone) (domain.GenerationResult, error) {
	if c.apiKey == "" {
		return domain.GenerationResult{}, fmt.Errorf("gemini: %w: no API key configured", pkgerrors.ErrMissingCredential)
	}

	prompt := provider.DraftPrompt(idea, tone)

	attempts := make([]fallback.Attempt[domain.GenerationResult], 0, len(candidates))
	for _, cand := range candidates {
		cand := cand
		name := cand.model
		if cand.useTools {
			name += "+tools"
		}
		attempts = append(attempts, fallback.Attempt[domain.GenerationResult]{
			Name: name,
			Run: func(ctx context.Context) (domain.GenerationResult, error) {
				raw, err := c.generateContent(ctx, cand.model, cand.useTools, prompt)
				if err != nil {
					return domain.GenerationResult{}, err
				}
				return normalizer.Normalize(raw)
			},
		})
	}

	return fallback.Do(ctx, c.logger, "gemini.generateDrafts", attempts)
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearchRetrieval searchRetrieval `json:"google_search_retrieval"`
}

type searchRetrieval struct {
	DynamicRetrievalConfig dynamicRetrievalConfig `json:"dynamic_retrieval_config"`
}

type dynamicRetrievalConfig struct {
	Mode             string  `json:"mode"`
	DynamicThreshold float64 `json:"dynamic_threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generateContent issues exactly one generateContent call and returns the raw
// text of the first candidate part.
func (c *Client) generateContent(ctx context.Context, model string, useTools bool, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if useTools {
		payload.Tools = []tool{{
			GoogleSearchRetrieval: searchRetrieval{
				DynamicRetrievalConfig: dynamicRetrievalConfig{
					Mode:             "dynamic",
					DynamicThreshold: 0.7,
				},
			},
		}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini (%s): %v", pkgerrors.ErrTransport, model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: gemini (%s) %s: %s", pkgerrors.ErrTransport, model, resp.Status, strings.TrimSpace(string(errBody)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: gemini (%s): decode body: %v", pkgerrors.ErrMalformedResponse, model, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini (%s): response has no candidate text", pkgerrors.ErrMalformedResponse, model)
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
