// Package puter implements the embedded-session backend. All AI capabilities
// are reached through one driver-call endpoint with an ambient session token,
// which makes this the only backend that serves text, images, and speech.
package puter

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

// Image model chain: primary image model, secondary, then the provider
// default (empty model lets the backend pick).
var imageModels = []string{
	"gemini-2.5-flash-image-preview",
	"black-forest-labs/FLUX.1-schnell",
	"",
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Client struct {
	token      string
	endpoint   string
	strictAuth bool
	httpClient *http.Client
	logger     logger.Logger
}

func New(opts Opts) *Client {
	return &Client{
		token:      opts.Config.Puter.Token,
		endpoint:   strings.TrimRight(opts.Config.Puter.Endpoint, "/"),
		strictAuth: opts.Config.App.StrictAuth,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: opts.Logger,
	}
}

var _ provider.SessionClient = (*Client)(nil)

func (c *Client) Name() string { return "puter" }

// IsAuthenticated probes the session token against the identity endpoint. A
// missing token or a 401 means no session; neither is an error.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	if c.token == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/whoami", nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: puter whoami: %v", pkgerrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("%w: puter whoami: %s", pkgerrors.ErrTransport, resp.Status)
	}
}

func (c *Client) GenerateDrafts(ctx context.Context, idea string, tone domain.Tone) (domain.GenerationResult, error) {
	if c.token == "" {
		return domain.GenerationResult{}, fmt.Errorf("puter: %w: no session token configured", pkgerrors.ErrMissingCredential)
	}

	raw, err := c.driverCall(ctx, driverRequest{
		Interface: "puter-chat-completion",
		Method:    "complete",
		Args: map[string]any{
			"messages": []map[string]any{
				{"content": provider.DraftPrompt(idea, tone)},
			},
		},
	})
	if err != nil {
		return domain.GenerationResult{}, err
	}

	text := raw.Result.Message.Content
	if text == "" {
		return domain.GenerationResult{}, fmt.Errorf("%w: puter chat: response has no message content", pkgerrors.ErrMalformedResponse)
	}

	return normalizer.Normalize(text)
}

// GenerateImage runs the image model fallback chain. When strict auth is
// configured, a missing-credential failure stops the chain instead of burning
// the remaining candidates.
func (c *Client) GenerateImage(ctx context.Context, prompt string, ratio domain.AspectRatio, size domain.ImageSize) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("puter: %w: no session token configured", pkgerrors.ErrMissingCredential)
	}

	fullPrompt := provider.ImagePrompt(prompt, ratio)

	attempts := make([]fallback.Attempt[string], 0, len(imageModels))
	for _, model := range imageModels {
		model := model
		name := model
		if name == "" {
			name = "default"
		}
		attempts = append(attempts, fallback.Attempt[string]{
			Name: name,
			Run: func(ctx context.Context) (string, error) {
				return c.txt2img(ctx, fullPrompt, model, size)
			},
		})
	}

	var opts []fallback.Option
	if c.strictAuth {
		opts = append(opts, fallback.WithFailFast(pkgerrors.IsMissingCredential))
	}

	return fallback.Do(ctx, c.logger, "puter.generateImage", attempts, opts...)
}

func (c *Client) txt2img(ctx context.Context, prompt, model string, size domain.ImageSize) (string, error) {
	args := map[string]any{
		"prompt": prompt,
		// The size tier is passed through; the backend ignores it for models
		// without resolution tiers.
		"quality": string(size),
	}
	if model != "" {
		args["model"] = model
	}

	raw, err := c.driverCall(ctx, driverRequest{
		Interface: "puter-image-generation",
		Method:    "generate",
		Args:      args,
	})
	if err != nil {
		return "", err
	}
	if raw.Result.URL == "" {
		return "", fmt.Errorf("%w: puter txt2img: no image source returned", pkgerrors.ErrNoAssetReturned)
	}
	return raw.Result.URL, nil
}

func (c *Client) GenerateSpeech(ctx context.Context, text string) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("puter: %w: no session token configured", pkgerrors.ErrMissingCredential)
	}

	raw, err := c.driverCall(ctx, driverRequest{
		Interface: "puter-tts",
		Method:    "synthesize",
		Args:      map[string]any{"text": text},
	})
	if err != nil {
		return "", err
	}
	if raw.Result.URL == "" {
		return "", fmt.Errorf("%w: puter txt2speech: no audio source returned", pkgerrors.ErrNoAssetReturned)
	}
	return raw.Result.URL, nil
}

type driverRequest struct {
	Interface string         `json:"interface"`
	Method    string         `json:"method"`
	Args      map[string]any `json:"args"`
}

type driverResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
	Result struct {
		URL     string `json:"url"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"result"`
}

// driverCall issues exactly one call against the drivers endpoint.
func (c *Client) driverCall(ctx context.Context, dr driverRequest) (driverResponse, error) {
	body, err := json.Marshal(dr)
	if err != nil {
		return driverResponse{}, fmt.Errorf("marshal driver payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/drivers/call", bytes.NewReader(body))
	if err != nil {
		return driverResponse{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return driverResponse{}, fmt.Errorf("%w: puter %s.%s: %v", pkgerrors.ErrTransport, dr.Interface, dr.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return driverResponse{}, fmt.Errorf("%w: puter %s.%s: %s", pkgerrors.ErrMissingCredential, dr.Interface, dr.Method, resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return driverResponse{}, fmt.Errorf("%w: puter %s.%s %s: %s", pkgerrors.ErrTransport, dr.Interface, dr.Method, resp.Status, strings.TrimSpace(string(errBody)))
	}

	var parsed driverResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return driverResponse{}, fmt.Errorf("%w: puter %s.%s: decode body: %v", pkgerrors.ErrMalformedResponse, dr.Interface, dr.Method, err)
	}
	if !parsed.Success {
		msg := parsed.Error.Message
		if msg == "" {
			msg = "driver call reported failure"
		}
		return driverResponse{}, fmt.Errorf("%w: puter %s.%s: %s", pkgerrors.ErrTransport, dr.Interface, dr.Method, msg)
	}

	return parsed, nil
}
