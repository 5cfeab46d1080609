// Package openrouter implements the multi-model aggregator backend through
// the OpenAI-compatible chat completions API.
package openrouter

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/fallback"
	"github.com/synthetix-ai/drafter/internal/normalizer"
	"github.com/synthetix-ai/drafter/internal/provider"
	"github.com/synthetix-ai/drafter/pkg/config"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

// Free-tier models, newest first. Each gets exactly one attempt.
var freeModels = []string{
	"meta-llama/llama-4-maverick:free",
	"mistralai/mistral-small-3.1-24b-instruct:free",
	"google/gemini-2.0-flash-exp:free",
	"deepseek/deepseek-r1:free",
	"qwen/qwen2.5-vl-3b-instruct:free",
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Client struct {
	apiKey string
	client openai.Client
	logger logger.Logger
}

func New(opts Opts) *Client {
	client := openai.NewClient(
		option.WithAPIKey(opts.Config.OpenRouter.APIKey),
		option.WithBaseURL(opts.Config.OpenRouter.BaseURL),
		// Spec: no retries within a single candidate; the SDK defaults to 2.
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", "https://synthetix.ai"),
		option.WithHeader("X-Title", "Synthetix Intelligence"),
	)

	return &Client{
		apiKey: opts.Config.OpenRouter.APIKey,
		client: client,
		logger: opts.Logger,
	}
}

var _ provider.TextGenerator = (*Client)(nil)

func (c *Client) Name() string { return "openrouter" }

func (c *Client) GenerateDrafts(ctx context.Context, idea string, tone domain.Tone) (domain.GenerationResult, error) {
	if c.apiKey == "" {
		return domain.GenerationResult{}, fmt.Errorf("openrouter: %w: no API key configured", pkgerrors.ErrMissingCredential)
	}

	prompt := provider.DraftPrompt(idea, tone)

	attempts := make([]fallback.Attempt[domain.GenerationResult], 0, len(freeModels))
	for _, model := range freeModels {
		model := model
		attempts = append(attempts, fallback.Attempt[domain.GenerationResult]{
			Name: model,
			Run: func(ctx context.Context) (domain.GenerationResult, error) {
				raw, err := c.complete(ctx, model, prompt)
				if err != nil {
					return domain.GenerationResult{}, err
				}
				return normalizer.Normalize(raw)
			},
		})
	}

	return fallback.Do(ctx, c.logger, "openrouter.generateDrafts", attempts)
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: openrouter (%s): %v", pkgerrors.ErrTransport, model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openrouter (%s): empty choices", pkgerrors.ErrMalformedResponse, model)
	}
	return resp.Choices[0].Message.Content, nil
}
