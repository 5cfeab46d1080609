package composerimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"github.com/synthetix-ai/drafter/internal/composer"
	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/drafts"
	"github.com/synthetix-ai/drafter/internal/fallback"
	"github.com/synthetix-ai/drafter/internal/notifier"
	"github.com/synthetix-ai/drafter/internal/provider"
	"github.com/synthetix-ai/drafter/internal/repositories/batch"
	"github.com/synthetix-ai/drafter/pkg/config"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

const (
	imageWorkers    = 4
	imageJobTimeout = 3 * time.Minute
)

type Opts struct {
	fx.In

	Session    provider.SessionClient
	Gemini     provider.TextGenerator `name:"gemini"`
	OpenRouter provider.TextGenerator `name:"openrouter"`
	Drafts     drafts.Manager
	BatchRepo  batch.Repository
	Notifier   notifier.Client
	Logger     logger.Logger
	Config     *config.Config
}

type ComposerImpl struct {
	Session    provider.SessionClient
	Gemini     provider.TextGenerator
	OpenRouter provider.TextGenerator
	Drafts     drafts.Manager
	BatchRepo  batch.Repository
	Notifier   notifier.Client
	Logger     logger.Logger
	Config     *config.Config

	pool *ants.Pool
}

func New(opts Opts) (*ComposerImpl, error) {
	pool, err := ants.NewPool(imageWorkers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create image worker pool: %w", err)
	}

	return &ComposerImpl{
		Session:    opts.Session,
		Gemini:     opts.Gemini,
		OpenRouter: opts.OpenRouter,
		Drafts:     opts.Drafts,
		BatchRepo:  opts.BatchRepo,
		Notifier:   opts.Notifier,
		Logger:     opts.Logger,
		Config:     opts.Config,
		pool:       pool,
	}, nil
}

var _ composer.Client = (*ComposerImpl)(nil)

func (c *ComposerImpl) Close() {
	c.pool.Release()
}

// genOutcome pairs a generation result with the provider that produced it.
type genOutcome struct {
	provider string
	result   domain.GenerationResult
}

func (c *ComposerImpl) Generate(ctx context.Context, idea string, tone domain.Tone) ([]domain.DraftRecord, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, fmt.Errorf("%w: idea must not be empty", pkgerrors.ErrInvalidInput)
	}

	attempts, err := c.providerAttempts(ctx, idea, tone)
	if err != nil {
		return nil, err
	}

	outcome, err := fallback.Do(ctx, c.Logger, "composer.generate", attempts)
	if err != nil {
		go c.Notifier.NotifyFailure(err.Error())
		return nil, err
	}

	batchID := c.Drafts.InstallBatch(outcome.result.Drafts)
	c.persistBatch(ctx, batchID, idea, tone, outcome)
	go c.Notifier.NotifyBatchCreated(idea, outcome.provider, len(outcome.result.Drafts))

	return c.Drafts.Snapshot(), nil
}

// providerAttempts builds the ordered provider pipeline for the configured
// mode. In auto mode the session provider leads when its session probe
// succeeds and the key-based providers act as the degraded tail.
func (c *ComposerImpl) providerAttempts(ctx context.Context, idea string, tone domain.Tone) ([]fallback.Attempt[genOutcome], error) {
	textAttempt := func(p provider.TextGenerator) fallback.Attempt[genOutcome] {
		return fallback.Attempt[genOutcome]{
			Name: p.Name(),
			Run: func(ctx context.Context) (genOutcome, error) {
				result, err := p.GenerateDrafts(ctx, idea, tone)
				if err != nil {
					return genOutcome{}, err
				}
				return genOutcome{provider: p.Name(), result: result}, nil
			},
		}
	}

	switch mode := c.Config.App.ProviderMode; mode {
	case "puter":
		return []fallback.Attempt[genOutcome]{textAttempt(c.Session)}, nil
	case "gemini":
		return []fallback.Attempt[genOutcome]{textAttempt(c.Gemini)}, nil
	case "openrouter":
		return []fallback.Attempt[genOutcome]{textAttempt(c.OpenRouter)}, nil
	case "auto":
		var attempts []fallback.Attempt[genOutcome]
		authenticated, err := c.Session.IsAuthenticated(ctx)
		if err != nil {
			c.Logger.Warn("Session probe failed, skipping session provider", "error", err)
		}
		if authenticated {
			attempts = append(attempts, textAttempt(c.Session))
		}
		attempts = append(attempts, textAttempt(c.Gemini), textAttempt(c.OpenRouter))
		return attempts, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider mode %q", pkgerrors.ErrInvalidInput, mode)
	}
}

// persistBatch records the batch for history. Persistence problems never
// reach the user path.
func (c *ComposerImpl) persistBatch(ctx context.Context, batchID uuid.UUID, idea string, tone domain.Tone, outcome genOutcome) {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := c.BatchRepo.Create(persistCtx, domain.Batch{
		ID:       batchID,
		Idea:     idea,
		Tone:     tone,
		Provider: outcome.provider,
		Drafts:   outcome.result.Drafts,
	})
	if err != nil {
		c.Logger.Error("Failed to persist batch history", "batch_id", batchID, "error", err)
	}
}

func (c *ComposerImpl) Snapshot() []domain.DraftRecord {
	return c.Drafts.Snapshot()
}

func (c *ComposerImpl) EditContent(platform domain.Platform, content string) ([]domain.DraftRecord, error) {
	if err := c.Drafts.EditContent(platform, content); err != nil {
		return nil, err
	}
	return c.Drafts.Snapshot(), nil
}

func (c *ComposerImpl) RequestImage(ctx context.Context, platform domain.Platform, ratio domain.AspectRatio, size domain.ImageSize) error {
	rec, err := c.Drafts.Get(platform)
	if err != nil {
		return err
	}
	if ratio == "" {
		ratio = rec.SuggestedAspectRatio
	}

	ticket, err := c.Drafts.BeginImage(platform)
	if err != nil {
		return err
	}

	// The job must outlive the HTTP request that triggered it.
	jobCtx := context.WithoutCancel(ctx)

	err = c.pool.Submit(func() {
		runCtx, cancel := context.WithTimeout(jobCtx, imageJobTimeout)
		defer cancel()

		imageURL, genErr := c.Session.GenerateImage(runCtx, rec.Content, ratio, size)
		if genErr != nil {
			c.Logger.Error("Image generation failed", "platform", platform, "error", genErr)
			if failErr := c.Drafts.FailImage(ticket); failErr != nil {
				c.Logger.Info("Discarding image failure for replaced batch", "platform", platform, "error", failErr)
			}
			return
		}

		if completeErr := c.Drafts.CompleteImage(ticket, imageURL); completeErr != nil {
			c.Logger.Info("Discarding stale image result", "platform", platform, "error", completeErr)
			return
		}
		c.Logger.Info("Image generated", "platform", platform)
	})
	if err != nil {
		if failErr := c.Drafts.FailImage(ticket); failErr != nil {
			c.Logger.Info("Discarding image failure for replaced batch", "platform", platform, "error", failErr)
		}
		return fmt.Errorf("failed to submit image job: %w", err)
	}

	return nil
}

func (c *ComposerImpl) RequestSpeech(ctx context.Context, platform domain.Platform) (string, error) {
	rec, err := c.Drafts.Get(platform)
	if err != nil {
		return "", err
	}
	return c.Session.GenerateSpeech(ctx, rec.Content)
}

func (c *ComposerImpl) IsAuthenticated(ctx context.Context) (bool, error) {
	return c.Session.IsAuthenticated(ctx)
}

func (c *ComposerImpl) History(ctx context.Context, limit int) ([]*domain.Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	batches, err := c.BatchRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	// History rows never carry nil drafts; normalize for JSON consumers.
	return lo.Map(batches, func(b *domain.Batch, _ int) *domain.Batch {
		if b.Drafts == nil {
			b.Drafts = []domain.DraftSeed{}
		}
		return b
	}), nil
}
