// Package composer is the orchestration boundary the presentation layer talks
// to: it selects a provider pipeline, runs generation with fallback, and
// routes per-record image and speech work.
package composer

import (
	"context"

	"github.com/synthetix-ai/drafter/internal/domain"
)

type Client interface {
	// Generate runs the full draft pipeline for an idea and tone and returns
	// the freshly installed collection. On failure the prior collection is
	// preserved untouched.
	Generate(ctx context.Context, idea string, tone domain.Tone) ([]domain.DraftRecord, error)

	// Snapshot returns the current draft collection.
	Snapshot() []domain.DraftRecord

	// EditContent replaces the content of one platform's record.
	EditContent(platform domain.Platform, content string) ([]domain.DraftRecord, error)

	// RequestImage starts asynchronous image generation for one record. An
	// empty ratio falls back to the record's suggested ratio.
	RequestImage(ctx context.Context, platform domain.Platform, ratio domain.AspectRatio, size domain.ImageSize) error

	// RequestSpeech synthesizes speech for one record's content and returns
	// the audio reference.
	RequestSpeech(ctx context.Context, platform domain.Platform) (string, error)

	// IsAuthenticated probes the session provider without side effects.
	IsAuthenticated(ctx context.Context) (bool, error)

	// History lists recently persisted batches, newest first.
	History(ctx context.Context, limit int) ([]*domain.Batch, error)

	// ScheduleHistoryCleanup installs the daily retention job.
	ScheduleHistoryCleanup(ctx context.Context) error

	// Close releases the image worker pool.
	Close()
}
