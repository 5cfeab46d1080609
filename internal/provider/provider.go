// Package provider defines the contracts every AI backend adapter implements.
// Adapters never retry on their own: a failed call is surfaced with the
// backend identifier attached and the fallback coordinator decides what
// happens next.
package provider

import (
	"context"

	"github.com/synthetix-ai/drafter/internal/domain"
)

// TextGenerator produces a full platform draft set from an idea and tone.
type TextGenerator interface {
	Name() string
	GenerateDrafts(ctx context.Context, idea string, tone domain.Tone) (domain.GenerationResult, error)
}

// ImageGenerator renders one image for a draft's content.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, ratio domain.AspectRatio, size domain.ImageSize) (string, error)
}

// SpeechSynthesizer turns draft text into a playable audio reference.
type SpeechSynthesizer interface {
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// SessionClient is the embedded-session backend: it carries an ambient
// authenticated session and supports every media type.
type SessionClient interface {
	TextGenerator
	ImageGenerator
	SpeechSynthesizer

	// IsAuthenticated probes the session without side effects.
	IsAuthenticated(ctx context.Context) (bool, error)
}
