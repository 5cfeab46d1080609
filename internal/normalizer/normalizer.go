// Package normalizer is the single point of truth for what a valid generation
// response looks like. Every text-generation adapter funnels raw model output
// through Normalize before the result reaches anything downstream.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/synthetix-ai/drafter/internal/domain"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
)

type wireDraft struct {
	Platform             string `json:"platform"`
	Content              string `json:"content"`
	SuggestedAspectRatio string `json:"suggestedAspectRatio"`
}

type wireResult struct {
	Drafts []wireDraft `json:"drafts"`
}

// Normalize strips code-fence wrapping from raw model output, parses it as a
// single JSON object with a drafts array, and validates shape. Any violation
// fails with pkgerrors.ErrMalformedResponse naming the offending field.
func Normalize(raw string) (domain.GenerationResult, error) {
	text := stripFences(raw)
	if text == "" {
		return domain.GenerationResult{}, fmt.Errorf("%w: empty response body", pkgerrors.ErrMalformedResponse)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%w: not a JSON object: %v", pkgerrors.ErrMalformedResponse, err)
	}
	if len(wire.Drafts) == 0 {
		return domain.GenerationResult{}, fmt.Errorf("%w: missing or empty drafts field", pkgerrors.ErrMalformedResponse)
	}

	seen := make(map[domain.Platform]struct{}, len(wire.Drafts))
	seeds := make([]domain.DraftSeed, 0, len(wire.Drafts))
	for i, d := range wire.Drafts {
		platform, err := domain.ParsePlatform(d.Platform)
		if err != nil {
			return domain.GenerationResult{}, fmt.Errorf("%w: drafts[%d].platform: %v", pkgerrors.ErrMalformedResponse, i, err)
		}
		if _, dup := seen[platform]; dup {
			return domain.GenerationResult{}, fmt.Errorf("%w: drafts[%d].platform: duplicate platform %q", pkgerrors.ErrMalformedResponse, i, platform)
		}
		seen[platform] = struct{}{}

		content := strings.TrimSpace(d.Content)
		if content == "" {
			return domain.GenerationResult{}, fmt.Errorf("%w: drafts[%d].content: empty", pkgerrors.ErrMalformedResponse, i)
		}

		ratio, err := domain.ParseAspectRatio(d.SuggestedAspectRatio)
		if err != nil {
			return domain.GenerationResult{}, fmt.Errorf("%w: drafts[%d].suggestedAspectRatio: %v", pkgerrors.ErrMalformedResponse, i, err)
		}

		seeds = append(seeds, domain.DraftSeed{
			Platform:             platform,
			Content:              content,
			SuggestedAspectRatio: ratio,
		})
	}

	return domain.GenerationResult{Drafts: seeds}, nil
}

// stripFences removes a language-tagged opening fence, any bare fences, and
// surrounding whitespace. Models wrap JSON in markdown fences inconsistently,
// so both fenced and bare bodies must normalize identically.
func stripFences(raw string) string {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
