package provider

import (
	"fmt"

	"github.com/synthetix-ai/drafter/internal/domain"
)

// DraftPrompt composes the generation instruction: the idea, the tone,
// per-platform style guidance, and a strict single-JSON-object output
// directive. The output shape it demands is exactly what normalizer.Normalize
// accepts.
func DraftPrompt(idea string, tone domain.Tone) string {
	return fmt.Sprintf(`Generate social media drafts for seven platforms: Instagram, Facebook, Twitter, LinkedIn, X, TikTok, Reddit based on the following idea and tone.

Idea: %s
Tone: %s

Requirements:
- LinkedIn: Professional, Insightful, Informative. (3-5 hashtags)
- Twitter/X: Witty, Punchy, Conversational. (1-2 hashtags)
- Instagram: Aesthetic, Visual, Inspiring. (5-10 hashtags)
- Facebook: Relatable, Community-focused, Casual. (0-2 hashtags)
- TikTok: Raw, Authentic, Fast-paced. (3-6 hashtags)
- Reddit: Informative, Engaging, Conversational. (3-5 hashtags)
- Suggest aspect ratios: LinkedIn: 16:9, Twitter/X: 16:9, Instagram: 1:1, Facebook: 16:9, TikTok: 9:16, Reddit: 16:9

RETURN ONLY a valid JSON object with this exact structure and no markdown formatting:
{
  "drafts":[
    {"platform": "Instagram", "content": "...", "suggestedAspectRatio":"1:1"},
    {"platform": "Facebook", "content": "...", "suggestedAspectRatio":"16:9"},
    {"platform": "Twitter", "content": "...", "suggestedAspectRatio":"16:9"},
    {"platform": "LinkedIn", "content": "...", "suggestedAspectRatio":"16:9"},
    {"platform": "X", "content": "...", "suggestedAspectRatio":"16:9"},
    {"platform": "TikTok", "content": "...", "suggestedAspectRatio":"9:16"},
    {"platform": "Reddit", "content": "...", "suggestedAspectRatio":"16:9"}
  ]
}`, idea, tone)
}

// ImagePrompt composes the text-to-image instruction for a draft.
func ImagePrompt(content string, ratio domain.AspectRatio) string {
	return fmt.Sprintf(
		"A professional, high-end social media graphic for: %s. Cinematic lighting, 8k resolution, photo-realistic. Aspect Ratio %s",
		content, ratio,
	)
}
