package domain

// DraftSeed is one per-platform entry of a parsed generation response.
type DraftSeed struct {
	Platform             Platform    `json:"platform"`
	Content              string      `json:"content"`
	SuggestedAspectRatio AspectRatio `json:"suggestedAspectRatio"`
}

// GenerationResult is the validated output of one successful generation call:
// an ordered sequence of seeds with no duplicate platforms.
type GenerationResult struct {
	Drafts []DraftSeed `json:"drafts"`
}

// DraftRecord is the central mutable entity. Platform is the identity key and
// is immutable after creation; everything else may change in place.
type DraftRecord struct {
	Platform             Platform    `json:"platform"`
	Content              string      `json:"content"`
	SuggestedAspectRatio AspectRatio `json:"suggestedAspectRatio"`
	ImageURL             string      `json:"imageUrl,omitempty"`
	IsGeneratingImage    bool        `json:"isGeneratingImage"`
}
