package domain

import (
	"time"

	"github.com/google/uuid"
)

// Batch is one persisted generation: the idea and tone that produced it, the
// provider that served it, and the seeds it yielded.
type Batch struct {
	ID        uuid.UUID
	Idea      string
	Tone      Tone
	Provider  string
	Drafts    []DraftSeed
	CreatedAt time.Time
}
